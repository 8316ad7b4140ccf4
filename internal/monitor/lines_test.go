package monitor

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func drain(b *LineBuffer) []string {
	var out []string
	for {
		line, ok := b.Next()
		if !ok {
			return out
		}
		out = append(out, line)
	}
}

func TestLineBufferSplitsLines(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string
		rest   int
	}{
		{"single line", []string{"hello\n"}, []string{"hello"}, 0},
		{"crlf trimmed", []string{"temp=21.5\r\n"}, []string{"temp=21.5"}, 0},
		{"trailing spaces trimmed", []string{"value   \t\r\n"}, []string{"value"}, 0},
		{"leading spaces kept", []string{"  indented\n"}, []string{"  indented"}, 0},
		{"several in one chunk", []string{"a\nb\nc\n"}, []string{"a", "b", "c"}, 0},
		{"line split across reads", []string{"hel", "lo\nwor", "ld\n"}, []string{"hello", "world"}, 0},
		{"empty lines kept", []string{"\n\r\nx\n"}, []string{"", "", "x"}, 0},
		{"partial remains", []string{"done\npart"}, []string{"done"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewLineBuffer(DefaultLineLimit)
			var got []string
			for _, c := range tt.chunks {
				b.Write([]byte(c))
				got = append(got, drain(b)...)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
			if b.Len() != tt.rest {
				t.Errorf("Len() = %d, want %d", b.Len(), tt.rest)
			}
		})
	}
}

func TestLineBufferLossyDecode(t *testing.T) {
	b := NewLineBuffer(DefaultLineLimit)
	b.Write([]byte{'o', 'k', 0xff, 0xfe, '!', '\n'})

	line, ok := b.Next()
	if !ok {
		t.Fatal("expected a line")
	}
	if !strings.HasPrefix(line, "ok") || !strings.HasSuffix(line, "!") {
		t.Errorf("line = %q, want ok...!", line)
	}
	if !strings.ContainsRune(line, utf8.RuneError) {
		t.Errorf("line = %q, want replacement character for invalid bytes", line)
	}
}

func TestLineBufferRuneSplitAcrossReads(t *testing.T) {
	b := NewLineBuffer(DefaultLineLimit)
	word := []byte("graus: 25°C\n") // ° is 0xC2 0xB0

	idx := strings.IndexRune(string(word), '°')
	b.Write(word[:idx+1]) // ends in the middle of the rune
	if _, ok := b.Next(); ok {
		t.Fatal("no line expected yet")
	}
	b.Write(word[idx+1:])

	line, ok := b.Next()
	if !ok {
		t.Fatal("expected a line")
	}
	if line != "graus: 25°C" {
		t.Errorf("line = %q, want %q", line, "graus: 25°C")
	}
}

func TestLineBufferOverflow(t *testing.T) {
	b := NewLineBuffer(DefaultLineLimit)

	b.Write([]byte(strings.Repeat("x", 3000)))
	if b.Enforce() {
		t.Fatal("3000 bytes is under the limit")
	}

	b.Write([]byte(strings.Repeat("x", 1001)))
	if !b.Enforce() {
		t.Fatal("4001 unterminated bytes should be discarded")
	}
	if b.Len() != 0 {
		t.Errorf("Len() after overflow = %d, want 0", b.Len())
	}
	if b.Discarded() != 4001 {
		t.Errorf("Discarded() = %d, want 4001", b.Discarded())
	}

	// Whatever arrives after the discard starts a fresh line
	b.Write([]byte("xx\nnext\n"))
	got := drain(b)
	if len(got) != 2 || got[0] != "xx" || got[1] != "next" {
		t.Errorf("lines after overflow = %q", got)
	}
}

func TestLineBufferExactLimitKept(t *testing.T) {
	b := NewLineBuffer(10)
	b.Write([]byte("0123456789"))
	if b.Enforce() {
		t.Error("text exactly at the limit should be kept")
	}
	b.Write([]byte("\n"))
	if line, _ := b.Next(); line != "0123456789" {
		t.Errorf("line = %q", line)
	}
}

func TestLineBufferLimitCountsBytes(t *testing.T) {
	b := NewLineBuffer(10)

	// four 3-byte runes are 12 bytes, over a limit of 10
	b.Write([]byte("€€€€"))
	if !b.Enforce() {
		t.Fatal("12 bytes of multibyte text should exceed a 10 byte limit")
	}
	if b.Discarded() != 12 {
		t.Errorf("Discarded() = %d, want 12", b.Discarded())
	}
}

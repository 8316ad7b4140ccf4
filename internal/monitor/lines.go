package monitor

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLineLimit is the longest unterminated text, in bytes of decoded
// UTF-8, kept while waiting for a newline. Multibyte characters count once
// per byte.
const DefaultLineLimit = 4000

// LineBuffer accumulates decoded device output and splits it into lines.
//
// Input is decoded lossily: invalid UTF-8 becomes U+FFFD. An incomplete
// multi-byte sequence at the end of a chunk is held back until the next
// Write so characters split across reads survive.
type LineBuffer struct {
	limit     int
	text      string
	tail      []byte
	discarded int
}

// NewLineBuffer returns a buffer that discards unterminated text longer than limit bytes
func NewLineBuffer(limit int) *LineBuffer {
	if limit <= 0 {
		limit = DefaultLineLimit
	}
	return &LineBuffer{limit: limit}
}

// Write decodes p and appends it to the pending text
func (b *LineBuffer) Write(p []byte) {
	data := p
	if len(b.tail) > 0 {
		data = append(b.tail, p...)
		b.tail = nil
	}

	cut := incompleteSuffix(data)
	if cut < len(data) {
		b.tail = append([]byte(nil), data[cut:]...)
	}
	b.text += strings.ToValidUTF8(string(data[:cut]), string(utf8.RuneError))
}

// incompleteSuffix returns the index where a truncated trailing UTF-8
// sequence starts, or len(data) if the data ends on a rune boundary.
func incompleteSuffix(data []byte) int {
	for i := len(data) - 1; i >= 0 && i > len(data)-utf8.UTFMax; i-- {
		if utf8.RuneStart(data[i]) {
			if !utf8.FullRune(data[i:]) {
				return i
			}
			break
		}
	}
	return len(data)
}

// Next removes and returns the first complete line, trailing whitespace
// trimmed. ok is false when no newline is pending.
func (b *LineBuffer) Next() (line string, ok bool) {
	i := strings.IndexByte(b.text, '\n')
	if i < 0 {
		return "", false
	}
	line = strings.TrimRightFunc(b.text[:i], unicode.IsSpace)
	b.text = b.text[i+1:]
	return line, true
}

// Enforce clears the pending text if it has grown past the limit without a
// newline. It reports whether anything was discarded.
func (b *LineBuffer) Enforce() bool {
	if len(b.text) <= b.limit {
		return false
	}
	b.discarded += len(b.text)
	b.text = ""
	b.tail = nil
	return true
}

// Len is the size in bytes of the pending unterminated text
func (b *LineBuffer) Len() int { return len(b.text) }

// Discarded is the total number of bytes thrown away by Enforce
func (b *LineBuffer) Discarded() int { return b.discarded }

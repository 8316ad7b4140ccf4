package flash

import (
	"sort"
	"strings"
)

// DefaultFQBN is used for board names the table does not know
const DefaultFQBN = "arduino:avr:uno"

// BoardTable maps the short board names shown to users onto arduino-cli
// fully qualified board names.
type BoardTable map[string]string

// DefaultBoards returns the boards supported out of the box
func DefaultBoards() BoardTable {
	return BoardTable{
		"uno":   "arduino:avr:uno",
		"nano":  "arduino:avr:nano",
		"esp32": "esp32:esp32:esp32",
	}
}

// Merge returns a copy of t with extra entries added or replaced
func (t BoardTable) Merge(extra map[string]string) BoardTable {
	out := make(BoardTable, len(t)+len(extra))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range extra {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}

// Resolve returns the FQBN for board. Unknown names fall back to DefaultFQBN
// with known set to false.
func (t BoardTable) Resolve(board string) (fqbn string, known bool) {
	if fqbn, ok := t[strings.ToLower(strings.TrimSpace(board))]; ok {
		return fqbn, true
	}
	return DefaultFQBN, false
}

// Names returns the board names in sorted order
func (t BoardTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

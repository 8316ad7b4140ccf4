package flash

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// boardFile is the on-disk board list:
//
//	boards:
//	  mega: arduino:avr:mega
//	  s3: esp32:esp32:esp32s3
type boardFile struct {
	Boards map[string]string `yaml:"boards"`
}

// LoadBoards reads extra board names from a YAML file and merges them over t
func (t BoardTable) LoadBoards(path string) (BoardTable, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided board file
	if err != nil {
		return nil, err
	}

	var f boardFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing board file %s: %w", path, err)
	}
	return t.Merge(f.Boards), nil
}

// MarshalBoardFile writes the table in the board file format
func (t BoardTable) MarshalBoardFile() ([]byte, error) {
	return yaml.Marshal(boardFile{Boards: t})
}

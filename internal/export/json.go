package export

import (
	"encoding/json"
	"io"
	"os"
)

// WriteJSON encodes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// DumpToFile writes doc to path, or to a new temp file when path is empty.
// It returns the name of the written file.
func DumpToFile(doc Document, path string) (string, error) {
	var (
		file *os.File
		err  error
	)
	if path == "" {
		file, err = os.CreateTemp("", "matches_*.json")
	} else {
		file, err = os.Create(path)
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := WriteJSON(file, doc); err != nil {
		return "", err
	}
	return file.Name(), nil
}

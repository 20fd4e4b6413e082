package parse

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/Zuo-Peng/ai-session-dataset/internal/jsonl"
)

// ReadRecords loads a file already in normalized form, such as the output of
// collect or merge. Any undecodable line is an error.
func ReadRecords(path string) ([]Record, error) {
	var records []Record
	for line, err := range jsonl.File(path) {
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(line.Data) {
			return nil, &jsonl.DecodeError{Path: path, Line: line.Number, Err: jsonl.ErrInvalidUTF8}
		}
		var rec Record
		if err := json.Unmarshal(line.Data, &rec); err != nil {
			return nil, &jsonl.DecodeError{Path: path, Line: line.Number, Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

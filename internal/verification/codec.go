package verification

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var recordJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeRecord serializes a record for the session store
func EncodeRecord(r *Record) ([]byte, error) {
	blob, err := recordJSON.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return blob, nil
}

// DecodeRecord parses a stored blob, rejecting ones that are not a usable record
func DecodeRecord(blob []byte) (*Record, error) {
	var r Record
	if err := recordJSON.Unmarshal(blob, &r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if !r.CurrentStep.Valid() {
		return nil, fmt.Errorf("decode record: unknown step %q", r.CurrentStep)
	}
	for _, s := range r.CompletedSteps {
		if !s.Valid() {
			return nil, fmt.Errorf("decode record: unknown completed step %q", s)
		}
	}
	return &r, nil
}

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
)

// WriteJSON writes r as indented JSON followed by a newline.
func WriteJSON(w io.Writer, r *diagnosis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding json report: %w", err)
	}
	return nil
}

// WriteMsgpack writes r as MessagePack using the JSON field names.
func WriteMsgpack(w io.Writer, r *diagnosis.Report) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding msgpack report: %w", err)
	}
	return nil
}

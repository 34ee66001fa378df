package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sadopc/timer/internal/store"
)

// ToJSON writes entries as an indented JSON array using the stored entry
// encoding, so the output can be decoded back into []store.Entry.
func ToJSON(w io.Writer, entries []store.Entry) error {
	if entries == nil {
		entries = []store.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

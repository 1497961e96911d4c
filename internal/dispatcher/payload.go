package dispatcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Payload is the session-end event delivered to the dispatcher. Every
// field is optional on the wire; absent fields decode to zero values
// and are never a parse failure.
type Payload struct {
	SessionFile string `json:"session_file"`
	ProjectKey  string `json:"project_key"`
	Duration    int64  `json:"duration"` // seconds
}

// wirePayload mirrors the hook host's envelope: the interesting fields
// arrive nested under "data".
type wirePayload struct {
	Data struct {
		SessionFile string  `json:"session_file"`
		ProjectKey  string  `json:"project_key"`
		Duration    float64 `json:"duration"`
	} `json:"data"`
}

// ParsePayload decodes one event payload from r. Empty input yields a
// zero payload; malformed JSON is an error.
func ParsePayload(r io.Reader) (Payload, error) {
	var w wirePayload
	dec := json.NewDecoder(r)
	if err := dec.Decode(&w); err != nil {
		if errors.Is(err, io.EOF) {
			return Payload{}, nil
		}
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	p := Payload{
		SessionFile: w.Data.SessionFile,
		ProjectKey:  w.Data.ProjectKey,
		Duration:    int64(w.Data.Duration),
	}
	if p.Duration < 0 {
		p.Duration = 0
	}
	return p, nil
}

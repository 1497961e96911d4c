package dispatcher

import (
	"strings"
	"testing"
)

// FuzzParsePayload exercises the event decoder with arbitrary input.
func FuzzParsePayload(f *testing.F) {
	f.Add(`{"data":{"session_file":"/tmp/s.jsonl","project_key":"p","duration":300}}`)
	f.Add(`{"data":{}}`)
	f.Add(`{}`)
	f.Add(``)
	f.Add(`{"data":{"duration":-5}}`)
	f.Add(`{"data":{"duration":1e12}}`)
	f.Add(`not json at all`)
	f.Add(`{"data":{"session_file":123}}`)
	f.Add("{\"data\":{\"session_file\":\"a\x00b\"}}")

	f.Fuzz(func(t *testing.T, in string) {
		if len(in) > 1<<16 {
			t.Skip("input too long")
		}
		p, err := ParsePayload(strings.NewReader(in))
		if err != nil {
			return
		}
		if p.Duration < 0 {
			t.Errorf("negative duration survived parsing: %d (input %q)", p.Duration, in)
		}
	})
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
)

func printJSONTo(w io.Writer, v any) {
	b, _ := json.Marshal(v)
	_, _ = fmt.Fprintln(w, string(b))
}

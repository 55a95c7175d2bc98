package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonResultLine mirrors coordinator.SearchResult for the JSON-lines driver.
type jsonResultLine struct {
	Type           string             `json:"type"`
	Path           string             `json:"path"`
	ContentMatches []jsonContentMatch `json:"contentMatches,omitempty"`
}

type jsonContentMatch struct {
	LineNumber    int         `json:"lineNumber"`
	LineText      string      `json:"lineText"`
	Ranges        []jsonRange `json:"ranges"`
	ContextBefore []jsonLine  `json:"contextBefore,omitempty"`
	ContextAfter  []jsonLine  `json:"contextAfter,omitempty"`
}

type jsonRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type jsonLine struct {
	LineNumber int    `json:"lineNumber"`
	Text       string `json:"text"`
}

// jsonFormatter emits one JSON object per result on out, adapted from the
// teacher's internal/output JSONLinesFormatter concept but carrying
// SearchResult's shape instead of ripgrep's Match.
type jsonFormatter struct {
	out  io.Writer
	diag io.Writer
}

func (f *jsonFormatter) WriteResult(path string, matches []ContentMatch) error {
	line := jsonResultLine{Type: "result", Path: path}
	for _, m := range matches {
		line.ContentMatches = append(line.ContentMatches, toJSONMatch(m))
	}
	enc, err := json.Marshal(line)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f.out, string(enc))
	return err
}

func (f *jsonFormatter) WriteWarning(path, reason string) error {
	_, err := fmt.Fprintf(f.diag, "warning: %s: %s\n", path, reason)
	return err
}

func toJSONMatch(m ContentMatch) jsonContentMatch {
	out := jsonContentMatch{LineNumber: m.LineNumber, LineText: m.LineText}
	for _, r := range m.Ranges {
		out.Ranges = append(out.Ranges, jsonRange{Start: r.Start, End: r.End})
	}
	for _, l := range m.ContextBefore {
		out.ContextBefore = append(out.ContextBefore, jsonLine{LineNumber: l.LineNumber, Text: l.Text})
	}
	for _, l := range m.ContextAfter {
		out.ContextAfter = append(out.ContextAfter, jsonLine{LineNumber: l.LineNumber, Text: l.Text})
	}
	return out
}

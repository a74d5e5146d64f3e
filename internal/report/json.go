package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mbio16/ln-community-graph/internal/model"
)

// DumpIndent is the indentation of node and channel dumps.
const DumpIndent = "   "

// JSONWriter outputs reports in JSON format.
type JSONWriter struct {
	baseWriter
	indent       bool
	indentPrefix string
	indentString string
	version      string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables indented output with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion wraps each report in a JSONReport carrying version.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is a report with the version of the tool that produced it.
type JSONReport struct {
	Version string                 `json:"version"`
	Report  *model.CommunityReport `json:"report"`
}

// Write outputs the report followed by a newline.
func (w *JSONWriter) Write(report *model.CommunityReport) (int, error) {
	if w.version != "" {
		return w.writeJSON(&JSONReport{Version: w.version, Report: report})
	}
	return w.writeJSON(report)
}

// WriteBatch outputs all reports as one JSON array.
func (w *JSONWriter) WriteBatch(reports []*model.CommunityReport) (int, error) {
	if w.version == "" {
		return w.writeJSON(reports)
	}
	wrapped := make([]*JSONReport, len(reports))
	for i, r := range reports {
		wrapped[i] = &JSONReport{Version: w.version, Report: r}
	}
	return w.writeJSON(wrapped)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// marshalDump encodes v with DumpIndent. Nil slices encode as [].
func marshalDump[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}
	return json.MarshalIndent(v, "", DumpIndent)
}

// WriteNodesInfo prints the per-member node info as an indented JSON array.
func WriteNodesInfo(w io.Writer, g *model.CommunityGraph) error {
	data, err := marshalDump(g.NodesInfo)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// WriteChannels prints the in-community channels as an indented JSON array.
func WriteChannels(w io.Writer, g *model.CommunityGraph) error {
	data, err := marshalDump(g.Channels)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// SaveChannels writes the in-community channels to path, replacing any
// existing file.
func SaveChannels(path string, g *model.CommunityGraph) error {
	data, err := marshalDump(g.Channels)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write channel dump %s: %w", path, err)
	}
	return nil
}

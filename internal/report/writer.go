package report

import (
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mbio16/ln-community-graph/internal/model"
)

// Writer writes a community report in some format.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.CommunityReport) (int, error)
}

// WriteAll writes reports one after another.
func WriteAll(w Writer, reports []*model.CommunityReport) (int, error) {
	var total int
	for _, r := range reports {
		n, err := w.Write(r)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// formatSats formats a capacity with thousands separators.
func formatSats(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d sats", n)
}

// formatInt formats an integer with thousands separators.
func formatInt(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// stepTitle turns a step name such as "member_channels" into "Member Channels".
func stepTitle(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

func statusText(r *model.CommunityReport) string {
	switch {
	case r.Cancelled:
		return "Cancelled"
	case r.Failed():
		return "Error - " + r.ErrorMessage
	default:
		return "Complete"
	}
}

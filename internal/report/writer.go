package report

import (
	"io"

	"github.com/seotools/quickwin/internal/model"
)

// Writer outputs an audit result in some format. Implementations write
// to files, stdout, or both via MultiWriter with the same API.
type Writer interface {
	// Write outputs the result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.AuditResult) (int, error)
}

// MultiWriter writes one result to several Writers, e.g. a terminal
// summary plus a JSON file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer fanning out to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to every writer, stopping on the first
// error. Returns the total bytes written.
func (m *MultiWriter) Write(result *model.AuditResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// severityCounts tallies findings per severity level across all
// categories.
func severityCounts(result *model.AuditResult) map[model.Severity]int {
	counts := make(map[model.Severity]int)
	for _, findings := range result.AllFindings {
		for _, f := range findings {
			counts[f.Severity]++
		}
	}
	return counts
}

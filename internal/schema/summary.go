package schema

import (
	"fmt"
	"io"
	"strings"
)

// HasFailures reports whether any import was rejected.
func (s *Summary) HasFailures() bool { return len(s.Failed) > 0 }

// WriteTo prints a human-readable summary.
func (s *Summary) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	verb := "Imported"
	if s.DryRun {
		verb = "Would import"
	}
	b.WriteString("\nSchema import summary\n")
	line(&b, verb, s.Imported)
	line(&b, "Skipped (already exist)", s.SkippedExisting)
	line(&b, "Skipped (auth collections)", s.SkippedAuth)
	line(&b, "Skipped (excluded)", s.SkippedExcluded)
	line(&b, "Missing from schema file", s.Missing)
	line(&b, "Not in import order", s.Unordered)

	fmt.Fprintf(&b, "  %-28s %d\n", "Failed", len(s.Failed))
	for _, f := range s.Failed {
		fmt.Fprintf(&b, "    - %s: %v\n", f.Name, f.Err)
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func line(b *strings.Builder, label string, names []string) {
	fmt.Fprintf(b, "  %-28s %d", label, len(names))
	if len(names) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(names, ", "))
	}
	b.WriteByte('\n')
}

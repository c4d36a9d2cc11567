package report

import (
	"fmt"
	"io"

	"github.com/prgate/prgate/internal/finding"
)

var categoryOrder = []finding.Category{
	finding.CategoryQuality,
	finding.CategorySecurity,
	finding.CategoryPerformance,
	finding.CategoryAccessibility,
}

func severityMarker(s finding.Severity) string {
	switch s {
	case finding.SeverityBlocking:
		return "✖"
	case finding.SeverityWarning:
		return "▲"
	default:
		return "•"
	}
}

// RenderText writes the human-readable report: findings grouped by category,
// skip and failure sections, one summary line and an explicit verdict. It is
// derived from the report alone.
func RenderText(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "review of %s\n", r.Ref)

	for _, category := range categoryOrder {
		var lines []string
		for _, f := range r.Findings {
			if f.Category != category || f.RuleID == RuleDetectorFailure {
				continue
			}
			lines = append(lines, fmt.Sprintf("  %s [%s] %s:%d %s: %s",
				severityMarker(f.Severity), f.Severity, f.File, f.Line, f.RuleID, f.Message))
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", category)
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "\nskipped files\n")
		for _, s := range r.Skipped {
			fmt.Fprintf(w, "  - %s (%s)\n", s.Path, s.Reason)
		}
	}

	if r.Summary.AnalyzerFailures > 0 {
		fmt.Fprintf(w, "\nanalyzer failures\n")
		for _, f := range r.Findings {
			if f.RuleID == RuleDetectorFailure {
				fmt.Fprintf(w, "  - %s: %s\n", f.File, f.Message)
			}
		}
	}

	if r.Incomplete {
		fmt.Fprintf(w, "\nrun cancelled before completion; results below are partial\n")
	}

	fmt.Fprintf(w, "\nsummary: %d issues found (%d blocking, %d warning, %d info), %d files skipped, %d analyzer failures\n",
		r.Summary.Issues, r.Summary.Blocking, r.Summary.Warning, r.Summary.Info,
		r.Summary.SkippedFiles, r.Summary.AnalyzerFailures)

	verdict := "PASS"
	if r.Blocking {
		verdict = "FAIL"
	}
	fmt.Fprintf(w, "verdict: %s\n", verdict)

	if r.AutoFixableCount > 0 {
		fmt.Fprintf(w, "%d findings are auto-fixable (run with --auto-fix)\n", r.AutoFixableCount)
	}

	return nil
}

package report

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/prgate/prgate/internal/finding"
)

const toolName = "prgate"
const toolURI = "https://github.com/prgate/prgate"

func sarifLevel(s finding.Severity) string {
	switch s {
	case finding.SeverityBlocking:
		return "error"
	case finding.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

// RenderSARIF writes the report as a SARIF 2.1.0 run, one reporting
// descriptor per rule, so host-side code scanning UIs can ingest the verdict.
func RenderSARIF(w io.Writer, r *Report) error {
	sarifReport, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("creating sarif report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)

	seenRules := make(map[string]bool)
	for _, f := range r.Findings {
		if !seenRules[f.RuleID] {
			run.AddRule(f.RuleID).
				WithDescription(f.Message).
				WithProperties(sarif.Properties{"category": string(f.Category)})
			seenRules[f.RuleID] = true
		}

		startLine := f.Line
		if startLine < 1 {
			// file-level findings still need a valid region
			startLine = 1
		}
		run.CreateResultForRule(f.RuleID).
			WithLevel(sarifLevel(f.Severity)).
			WithMessage(sarif.NewTextMessage(f.Message)).
			AddLocation(sarif.NewLocationWithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewSimpleArtifactLocation(f.File)).
					WithRegion(sarif.NewRegion().WithStartLine(startLine)),
			))
	}

	sarifReport.AddRun(run)
	return sarifReport.Write(w)
}

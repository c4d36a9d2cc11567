package report

import (
	"github.com/prgate/prgate/internal/collect"
	"github.com/prgate/prgate/internal/finding"
)

// RuleDetectorFailure is the rule id under which isolated detector failures
// surface. Findings with this id never contribute to the gate and are counted
// as analyzer failures, not as issues.
const RuleDetectorFailure = "detector-failure"

// Summary holds the counts a caller may embed elsewhere (ticket comments, CI
// annotations). Field names are a stable contract.
type Summary struct {
	Issues           int                       `json:"issues"`
	Blocking         int                       `json:"blocking"`
	Warning          int                       `json:"warning"`
	Info             int                       `json:"info"`
	ByCategory       map[finding.Category]int  `json:"by_category"`
	SkippedFiles     int                       `json:"skipped_files"`
	AnalyzerFailures int                       `json:"analyzer_failures"`
}

// Report is the aggregate over one reviewed change. Created fresh per
// invocation and never persisted by the engine itself.
type Report struct {
	Ref              string            `json:"ref"`
	Findings         []finding.Finding `json:"findings"`
	Skipped          []collect.Skipped `json:"skipped"`
	Summary          Summary           `json:"summary"`
	AutoFixableCount int               `json:"auto_fixable_count"`
	Blocking         bool              `json:"blocking"`
	Incomplete       bool              `json:"incomplete,omitempty"`
}

// Recompute rebuilds the derived fields from the current findings. Called
// after auto-fix rewrites the finding list.
func (r *Report) Recompute() {
	r.Blocking = false
	r.AutoFixableCount = 0
	for _, f := range r.Findings {
		if f.RuleID == RuleDetectorFailure {
			continue
		}
		if f.Severity == finding.SeverityBlocking {
			r.Blocking = true
		}
		if f.Fixable {
			r.AutoFixableCount++
		}
	}
	r.Summary = ComputeSummary(r.Findings, r.Skipped)
}

// ComputeSummary derives the summary counts from the findings and skip list.
func ComputeSummary(findings []finding.Finding, skipped []collect.Skipped) Summary {
	s := Summary{
		ByCategory:   make(map[finding.Category]int),
		SkippedFiles: len(skipped),
	}
	for _, f := range findings {
		if f.RuleID == RuleDetectorFailure {
			s.AnalyzerFailures++
			continue
		}
		s.Issues++
		s.ByCategory[f.Category]++
		switch f.Severity {
		case finding.SeverityBlocking:
			s.Blocking++
		case finding.SeverityWarning:
			s.Warning++
		case finding.SeverityInfo:
			s.Info++
		}
	}
	return s
}

package engine

import (
	"fmt"
	"sort"

	"github.com/prgate/prgate/internal/collect"
	"github.com/prgate/prgate/internal/finding"
	"github.com/prgate/prgate/internal/report"
)

// dedupeKey is the finding identity used by the aggregator.
type dedupeKey struct {
	file   string
	line   int
	ruleID string
}

// aggregate merges the per-file, per-detector finding lists into one ordered,
// deduplicated report. Severities are never rewritten here; the gate verdict
// is purely derived.
func (e *Engine) aggregate(ref string, all []finding.Finding, failures []failure, skipped []collect.Skipped, incomplete bool) *report.Report {
	merged := dedupe(all)

	// detector failures surface as informational findings so they are
	// visible but can never flip the gate
	seenFailures := make(map[dedupeKey]bool)
	for _, fl := range failures {
		key := dedupeKey{file: fl.file, ruleID: fl.check.ID}
		if seenFailures[key] {
			continue
		}
		seenFailures[key] = true
		merged = append(merged, finding.Finding{
			Category: fl.check.Category,
			RuleID:   report.RuleDetectorFailure,
			Severity: finding.SeverityInfo,
			File:     fl.file,
			Line:     0,
			Message:  fmt.Sprintf("analyzer failure in rule %s", fl.check.ID),
		})
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Less(merged[j]) })

	blocking := false
	autoFixable := 0
	for _, f := range merged {
		if f.RuleID == report.RuleDetectorFailure {
			continue
		}
		if f.Severity == finding.SeverityBlocking {
			blocking = true
		}
		if f.Fixable {
			autoFixable++
		}
	}

	return &report.Report{
		Ref:              ref,
		Findings:         merged,
		Skipped:          skipped,
		Summary:          report.ComputeSummary(merged, skipped),
		AutoFixableCount: autoFixable,
		Blocking:         blocking,
		Incomplete:       incomplete,
	}
}

// dedupe drops findings sharing (file, line, rule id), keeping the first
// occurrence. Input order is deterministic because files and checks are both
// dispatched sorted.
func dedupe(all []finding.Finding) []finding.Finding {
	seen := make(map[dedupeKey]bool, len(all))
	var out []finding.Finding
	for _, f := range all {
		key := dedupeKey{file: f.File, line: f.Line, ruleID: f.RuleID}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

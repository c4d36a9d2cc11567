package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prgate/prgate/internal/collect"
	"github.com/prgate/prgate/internal/finding"
)

func sampleReport() *Report {
	findings := []finding.Finding{
		{
			Category: finding.CategoryQuality,
			RuleID:   "debug-print",
			Severity: finding.SeverityBlocking,
			File:     "src/a.js",
			Line:     2,
			Message:  "leftover debug print statement",
			Fixable:  true,
		},
		{
			Category: finding.CategorySecurity,
			RuleID:   "sql-injection",
			Severity: finding.SeverityBlocking,
			File:     "src/db.ts",
			Line:     10,
			Message:  "query built from interpolated or concatenated values",
		},
		{
			Category: finding.CategoryQuality,
			RuleID:   RuleDetectorFailure,
			Severity: finding.SeverityInfo,
			File:     "src/c.ts",
			Line:     0,
			Message:  "analyzer failure in rule type-check",
		},
	}
	skipped := []collect.Skipped{{Path: "assets/logo.png", Reason: collect.ReasonBinary}}

	r := &Report{
		Ref:      "octocat/hello-world#42",
		Findings: findings,
		Skipped:  skipped,
	}
	r.Recompute()
	return r
}

func TestComputeSummarySeparatesFailuresFromIssues(t *testing.T) {
	r := sampleReport()

	assert.Equal(t, 2, r.Summary.Issues)
	assert.Equal(t, 2, r.Summary.Blocking)
	assert.Equal(t, 1, r.Summary.AnalyzerFailures)
	assert.Equal(t, 1, r.Summary.SkippedFiles)
	assert.Equal(t, 1, r.Summary.ByCategory[finding.CategoryQuality])
	assert.Equal(t, 1, r.Summary.ByCategory[finding.CategorySecurity])
}

func TestRecomputeDerivesGateAndFixableCount(t *testing.T) {
	r := sampleReport()
	assert.True(t, r.Blocking)
	assert.Equal(t, 1, r.AutoFixableCount)

	r.Findings = r.Findings[2:] // only the detector failure remains
	r.Recompute()
	assert.False(t, r.Blocking)
	assert.Equal(t, 0, r.AutoFixableCount)
	assert.Equal(t, 0, r.Summary.Issues)
}

func TestRenderTextSections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, sampleReport()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "review of octocat/hello-world#42\n"))
	assert.Contains(t, out, "\nquality\n")
	assert.Contains(t, out, "\nsecurity\n")
	assert.Contains(t, out, "✖ [blocking] src/a.js:2 debug-print")
	assert.Contains(t, out, "skipped files\n  - assets/logo.png (binary)")
	assert.Contains(t, out, "analyzer failures\n  - src/c.ts: analyzer failure in rule type-check")
	assert.Contains(t, out, "summary: 2 issues found (2 blocking, 0 warning, 0 info), 1 files skipped, 1 analyzer failures")
	assert.Contains(t, out, "verdict: FAIL")
	assert.Contains(t, out, "1 findings are auto-fixable")
}

func TestRenderTextPassVerdict(t *testing.T) {
	r := &Report{Ref: "octocat/hello-world#1"}
	r.Recompute()

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "verdict: PASS")
	assert.NotContains(t, out, "auto-fixable")
}

func TestRenderJSONIsDeterministic(t *testing.T) {
	r := sampleReport()

	var first, second bytes.Buffer
	require.NoError(t, RenderJSON(&first, r))
	require.NoError(t, RenderJSON(&second, r))
	assert.Equal(t, first.String(), second.String())

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(first.Bytes(), &decoded))
	assert.Equal(t, "octocat/hello-world#42", decoded["ref"])
	assert.Equal(t, true, decoded["blocking"])

	summary, ok := decoded["summary"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), summary["issues"])
	assert.Equal(t, float64(1), summary["analyzer_failures"])
}

func TestRenderSARIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSARIF(&buf, sampleReport()))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2.1.0", doc["version"])

	runs, ok := doc["runs"].([]interface{})
	require.True(t, ok)
	require.Len(t, runs, 1)

	out := buf.String()
	assert.Contains(t, out, `"name":"prgate"`)
	assert.Contains(t, out, "sql-injection")
	assert.Contains(t, out, `"error"`)
}

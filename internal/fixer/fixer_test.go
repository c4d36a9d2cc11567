package fixer

import (
	"context"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prgate/prgate/internal/checks"
	"github.com/prgate/prgate/internal/collect"
	"github.com/prgate/prgate/internal/engine"
	"github.com/prgate/prgate/internal/finding"
	"github.com/prgate/prgate/pkg/shared/config"
)

func testRegistry(t *testing.T) *checks.Registry {
	t.Helper()
	registry, err := checks.DefaultRegistry(config.Engine{
		FunctionLines:   config.DefaultFunctionLines,
		Complexity:      config.DefaultComplexity,
		LineLength:      config.DefaultLineLength,
		SecretMinLength: config.DefaultSecretMinLength,
		SecretEntropy:   config.DefaultSecretEntropy,
		ToolTimeout:     config.DefaultToolTimeout,
	})
	require.NoError(t, err)
	return registry
}

func fixOnce(t *testing.T, files []checks.File) []Outcome {
	t.Helper()
	registry := testRegistry(t)
	opts := checks.Options{AutoFix: true}

	e := engine.New(registry, opts, 1, hclog.NewNullLogger())
	rep := e.Analyze(context.Background(), "r#1", &collect.Result{Files: files})

	x := New(registry, opts, 1, hclog.NewNullLogger())
	return x.Fix(context.Background(), files, rep.Findings)
}

func TestFixRemovesDebugPrintsAndTrimsWhitespace(t *testing.T) {
	f := checks.File{
		Path: "src/app.js",
		Lines: []string{
			"function run() {",
			"  console.log('starting');",
			"  doWork();  ",
			"  console.log('done');",
			"}",
		},
	}

	outcomes := fixOnce(t, []checks.File{f})
	require.Len(t, outcomes, 1)

	o := outcomes[0]
	assert.Equal(t, "src/app.js", o.File)
	assert.Empty(t, o.Outstanding)
	require.Len(t, o.Applied, 3)

	want := "function run() {\n" +
		"  doWork();\n" +
		"}\n"
	assert.Equal(t, want, o.Content)
}

func TestFixPreservesFinalNewlineState(t *testing.T) {
	terminated := checks.File{
		Path:  "src/term.js",
		Lines: []string{"console.log('x');", "keep();"},
	}
	unterminated := checks.File{
		Path:           "src/unterm.js",
		Lines:          []string{"console.log('x');", "keep();"},
		NoFinalNewline: true,
	}

	outcomes := fixOnce(t, []checks.File{terminated, unterminated})
	require.Len(t, outcomes, 2)

	byPath := make(map[string]Outcome)
	for _, o := range outcomes {
		byPath[o.File] = o
	}
	assert.Equal(t, "keep();\n", byPath["src/term.js"].Content)
	assert.Equal(t, "keep();", byPath["src/unterm.js"].Content)
}

func TestFixSameLineRewritesCompose(t *testing.T) {
	// the deleted line also carries trailing whitespace; both rules fire on
	// it and the combined result must still verify
	f := checks.File{
		Path:  "src/app.js",
		Lines: []string{"console.log('x');   ", "keep();"},
	}

	outcomes := fixOnce(t, []checks.File{f})
	require.Len(t, outcomes, 1)

	o := outcomes[0]
	assert.Empty(t, o.Outstanding)
	require.Len(t, o.Applied, 2)
	assert.Equal(t, "keep();\n", o.Content)
}

func TestFixDescendingOrderSurvivesLineShifts(t *testing.T) {
	// two deletions far apart; the later deletion must not invalidate the
	// earlier finding's line number
	var lines []string
	lines = append(lines, "console.log('first');")
	for i := 0; i < 30; i++ {
		lines = append(lines, "work();")
	}
	lines = append(lines, "console.log('second');")
	lines = append(lines, "done();")

	f := checks.File{Path: "src/long.js", Lines: lines}
	outcomes := fixOnce(t, []checks.File{f})
	require.Len(t, outcomes, 1)

	o := outcomes[0]
	require.Len(t, o.Applied, 2)
	assert.NotContains(t, o.Content, "console.log")
	assert.Contains(t, o.Content, "done();")
}

func TestFixIsIdempotent(t *testing.T) {
	f := checks.File{
		Path:  "src/app.js",
		Lines: []string{"clean();", "dirty();   "},
	}

	first := fixOnce(t, []checks.File{f})
	require.Len(t, first, 1)
	require.NotEmpty(t, first[0].Content)

	fixed := checks.File{Path: f.Path, Lines: strings.Split(strings.TrimSuffix(first[0].Content, "\n"), "\n")}
	second := fixOnce(t, []checks.File{fixed})
	assert.Empty(t, second, "a fixed file must produce no further fix targets")
}

func TestFixLeavesNonFixableFindingsAlone(t *testing.T) {
	f := checks.File{
		Path: "src/app.js",
		Lines: []string{
			"// TODO: refactor",
			"console.log('x');",
		},
	}

	outcomes := fixOnce(t, []checks.File{f})
	require.Len(t, outcomes, 1)

	// only the debug print is fixed; the marker comment stays in the content
	assert.Contains(t, outcomes[0].Content, "TODO")
	assert.NotContains(t, outcomes[0].Content, "console.log")
}

func TestFixHashChainRecordsRewrites(t *testing.T) {
	f := checks.File{Path: "src/app.js", Lines: []string{"console.log('x');", "rest();"}}

	outcomes := fixOnce(t, []checks.File{f})
	require.Len(t, outcomes, 1)
	require.Len(t, outcomes[0].Applied, 1)

	app := outcomes[0].Applied[0]
	assert.Equal(t, "debug-print", app.RuleID)
	assert.NotEqual(t, app.BeforeHash, app.AfterHash)
	assert.Equal(t, contentHash(outcomes[0].Content), app.AfterHash)
}

func TestFixOutOfRangeFindingIsOutstanding(t *testing.T) {
	f := checks.File{Path: "src/app.js", Lines: []string{"console.log('x');"}}

	stale := finding.Finding{
		Category: finding.CategoryQuality,
		RuleID:   "debug-print",
		Severity: finding.SeverityBlocking,
		File:     "src/app.js",
		Line:     99,
		Fixable:  true,
	}

	x := New(testRegistry(t), checks.Options{AutoFix: true}, 1, hclog.NewNullLogger())
	outcomes := x.Fix(context.Background(), []checks.File{f}, []finding.Finding{stale})
	require.Len(t, outcomes, 1)

	assert.Empty(t, outcomes[0].Applied)
	require.Len(t, outcomes[0].Outstanding, 1)
	assert.Equal(t, 99, outcomes[0].Outstanding[0].Line)
}

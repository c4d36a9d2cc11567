package review

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prgate/prgate/internal/checks"
	"github.com/prgate/prgate/internal/collect"
	"github.com/prgate/prgate/internal/finding"
	"github.com/prgate/prgate/internal/fixer"
)

func TestGuardLocalFixesRefusesDirtyWorkingTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("edited since review\n"), 0o644))

	collected := &collect.Result{Files: []checks.File{
		{Path: "app.js", Lines: []string{"console.log('x');", "keep();"}},
	}}
	debugPrint := finding.Finding{
		Category: finding.CategoryQuality,
		RuleID:   "debug-print",
		Severity: finding.SeverityBlocking,
		File:     "app.js",
		Line:     1,
		Fixable:  true,
	}
	outcomes := []fixer.Outcome{{
		File:    "app.js",
		Content: "keep();\n",
		Applied: []fixer.Application{{RuleID: "debug-print", File: "app.js"}},
	}}

	guarded := guardLocalFixes(dir, outcomes, collected, []finding.Finding{debugPrint}, hclog.NewNullLogger())
	require.Len(t, guarded, 1)

	assert.Empty(t, guarded[0].Applied)
	require.Len(t, guarded[0].Outstanding, 1)
	assert.Equal(t, "debug-print", guarded[0].Outstanding[0].RuleID)

	// the uncommitted edit stays untouched
	current, err := os.ReadFile(filepath.Join(dir, "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "edited since review\n", string(current))
}

func TestGuardLocalFixesKeepsCleanWorkingTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('x');\nkeep();\n"), 0o644))

	collected := &collect.Result{Files: []checks.File{
		{Path: "app.js", Lines: []string{"console.log('x');", "keep();"}},
	}}
	outcomes := []fixer.Outcome{{
		File:    "app.js",
		Content: "keep();\n",
		Applied: []fixer.Application{{RuleID: "debug-print", File: "app.js"}},
	}}

	guarded := guardLocalFixes(dir, outcomes, collected, nil, hclog.NewNullLogger())
	require.Len(t, guarded, 1)
	assert.Len(t, guarded[0].Applied, 1)
	assert.Equal(t, "keep();\n", guarded[0].Content)
}

package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prgate/prgate/internal/finding"
	"github.com/prgate/prgate/pkg/shared/config"
)

func testEngineConfig() config.Engine {
	return config.Engine{
		Jobs:             1,
		MaxFileSizeBytes: config.DefaultMaxFileSizeBytes,
		FunctionLines:    config.DefaultFunctionLines,
		Complexity:       config.DefaultComplexity,
		LineLength:       config.DefaultLineLength,
		SecretMinLength:  config.DefaultSecretMinLength,
		SecretEntropy:    config.DefaultSecretEntropy,
		ToolTimeout:      config.DefaultToolTimeout,
	}
}

func runRule(t *testing.T, id string, f File) []finding.Finding {
	t.Helper()
	registry, err := DefaultRegistry(testEngineConfig())
	require.NoError(t, err)
	c, ok := registry.Lookup(id)
	require.True(t, ok, "rule %s not registered", id)
	found, err := c.Match(context.Background(), f)
	require.NoError(t, err)
	return found
}

func TestRegistryRejectsDuplicateID(t *testing.T) {
	r := NewRegistry()
	match := func(context.Context, File) ([]finding.Finding, error) { return nil, nil }

	require.NoError(t, r.Register(Check{ID: "a-rule", Category: finding.CategoryQuality, Match: match}))
	err := r.Register(Check{ID: "a-rule", Category: finding.CategorySecurity, Match: match})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestRegistryRejectsEmptyIDAndNilMatch(t *testing.T) {
	r := NewRegistry()
	match := func(context.Context, File) ([]finding.Finding, error) { return nil, nil }

	assert.Error(t, r.Register(Check{ID: "", Match: match}))
	assert.Error(t, r.Register(Check{ID: "no-match"}))
}

func TestEnabledCategoriesAreOptIn(t *testing.T) {
	registry, err := DefaultRegistry(testEngineConfig())
	require.NoError(t, err)

	categoriesOf := func(opts Options) map[finding.Category]bool {
		got := make(map[finding.Category]bool)
		for _, c := range registry.Enabled(opts) {
			got[c.Category] = true
		}
		return got
	}

	base := categoriesOf(Options{})
	assert.True(t, base[finding.CategoryQuality])
	assert.False(t, base[finding.CategorySecurity])
	assert.False(t, base[finding.CategoryPerformance])
	assert.False(t, base[finding.CategoryAccessibility])

	all := categoriesOf(Options{Security: true, Performance: true, Accessibility: true})
	assert.True(t, all[finding.CategorySecurity])
	assert.True(t, all[finding.CategoryPerformance])
	assert.True(t, all[finding.CategoryAccessibility])
}

func TestEnabledIsSortedByRuleID(t *testing.T) {
	registry, err := DefaultRegistry(testEngineConfig())
	require.NoError(t, err)

	enabled := registry.Enabled(Options{Security: true, Performance: true, Accessibility: true})
	for i := 1; i < len(enabled); i++ {
		assert.Less(t, enabled[i-1].ID, enabled[i].ID)
	}
}

func TestNearChangedAdjacency(t *testing.T) {
	f := File{Changed: map[int]bool{5: true}}

	assert.True(t, f.NearChanged(4))
	assert.True(t, f.NearChanged(5))
	assert.True(t, f.NearChanged(6))
	assert.False(t, f.NearChanged(3))
	assert.False(t, f.NearChanged(7))

	whole := File{}
	assert.True(t, whole.NearChanged(9999))
}

func TestDebugPrintDetection(t *testing.T) {
	f := File{
		Path: "src/app.js",
		Lines: []string{
			"function run() {",
			"  console.log('starting');",
			"  // console.log('commented out');",
			"  logger.info('fine');",
			"}",
		},
	}

	found := runRule(t, "debug-print", f)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].Line)
	assert.Equal(t, finding.SeverityBlocking, found[0].Severity)
	assert.True(t, found[0].Fixable)
}

func TestDebugPrintIgnoresUnchangedLines(t *testing.T) {
	f := File{
		Path: "src/app.js",
		Lines: []string{
			"console.log('old');",
			"const a = 1;",
			"const b = 2;",
			"console.log('new');",
		},
		Changed: map[int]bool{4: true},
	}

	found := runRule(t, "debug-print", f)
	require.Len(t, found, 1)
	assert.Equal(t, 4, found[0].Line)
}

func TestMarkerCommentDetection(t *testing.T) {
	f := File{
		Path: "src/app.js",
		Lines: []string{
			"// TODO: remove this before release",
			"// fixme: lowercase works too",
			"// a todo list is not a marker",
		},
	}

	found := runRule(t, "marker-comment", f)
	require.Len(t, found, 2)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 2, found[1].Line)
}

func TestTrailingWhitespaceDetection(t *testing.T) {
	f := File{
		Path:  "src/app.js",
		Lines: []string{"clean line", "dirty line   ", "tab dirty\t"},
	}

	found := runRule(t, "trailing-whitespace", f)
	require.Len(t, found, 2)
	assert.Equal(t, 2, found[0].Line)
	assert.Equal(t, 3, found[1].Line)
	assert.Equal(t, finding.SeverityInfo, found[0].Severity)
}

func TestLongLineIgnoresTrailingWhitespaceOnly(t *testing.T) {
	long := make([]byte, 130)
	for i := range long {
		long[i] = 'x'
	}
	f := File{
		Path:  "src/app.js",
		Lines: []string{string(long), "short"},
	}

	found := runRule(t, "long-line", f)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Line)
}

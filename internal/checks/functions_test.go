package checks

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanFunctionsSpans(t *testing.T) {
	lines := []string{
		"import { x } from './x';",
		"function alpha() {",
		"  return x;",
		"}",
		"",
		"export const beta = async (a, b) => {",
		"  if (a) {",
		"    return b;",
		"  }",
		"  return a;",
		"};",
	}

	spans := scanFunctions(lines)
	require.Len(t, spans, 2)

	assert.Equal(t, "alpha", spans[0].name)
	assert.Equal(t, 2, spans[0].start)
	assert.Equal(t, 4, spans[0].end)

	assert.Equal(t, "beta", spans[1].name)
	assert.Equal(t, 6, spans[1].start)
	assert.Equal(t, 11, spans[1].end)
}

func TestScanFunctionsBracelessArrowSpansOneLine(t *testing.T) {
	lines := []string{
		"const add = (a, b) => a + b;",
		"",
		"function later() {",
		"  return add(1, 2);",
		"}",
	}

	spans := scanFunctions(lines)
	require.Len(t, spans, 2)

	assert.Equal(t, "add", spans[0].name)
	assert.Equal(t, 1, spans[0].start)
	assert.Equal(t, 1, spans[0].end)

	assert.Equal(t, "later", spans[1].name)
	assert.Equal(t, 3, spans[1].start)
	assert.Equal(t, 5, spans[1].end)
}

func TestFunctionLengthIgnoresBracelessArrow(t *testing.T) {
	// the arrow has no body braces; its span must not swallow the rest of
	// the file
	lines := []string{"const add = (a, b) => a + b;"}
	for i := 0; i < 55; i++ {
		lines = append(lines, fmt.Sprintf("export const v%d = %d;", i, i))
	}

	f := File{Path: "src/util.js", Lines: lines, Changed: map[int]bool{1: true}}
	assert.Empty(t, runRule(t, "function-length", f))
}

func TestComplexityCountsBranchesAndTernaries(t *testing.T) {
	lines := []string{
		"function gamma(a, b) {",
		"  if (a) {",
		"    return b ? 1 : 2;",
		"  }",
		"  for (const x of b) {",
		"    while (x) { break; }",
		"  }",
		"  return 0;",
		"}",
	}

	spans := scanFunctions(lines)
	require.Len(t, spans, 1)
	// base 1 + if + ternary + for + while
	assert.Equal(t, 5, spans[0].complexity(lines))
}

func TestFunctionLengthOnlyFlagsTouchedFunctions(t *testing.T) {
	var lines []string
	lines = append(lines, "function longOne() {")
	for i := 0; i < 60; i++ {
		lines = append(lines, fmt.Sprintf("  work(%d);", i))
	}
	lines = append(lines, "}")
	lines = append(lines, "function shortOne() {")
	lines = append(lines, "  return 1;")
	lines = append(lines, "}")

	touched := File{Path: "src/long.ts", Lines: lines, Changed: map[int]bool{30: true}}
	found := runRule(t, "function-length", touched)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Line)

	untouched := File{Path: "src/long.ts", Lines: lines, Changed: map[int]bool{64: true}}
	assert.Empty(t, runRule(t, "function-length", untouched))
}

func TestFunctionComplexityBudget(t *testing.T) {
	var lines []string
	lines = append(lines, "function busy(a) {")
	for i := 0; i < 12; i++ {
		lines = append(lines, fmt.Sprintf("  if (a === %d) { handle(%d); }", i, i))
	}
	lines = append(lines, "}")

	f := File{Path: "src/busy.ts", Lines: lines}
	found := runRule(t, "function-complexity", f)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, "function-complexity", found[0].RuleID)
}

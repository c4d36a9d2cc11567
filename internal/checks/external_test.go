package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolLines(t *testing.T) {
	testCases := []struct {
		name    string
		output  string
		maxLine int
		want    []int
	}{
		{
			name:    "colon addressed",
			output:  "scratch.ts:12:5 - error TS2322: type mismatch\nscratch.ts:3:1 - error TS2304",
			maxLine: 50,
			want:    []int{3, 12},
		},
		{
			name:    "paren addressed",
			output:  "scratch.ts(7,2): error TS1005",
			maxLine: 50,
			want:    []int{7},
		},
		{
			name:    "duplicates collapse",
			output:  "a.ts:4:1 x\na.ts:4:9 y",
			maxLine: 50,
			want:    []int{4},
		},
		{
			name:    "out of range falls back to line one",
			output:  "a.ts:400:1 x",
			maxLine: 10,
			want:    []int{1},
		},
		{
			name:    "no address falls back to line one",
			output:  "something went wrong",
			maxLine: 10,
			want:    []int{1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseToolLines([]byte(tc.output), tc.maxLine))
		})
	}
}

func TestUnconfiguredToolYieldsNothing(t *testing.T) {
	registry, err := DefaultRegistry(testEngineConfig())
	require.NoError(t, err)

	f := File{Path: "src/app.ts", Lines: []string{"const a = 1;"}}
	for _, id := range []string{"formatting", "lint", "type-check"} {
		c, ok := registry.Lookup(id)
		require.True(t, ok)
		found, err := c.Match(context.Background(), f)
		assert.NoError(t, err)
		assert.Empty(t, found)
	}
}

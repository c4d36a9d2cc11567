package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingMemoizationOnlyInReactFiles(t *testing.T) {
	reactFile := File{
		Path: "src/List.tsx",
		Lines: []string{
			`import React from 'react';`,
			"const visible = items.filter(isVisible).map(toRow);",
			"const memoized = useMemo(() => items.sort(byName), [items]);",
		},
	}
	found := runRule(t, "missing-memoization", reactFile)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].Line)

	plainFile := File{
		Path:  "src/util.ts",
		Lines: []string{"const visible = items.filter(isVisible).map(toRow);"},
	}
	assert.Empty(t, runRule(t, "missing-memoization", plainFile))
}

func TestMutatingIterationDetection(t *testing.T) {
	f := File{
		Path: "src/cart.ts",
		Lines: []string{
			"items.forEach((item) => {",
			"  if (item.stale) {",
			"    items.splice(items.indexOf(item), 1);",
			"  }",
			"});",
			"others.forEach((o) => {",
			"  results.push(o.id);",
			"});",
		},
	}

	found := runRule(t, "mutating-iteration", f)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Line)
}

func TestMissingListKeyDetection(t *testing.T) {
	f := File{
		Path: "src/Rows.tsx",
		Lines: []string{
			`import React from 'react';`,
			"const rows = items.map((item) => (",
			"  <Row value={item.value} />",
			"));",
			"const keyed = items.map((item) => (",
			"  <Row key={item.id} value={item.value} />",
			"));",
		},
	}

	found := runRule(t, "missing-list-key", f)
	require.Len(t, found, 1)
	assert.Equal(t, 3, found[0].Line)
}

func TestLeakySubscriptionDetection(t *testing.T) {
	leaky := File{
		Path: "src/Widget.tsx",
		Lines: []string{
			"useEffect(() => {",
			"  window.addEventListener('resize', onResize);",
			"}, []);",
		},
	}
	found := runRule(t, "leaky-subscription", leaky)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Line)

	clean := File{
		Path: "src/Widget.tsx",
		Lines: []string{
			"useEffect(() => {",
			"  window.addEventListener('resize', onResize);",
			"  return () => window.removeEventListener('resize', onResize);",
			"}, []);",
		},
	}
	assert.Empty(t, runRule(t, "leaky-subscription", clean))
}

func TestHeavyImportDetection(t *testing.T) {
	f := File{
		Path: "src/util.ts",
		Lines: []string{
			`import * as _ from 'lodash';`,
			`import debounce from 'lodash/debounce';`,
			`import moment from 'moment';`,
		},
	}

	found := runRule(t, "heavy-import", f)
	require.Len(t, found, 2)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 3, found[1].Line)
}

func TestSyncOperationsDetection(t *testing.T) {
	f := File{
		Path: "src/loader.ts",
		Lines: []string{
			`const raw = fs.readFileSync(path);`,
			`const data = await fs.promises.readFile(path);`,
			`while (Date.now() < deadline) {}`,
		},
	}

	found := runRule(t, "sync-operations", f)
	require.Len(t, found, 2)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 3, found[1].Line)
}

func TestUnoptimizedImagesDetection(t *testing.T) {
	f := File{
		Path: "src/Hero.jsx",
		Lines: []string{
			`<img src="/hero.png" className="hero" />`,
			`<img src="/banner.jpg" loading="lazy" />`,
			`<Image src="/logo.png" width={64} height={64} />`,
			`const bg = require('./bg.jpeg');`,
		},
	}

	found := runRule(t, "unoptimized-images", f)
	require.Len(t, found, 2)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 4, found[1].Line)
}

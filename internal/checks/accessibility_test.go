package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImgAltDetection(t *testing.T) {
	f := File{
		Path: "src/Card.tsx",
		Lines: []string{
			`<img src="/logo.png" />`,
			`<img src="/logo.png" alt="company logo" />`,
			`<Image src={avatar} />`,
		},
	}

	found := runRule(t, "img-alt", f)
	require.Len(t, found, 2)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 3, found[1].Line)
}

func TestIconButtonLabelDetection(t *testing.T) {
	f := File{
		Path: "src/Toolbar.tsx",
		Lines: []string{
			`<button onClick={close}><CloseIcon /></button>`,
			`<button aria-label="close" onClick={close}><CloseIcon /></button>`,
			`<button onClick={save}>Save</button>`,
		},
	}

	found := runRule(t, "icon-button-label", f)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Line)
}

func TestInputLabelDetection(t *testing.T) {
	f := File{
		Path: "src/Form.tsx",
		Lines: []string{
			`<input type="text" value={name} />`,
			`<input id="name" type="text" value={name} />`,
			`<input aria-label="name" type="text" value={name} />`,
			`<input type="hidden" value={csrf} />`,
		},
	}

	found := runRule(t, "input-label", f)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Line)
}

func TestHeadingOrderIsFileGlobal(t *testing.T) {
	f := File{
		Path: "src/Page.tsx",
		Lines: []string{
			"<h1>Title</h1>",
			"<h3>Skipped a level</h3>",
			"<h4>Fine, one step down</h4>",
		},
		Changed: map[int]bool{3: true},
	}

	found := runRule(t, "heading-order", f)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].Line)
}

func TestClickHandlerRoleDetection(t *testing.T) {
	f := File{
		Path: "src/Menu.tsx",
		Lines: []string{
			`<div onClick={open}>menu</div>`,
			`<div role="button" onClick={open}>menu</div>`,
			`<button onClick={open}>menu</button>`,
		},
	}

	found := runRule(t, "click-handler-role", f)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Line)
}

func TestFocusOutlineDetection(t *testing.T) {
	f := File{
		Path: "src/styles.css",
		Lines: []string{
			"button { outline: none; }",
			"button:focus-visible { outline: none; box-shadow: 0 0 0 2px blue; }",
		},
	}

	found := runRule(t, "focus-outline", f)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Line)
}

func TestColorContrastDetection(t *testing.T) {
	f := File{
		Path: "src/Card.jsx",
		Lines: []string{
			`<p style={{ color: '#eeeeee' }}>faint</p>`,
			`<span className="text-gray-300">dim</span>`,
			`<p style={{ color: '#767676' }}>readable</p>`,
			`const light = { color: '#efefef' };`,
		},
	}

	found := runRule(t, "color-contrast", f)
	require.Len(t, found, 2)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 2, found[1].Line)
}

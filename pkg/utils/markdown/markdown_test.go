package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_Basic(t *testing.T) {
	n := NewNotes("# Trip notes\n\nshot on the *old* camera")
	html := n.Render()
	require.Contains(t, html, "<h1")
	require.Contains(t, html, "<em>old</em>")
}

func TestRender_SanitizesScript(t *testing.T) {
	n := NewNotes(`hello <script>alert(1)</script> world`)
	html := n.Render()
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, "hello")
}

func TestRender_Cached(t *testing.T) {
	n := NewNotes("plain")
	first := n.Render()
	require.Equal(t, first, n.Render())
}

func TestScan_ResetsCache(t *testing.T) {
	n := NewNotes("one")
	_ = n.Render()
	require.NoError(t, n.Scan("two"))
	require.Contains(t, n.Render(), "two")
}

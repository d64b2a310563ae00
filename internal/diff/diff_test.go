package diff

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Identical(t *testing.T) {
	doc := "part 'images.g.dart';\n"
	result, err := Compute(doc, doc, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, result.HasDifferences)
	assert.Empty(t, result.Hunks)
}

func TestCompute_Different(t *testing.T) {
	old := "class _Image {\n  final String logo = 'a.png';\n}\n"
	new := "class _Image {\n  final String logo = 'b.png';\n}\n"
	result, err := Compute(old, new, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences)
	assert.Len(t, result.Hunks, 1)
	assert.Contains(t, result.Unified, "-  final String logo = 'a.png';")
	assert.Contains(t, result.Unified, "+  final String logo = 'b.png';")
}

func TestCompute_Labels(t *testing.T) {
	opts := DefaultOptions()
	opts.OldLabel = "before.yaml"
	opts.NewLabel = "after.yaml"
	result, err := Compute("name: before\n", "name: after\n", opts)
	require.NoError(t, err)
	assert.Contains(t, result.Unified, "--- before.yaml")
	assert.Contains(t, result.Unified, "+++ after.yaml")
}

func TestCompute_EmptySides(t *testing.T) {
	result, err := Compute("", "a\nb\n", DefaultOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences)
	assert.Contains(t, result.Unified, "+a\n+b\n")

	result, err = Compute("a\n", "", DefaultOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences)
	assert.Contains(t, result.Unified, "-a\n")
}

// ---------------------------------------------------------------------------
// FileChange
// ---------------------------------------------------------------------------

func TestFileChange(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		c, err := FileChange("lib/assets.dart", nil, false, []byte("x\n"), true)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, ActionCreate, c.Action)
		assert.Contains(t, c.Diff.Unified, "--- /dev/null")
		assert.Contains(t, c.Diff.Unified, "+++ b/lib/assets.dart")
	})

	t.Run("update", func(t *testing.T) {
		c, err := FileChange("pubspec.yaml", []byte("a\n"), true, []byte("b\n"), true)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, ActionUpdate, c.Action)
	})

	t.Run("unchanged", func(t *testing.T) {
		c, err := FileChange("pubspec.yaml", []byte("a\n"), true, []byte("a\n"), true)
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("delete", func(t *testing.T) {
		c, err := FileChange("lib/old.g.dart", []byte("a\n"), true, nil, false)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, ActionDelete, c.Action)
		assert.Contains(t, c.Diff.Unified, "+++ /dev/null")
	})

	t.Run("delete missing", func(t *testing.T) {
		c, err := FileChange("lib/none.g.dart", nil, false, nil, false)
		require.NoError(t, err)
		assert.Nil(t, c)
	})
}

// ---------------------------------------------------------------------------
// Write
// ---------------------------------------------------------------------------

func TestWrite_NoColor(t *testing.T) {
	result, err := Compute("line1\nline2\n", "line1\nline3\n", DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	Write(&buf, result, false)
	out := buf.String()
	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "-line2\n")
	assert.Contains(t, out, "+line3\n")
}

func TestWrite_NoDifferences(t *testing.T) {
	result, err := Compute("same\n", "same\n", DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	Write(&buf, result, false)
	assert.Contains(t, buf.String(), "No differences")
}

func TestWriteChanges(t *testing.T) {
	var buf bytes.Buffer
	WriteChanges(&buf, nil, false)
	assert.Equal(t, "Everything is up to date.\n", buf.String())

	c, err := FileChange("pubspec.yaml", []byte("a\n"), true, []byte("b\n"), true)
	require.NoError(t, err)

	buf.Reset()
	WriteChanges(&buf, []*Change{c}, false)
	assert.Contains(t, buf.String(), "update pubspec.yaml\n")
	assert.Contains(t, buf.String(), "+b\n")
}

func TestStyleLine_KeepsText(t *testing.T) {
	for _, line := range []string{"--- a", "+++ b", "@@ -1 +1 @@", "-x", "+y", " z"} {
		assert.Contains(t, styleLine(line), line)
	}
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a\n", "b\n", "c"}, splitLines("a\nb\nc"))
	assert.Equal(t, []string{"a\n", "b\n", "c\n"}, splitLines("a\nb\nc\n"))
	assert.Nil(t, splitLines(""))
}

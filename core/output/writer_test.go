package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w, err := New(dir)
	require.NoError(t, err)

	path, err := w.Write("Hello-World-2024-03-05.md", []byte("# Hello"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Hello-World-2024-03-05.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Hello", string(data))
}

func TestWriter_WriteStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	path, err := w.Write("../../escape.md", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.md"), path)
}

func TestObsidianURI(t *testing.T) {
	assert.Equal(t,
		"obsidian://new?file=Hello-World-2024-03-05&clipboard=true",
		ObsidianURI("Hello-World-2024-03-05.md"))
	assert.Equal(t,
		"obsidian://new?file=a%20b%26c&clipboard=true",
		ObsidianURI("a b&c.md"))
	assert.Equal(t,
		"obsidian://new?file=%E4%BD%A0%E5%A5%BD&clipboard=true",
		ObsidianURI("你好.md"))
}

func TestEncodeURIComponent(t *testing.T) {
	tests := map[string]string{
		"plain":          "plain",
		"a b":            "a%20b",
		"a+b=c&d":        "a%2Bb%3Dc%26d",
		"keep-_.!~*'()":  "keep-_.!~*'()",
		"path/with?mark": "path%2Fwith%3Fmark",
		"100%":           "100%25",
		"é":              "%C3%A9",
	}
	for in, want := range tests {
		assert.Equal(t, want, encodeURIComponent(in), in)
	}
}

package htmldoc

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReader_ConvertsCharset(t *testing.T) {
	doc := New(WithLogger(nullLogger()))

	err := doc.LoadReader(bytes.NewReader([]byte("<p>caf\xe9</p>")), "text/html; charset=iso-8859-1")
	require.NoError(t, err)

	assert.Equal(t, "<p>café</p>", save(t, doc))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.html")
	require.NoError(t, os.WriteFile(path, []byte("<div>x</div>\n"), 0o644))

	doc := New(WithLogger(nullLogger()))
	require.NoError(t, doc.LoadFile(path))
	assert.Equal(t, "<div>x</div>", save(t, doc))

	err := doc.LoadFile(filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveFile(t *testing.T) {
	doc := load(t, `<p>one</p><p>two</p>`)
	path := filepath.Join(t.TempDir(), "out.html")

	n, err := doc.SaveFile(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `<p>one</p><p>two</p>`, string(data))
	assert.Equal(t, len(data), n)
}

func TestSaveFile_SizeLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxOutputSize = 5

	doc := load(t, `<p>too long</p>`, WithConfig(cfg))
	path := filepath.Join(t.TempDir(), "out.html")

	_, err := doc.SaveFile(path)
	require.ErrorIs(t, err, ErrFileTooLarge)

	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestSaveFile_NotLoaded(t *testing.T) {
	_, err := New(WithLogger(nullLogger())).SaveFile(filepath.Join(t.TempDir(), "out.html"))
	assert.ErrorIs(t, err, ErrNotLoaded)
}

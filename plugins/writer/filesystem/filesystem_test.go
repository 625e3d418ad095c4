package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordfreq/pkg/contract"
)

func noTemps(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "tmp file not cleaned: %s", e.Name())
	}
}

func TestWriteAtomicReplaceExisting(t *testing.T) {
	dir := t.TempDir()
	w, err := New(&Options{OutputDir: dir})
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), "freq.tsv", strings.NewReader("the\t1\n")))
	require.NoError(t, w.Write(context.Background(), "freq.tsv", strings.NewReader("the\t2\n")))
	b, err := os.ReadFile(filepath.Join(dir, "freq.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "the\t2\n", string(b))
	noTemps(t, dir)
}

func TestWriteSubdirAndFlat(t *testing.T) {
	dir := t.TempDir()
	atomic := false
	w, err := New(&Options{OutputDir: dir, Atomic: &atomic})
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), "reports/freq.tsv", strings.NewReader("v")))
	_, err = os.Stat(filepath.Join(dir, "reports", "freq.tsv"))
	require.NoError(t, err)

	fw, err := New(&Options{OutputDir: dir, Flat: true})
	require.NoError(t, err)
	require.NoError(t, fw.Write(context.Background(), "reports/flat.tsv", strings.NewReader("v")))
	_, err = os.Stat(filepath.Join(dir, "flat.tsv"))
	require.NoError(t, err)
}

func TestMapPathInvalid(t *testing.T) {
	w, err := New(&Options{OutputDir: t.TempDir()})
	require.NoError(t, err)
	for _, id := range []string{"../bad", "..", ".", "/abs"} {
		_, err := w.mapPath(contract.ArtifactID(id))
		assert.ErrorIs(t, err, contract.ErrPathInvalid, id)
	}
}

func TestNewDefaults(t *testing.T) {
	w, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, ".", w.root)
	assert.True(t, w.atomic)

	_, err = New(&Options{BufSize: -1})
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
}

func TestWriteCtxCancel(t *testing.T) {
	w, err := New(&Options{OutputDir: t.TempDir()})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Write(ctx, "a.tsv", strings.NewReader("data")), context.Canceled)
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) { return 0, errors.New("boom") }

// 上游（编码器一端）出错时不留下目标文件与临时文件。
func TestWriteAtomicCopyError(t *testing.T) {
	dir := t.TempDir()
	w, err := New(&Options{OutputDir: dir})
	require.NoError(t, err)
	require.Error(t, w.Write(context.Background(), "a.tsv", errReader{}))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

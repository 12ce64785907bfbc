package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_WriteMemory(t *testing.T) {
	fs := NewMemoryFileSystem()
	d, err := NewDir(fs, "out")
	require.NoError(t, err)

	path, err := d.Write("scores.csv", func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "label,score")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "scores.csv"), path)

	_, err = d.Write("row_distributions/Clarity.png", func(w io.Writer) error {
		_, err := w.Write([]byte{0x89, 'P', 'N', 'G'})
		return err
	})
	require.NoError(t, err)

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "label,score\n", string(data))
	assert.Equal(t, []string{
		filepath.Join("out", "row_distributions", "Clarity.png"),
		filepath.Join("out", "scores.csv"),
	}, fs.Files())
	assert.Len(t, d.Written(), 2)
}

func TestDir_WriteErrors(t *testing.T) {
	d, err := NewDir(NewMemoryFileSystem(), "out")
	require.NoError(t, err)

	_, err = d.Write("../escape.csv", func(io.Writer) error { return nil })
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = d.Write("bad.csv", func(io.Writer) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, d.Written())
}

func TestDir_WriteOS(t *testing.T) {
	root := filepath.Join(t.TempDir(), "run")
	d, err := NewDir(OSFileSystem{}, root)
	require.NoError(t, err)

	path, err := d.Write("nested/a.txt", func(w io.Writer) error {
		_, err := io.WriteString(w, "ok")
		return err
	})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))

	got, err := OSFileSystem{}.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestMemoryFileSystem_CreateNeedsDir(t *testing.T) {
	fs := NewMemoryFileSystem()
	_, err := fs.Create("missing/a.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = fs.ReadFile("nope")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Clarity", "Clarity"},
		{"Goal of articulation", "Goal_of_articulation"},
		{"EX: quote / note", "EX_quote_note"},
		{"..", "unknown"},
		{"", "unknown"},
		{"Café-1.5", "Caf_-1.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

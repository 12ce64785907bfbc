package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// Dir writes named artifacts under a root directory and remembers what it
// wrote.
type Dir struct {
	fs   FileSystem
	root string

	mu      sync.Mutex
	written []string
}

// NewDir creates root (and parents) on fs.
func NewDir(fs FileSystem, root string) (*Dir, error) {
	if root == "" {
		root = "."
	}
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", root, err)
	}
	return &Dir{fs: fs, root: root}, nil
}

// Root returns the output directory.
func (d *Dir) Root() string { return d.root }

// Path returns the full path of name under the root.
func (d *Dir) Path(name string) string { return filepath.Join(d.root, name) }

// Write creates name under the root, calls fn with the file and closes it.
// name may contain subdirectories but must stay inside the root.
func (d *Dir) Write(name string, fn func(w io.Writer) error) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("output name %q escapes %s", name, d.root)
	}
	path := d.Path(name)
	if dir := filepath.Dir(path); dir != d.root {
		if err := d.fs.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := d.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	d.mu.Lock()
	d.written = append(d.written, path)
	d.mu.Unlock()
	return path, nil
}

// Written returns the paths written so far, in order.
func (d *Dir) Written() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.written...)
}

// SanitizeFilename makes a file name from a label. Anything other than
// ASCII letters, digits, dot, underscore or dash becomes an underscore,
// runs of underscores collapse and the result is capped at 128 bytes.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.' || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}

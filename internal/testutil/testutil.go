// Package testutil provides shared test helpers and rater sheet fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/banshee-data/rater-agreement/internal/monitoring"
)

// Rater1CSV is a small labels-by-items export for the first rater.
const Rater1CSV = `Label,V1,V2,B1,C1,W1
rater,Sophie,Sophie,Sophie,Sophie,Sophie
Example Present,Y,N,Y,Y,N
Action Present,Y,Y,N,N,Y
EX: quote,a,b,c,d,e
Clarity,4,2,3,5,1
Goal of articulation,Inform,Persuade,Inform,Teach,Inform
`

// Rater2CSV is the second rater's export of the same documents. Item B1 is
// exported as a number column with a trailing decimal.
const Rater2CSV = `Label,V1,V2,B1,C1,W1
rater,Cat,Cat,Cat,Cat,Cat
Example Present,Y,N,Y,N,N
Action Present,Y,Y,N,N,Y
Clarity,5,1,3,4.0,1
Goal of articulation,Inform,Inform,Inform,Teach,
`

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// WriteFile writes content to name under dir and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteRaterSheets writes Rater1CSV and Rater2CSV to a temp dir and returns
// their paths.
func WriteRaterSheets(t *testing.T) (r1, r2 string) {
	t.Helper()
	dir := t.TempDir()
	return WriteFile(t, dir, "sophie.csv", Rater1CSV), WriteFile(t, dir, "cat.csv", Rater2CSV)
}

// LogCapture collects lines logged through monitoring.Logf.
type LogCapture struct {
	mu    sync.Mutex
	lines []string
}

// Lines returns the captured lines.
func (c *LogCapture) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

// CaptureLogs routes monitoring.Logf into a LogCapture until the test ends.
func CaptureLogs(t *testing.T) *LogCapture {
	t.Helper()
	c := &LogCapture{}
	prev := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...interface{}) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.lines = append(c.lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetLogger(prev) })
	return c
}

// MuteLogs silences monitoring.Logf until the test ends.
func MuteLogs(t *testing.T) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(prev) })
}

package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// UpdateEnv names the environment variable that rewrites golden files
// instead of comparing against them.
const UpdateEnv = "GOLDEN_UPDATE"

// Golden compares got against testdata/<name>.golden of the calling package.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")
	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("creating testdata dir: %v", err)
		}
		if err := os.WriteFile(path, got, 0644); err != nil {
			t.Fatalf("updating %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v (run with %s=1 to create it)\nGot:\n%s", path, err, UpdateEnv, got)
	}
	// Checkouts on Windows may carry CRLF line endings.
	want = bytes.ReplaceAll(want, []byte("\r\n"), []byte("\n"))

	if !bytes.Equal(got, want) {
		line, w, g := firstDiff(string(want), string(got))
		t.Errorf("output mismatch for %s at line %d\nwant: %q\ngot:  %q\n\nWant:\n%s\nGot:\n%s", name, line, w, g, want, got)
	}
}

// GoldenString is like Golden but takes a string.
func GoldenString(t *testing.T, name string, got string) {
	t.Helper()
	Golden(t, name, []byte(got))
}

// firstDiff returns the 1-based number and contents of the first line that
// differs between want and got.
func firstDiff(want, got string) (int, string, string) {
	wl := strings.Split(want, "\n")
	gl := strings.Split(got, "\n")
	for i := 0; i < max(len(wl), len(gl)); i++ {
		var w, g string
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if w != g || i >= len(wl) || i >= len(gl) {
			return i + 1, w, g
		}
	}
	return 0, "", ""
}

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Golden compares output against testdata/<name> at the repository root.
// Set UPDATE_GOLDEN=1 to regenerate the file from the current output. A
// mismatch reports the first line that differs rather than dumping both
// texts whole.
func Golden(t *testing.T, name, output string) {
	t.Helper()
	path := filepath.Join(repoRoot(t), "testdata", name)
	if os.Getenv("UPDATE_GOLDEN") != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create testdata dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
			t.Fatalf("update golden %s: %v", name, err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden %s: %v (set UPDATE_GOLDEN=1 to create it)", name, err)
	}
	want := string(data)
	if want == output {
		return
	}
	wantLines := strings.Split(want, "\n")
	gotLines := strings.Split(output, "\n")
	for i := 0; i < len(wantLines) || i < len(gotLines); i++ {
		var w, g string
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if w != g {
			t.Fatalf("golden %s: line %d differs\nwant: %q\ngot:  %q", name, i+1, w, g)
		}
	}
	t.Fatalf("golden %s: output differs\nwant:\n%s\ngot:\n%s", name, want, output)
}

func repoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd failed: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

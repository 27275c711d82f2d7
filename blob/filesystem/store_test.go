package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPutWritesBlobAndReturnsURL(t *testing.T) {
	store := NewStore(t.TempDir())

	url, err := store.Put(context.Background(), "cat.PNG", "image/png", strings.NewReader("png bytes"))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("expected /uploads/ URL, got %q", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("expected lowercased extension preserved, got %q", url)
	}

	name := strings.TrimPrefix(url, "/uploads/")
	data, err := os.ReadFile(filepath.Join(store.BasePath(), name))
	if err != nil {
		t.Fatalf("blob file missing: %v", err)
	}
	if string(data) != "png bytes" {
		t.Errorf("blob content mismatch: %q", data)
	}
}

func TestPutLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if _, err := store.Put(context.Background(), "a.png", "image/png", strings.NewReader("x")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".upload-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSafeExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"cat.png", ".png"},
		{"CAT.PNG", ".png"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
		{"trailingdot.", ""},
		{"../../etc/passwd", ""},
		{"weird.p#g", ""},
		{"way-too-long.extension123", ""},
	}
	for _, tc := range tests {
		if got := safeExtension(tc.filename); got != tc.want {
			t.Errorf("safeExtension(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

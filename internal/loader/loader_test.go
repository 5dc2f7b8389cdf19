package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListImages_FiltersAndOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.jpg"), []byte("b"))
	writeFile(t, filepath.Join(dir, "a.PNG"), []byte("a"))
	writeFile(t, filepath.Join(dir, "c.JPEG"), []byte("c"))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("x"))
	writeFile(t, filepath.Join(dir, "d.gif"), []byte("x"))
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "nested", "e.jpg"), []byte("x"))

	paths, err := ListImages(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.PNG"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "c.JPEG"),
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %d: %v", len(want), len(paths), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("expected path %d to be %s, got %s", i, want[i], paths[i])
		}
	}
}

func TestLoad_PreservesOrderAndContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.jpg"), []byte("first"))
	writeFile(t, filepath.Join(dir, "two.jpg"), []byte("second"))

	files, err := Load(context.Background(), dir, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if filepath.Base(files[0].Path) != "one.jpg" || string(files[0].Data) != "first" {
		t.Errorf("unexpected first file: %s %q", files[0].Path, files[0].Data)
	}
	if filepath.Base(files[1].Path) != "two.jpg" || string(files[1].Data) != "second" {
		t.Errorf("unexpected second file: %s %q", files[1].Path, files[1].Data)
	}
	if files[0].Meta != nil {
		t.Errorf("expected no metadata for non-PNG bytes, got %+v", files[0].Meta)
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent"), 1); err == nil {
		t.Error("expected error for missing directory")
	}
}

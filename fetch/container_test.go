package fetch

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
)

func writeTestZip(t *testing.T, dir string) string {
	t.Helper()
	archivePath := filepath.Join(dir, "bundle.zip")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("greeting.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("hi from container")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return archivePath
}

func TestContainerZipLoadBytes(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeTestZip(t, dir)

	z, err := NewZipPartialFetch(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	defer z.Close()

	c := NewContainer(z)
	bundle, err := c.LoadBytes(assetpath.New("zip://greeting.txt"))
	if err != nil {
		t.Fatal(err)
	}
	var got []byte
	for _, comp := range bundle {
		if b, ok := comp.(components.BytesReadyToProcess); ok {
			got = b.Bytes
		}
	}
	if !bytes.Equal(got, []byte("hi from container")) {
		t.Fatalf("unexpected bytes: %q", got)
	}
}

func TestContainerZipMissingEntry(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeTestZip(t, dir)

	z, err := NewZipPartialFetch(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	defer z.Close()

	c := NewContainer(z)
	if _, err := c.LoadBytes(assetpath.New("zip://missing.txt")); err == nil {
		t.Fatal("expected error for missing entry")
	}
}

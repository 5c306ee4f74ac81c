package pdfimg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	config := DefaultConfig("in", "out")
	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	config.DPI = 0
	if err := config.Validate(); err == nil {
		t.Error("expected error for non-positive DPI")
	}

	config.DPI = -300
	if err := config.Validate(); err == nil {
		t.Error("expected error for negative DPI")
	}

	config = DefaultConfig("in", "out")
	config.Format = "bmp"
	if err := config.Validate(); err == nil {
		t.Error("expected error for unsupported format")
	}

	config = DefaultConfig("", "out")
	if err := config.Validate(); err == nil {
		t.Error("expected error for missing input directory")
	}
}

func TestListPageImages(t *testing.T) {
	imageDir := t.TempDir()

	// pdftoppm zero-pads page numbers, so lexical order is page order.
	for _, name := range []string{"page-02.png", "page-01.png", "page-10.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(imageDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	pages, err := ListPageImages(imageDir, "png")
	if err != nil {
		t.Fatalf("ListPageImages failed: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if filepath.Base(pages[0]) != "page-01.png" || filepath.Base(pages[2]) != "page-10.png" {
		t.Errorf("pages out of order: %v", pages)
	}
}

func TestListPageImagesJPEGExtension(t *testing.T) {
	imageDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(imageDir, "page-01.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	pages, err := ListPageImages(imageDir, "jpeg")
	if err != nil {
		t.Fatalf("ListPageImages failed: %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("expected jpeg pages with .jpg extension, got %v", pages)
	}
}

func TestListPageImagesMissingDir(t *testing.T) {
	if _, err := ListPageImages(filepath.Join(t.TempDir(), "absent"), "png"); err == nil {
		t.Error("expected error for missing directory")
	}
}

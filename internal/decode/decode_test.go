package decode

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spigell/resume-screener/internal/screening"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeDOCX(t *testing.T, path, body string) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	defer file.Close()

	archive := zip.NewWriter(file)
	w, err := archive.Create(docxBody)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
}

func TestDecodePlainText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "cv.TXT")
	writeFile(t, path, []byte("\ufeffJane Doe\nPython"))

	got, err := New(nil).Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Jane Doe\nPython" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestDecodeFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	binary := filepath.Join(dir, "blob.txt")
	writeFile(t, binary, []byte{0x00, 0x01, 0x02})
	invalid := filepath.Join(dir, "latin1.md")
	writeFile(t, invalid, []byte{'c', 'a', 'f', 0xe9})
	image := filepath.Join(dir, "photo.png")
	writeFile(t, image, []byte("png"))
	brokenPDF := filepath.Join(dir, "broken.pdf")
	writeFile(t, brokenPDF, []byte("not a pdf at all"))
	brokenDOCX := filepath.Join(dir, "broken.docx")
	writeFile(t, brokenDOCX, []byte("not a zip"))

	tests := []struct {
		name        string
		path        string
		unsupported bool
	}{
		{name: "nul bytes", path: binary},
		{name: "invalid utf8", path: invalid},
		{name: "unknown extension", path: image, unsupported: true},
		{name: "missing file", path: filepath.Join(dir, "missing.txt")},
		{name: "broken pdf", path: brokenPDF},
		{name: "broken docx", path: brokenDOCX},
	}

	registry := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := registry.Decode(context.Background(), tt.path)
			var failure *screening.DecodeFailure
			if !errors.As(err, &failure) {
				t.Fatalf("expected a decode failure, got %v", err)
			}
			if failure.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, failure.Path)
			}
			if got := errors.Is(err, screening.ErrUnsupportedFormat); got != tt.unsupported {
				t.Fatalf("unsupported format: expected %v, got %v", tt.unsupported, got)
			}
		})
	}
}

func TestDecodeDOCX(t *testing.T) {
	t.Parallel()

	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Name: Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Skills:</w:t><w:tab/><w:t>Go, </w:t></w:r><w:r><w:t>Python</w:t></w:r></w:p>
<w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>
</w:body>
</w:document>`

	path := filepath.Join(t.TempDir(), "cv.docx")
	writeDOCX(t, path, body)

	got, err := New(nil).Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expect := "Name: Jane Doe\nSkills:\tGo, Python\nLine one\nLine two"
	if got != expect {
		t.Fatalf("expected %q, got %q", expect, got)
	}
}

func TestDecodeCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(nil).Decode(ctx, "cv.txt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.txt", "notes.png", ".hidden.txt", "C.DOCX"} {
		writeFile(t, filepath.Join(dir, name), []byte("x"))
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	sources, err := New(nil).Discover(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := make([]string, len(sources))
	for i, src := range sources {
		ids[i] = src.ID
		if src.Path != filepath.Join(dir, src.ID) {
			t.Fatalf("unexpected path %q", src.Path)
		}
	}

	if expect := []string{"C.DOCX", "a.txt", "b.pdf"}; !slices.Equal(ids, expect) {
		t.Fatalf("expected %v, got %v", expect, ids)
	}

	if _, err := New(nil).Discover(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected an error for a missing directory")
	}
}

func TestExtensions(t *testing.T) {
	t.Parallel()

	expect := []string{".docx", ".md", ".pdf", ".text", ".txt"}
	if got := New(nil).Extensions(); !slices.Equal(got, expect) {
		t.Fatalf("expected %v, got %v", expect, got)
	}
}

package mediatype

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeHeader(t *testing.T, name string, header []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, append(header, make([]byte, 64)...), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestSniffAcceptsWAV(t *testing.T) {
	path := writeHeader(t, "a.wav", []byte{'R', 'I', 'F', 'F', 0, 0, 0, 0, 'W', 'A', 'V', 'E'})
	mime, err := Sniff(path)
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if mime != "audio/x-wav" {
		t.Fatalf("unexpected mime %q", mime)
	}
	if Extension(path) != "wav" {
		t.Fatalf("unexpected extension %q", Extension(path))
	}
}

func TestSniffRejectsImages(t *testing.T) {
	path := writeHeader(t, "x.png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	if _, err := Sniff(path); !errors.Is(err, ErrNotMedia) {
		t.Fatalf("expected ErrNotMedia, got %v", err)
	}
}

func TestSniffLeavesUnknownToProbe(t *testing.T) {
	path := writeHeader(t, "blob.bin", []byte("just some text"))
	mime, err := Sniff(path)
	if err != nil || mime != "" {
		t.Fatalf("expected unknown content to pass, got %q %v", mime, err)
	}
}

func TestSniffMissingFile(t *testing.T) {
	if _, err := Sniff(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

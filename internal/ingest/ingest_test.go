package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rywkoo/highlight-clipper/internal/ingest"
	"github.com/rywkoo/highlight-clipper/internal/logging"
	"github.com/rywkoo/highlight-clipper/internal/services"
	"github.com/rywkoo/highlight-clipper/internal/testsupport"
)

var fixedDay = time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)

func newIngestor(t *testing.T) (*ingest.Ingestor, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	ing := ingest.New(cfg, logging.NewNop()).WithClock(func() time.Time { return fixedDay })
	return ing, cfg.Paths.UploadsDir
}

func outputDir(args []string) string {
	for i, arg := range args {
		if arg == "-o" && i+1 < len(args) {
			return filepath.Dir(args[i+1])
		}
	}
	return ""
}

func TestLocalCopiesIntoDatedFolder(t *testing.T) {
	ing, uploads := newIngestor(t)
	src := filepath.Join(t.TempDir(), "My Clip?.wav")
	testsupport.WriteWAV(t, src, testsupport.Tone{Seconds: 0.5, Freq: 440, Amplitude: 0.5})

	up, err := ing.Local(src)
	if err != nil {
		t.Fatalf("Local: %v", err)
	}
	want := filepath.Join(uploads, "2026-03-01", "My Clip", "My Clip.wav")
	if up.Path != want {
		t.Fatalf("path = %q, want %q", up.Path, want)
	}
	if up.Name != "My Clip" || up.Origin != src {
		t.Fatalf("unexpected upload %+v", up)
	}
	orig, _ := os.ReadFile(src)
	copied, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if !bytes.Equal(orig, copied) {
		t.Fatal("copied content differs from source")
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source should be left in place: %v", err)
	}
}

func TestLocalUsesFilesAlreadyInUploads(t *testing.T) {
	ing, uploads := newIngestor(t)
	src := filepath.Join(uploads, "2025-12-31", "old", "old.wav")
	testsupport.WriteWAV(t, src, testsupport.Tone{Seconds: 0.2, Freq: 440, Amplitude: 0.5})

	up, err := ing.Local(src)
	if err != nil {
		t.Fatalf("Local: %v", err)
	}
	if up.Path != src {
		t.Fatalf("path = %q, want %q", up.Path, src)
	}
	if _, err := os.Stat(filepath.Join(uploads, "2026-03-01")); !os.IsNotExist(err) {
		t.Fatalf("no dated folder expected, stat err = %v", err)
	}
}

func TestLocalRejectsNonMedia(t *testing.T) {
	ing, _ := newIngestor(t)
	src := filepath.Join(t.TempDir(), "image.png")
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	if err := os.WriteFile(src, png, 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	if _, err := ing.Local(src); !errors.Is(err, services.ErrPipeline) {
		t.Fatalf("expected pipeline error, got %v", err)
	}
}

func TestLocalMissingFile(t *testing.T) {
	ing, _ := newIngestor(t)
	if _, err := ing.Local(filepath.Join(t.TempDir(), "missing.mp4")); !errors.Is(err, services.ErrPipeline) {
		t.Fatalf("expected pipeline error, got %v", err)
	}
}

func TestDownloadNamesByTitle(t *testing.T) {
	ing, uploads := newIngestor(t)
	var gotArgs []string
	ing.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
		gotArgs = args
		dir := outputDir(args)
		path := filepath.Join(dir, "abc123.mp4")
		if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
			return nil, nil, err
		}
		return []byte("Cup Final: Highlights\n" + path + "\n"), nil, nil
	})

	up, err := ing.Download(context.Background(), "https://example.com/watch?v=abc123")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	want := filepath.Join(uploads, "2026-03-01", "Cup Final- Highlights", "Cup Final- Highlights.mp4")
	if up.Path != want {
		t.Fatalf("path = %q, want %q", up.Path, want)
	}
	if data, err := os.ReadFile(want); err != nil || string(data) != "video" {
		t.Fatalf("downloaded file = %q, %v", data, err)
	}
	if up.Origin != "https://example.com/watch?v=abc123" {
		t.Fatalf("origin = %q", up.Origin)
	}
	if gotArgs[len(gotArgs)-1] != "https://example.com/watch?v=abc123" {
		t.Fatalf("url should be the final argument, got %v", gotArgs)
	}
	if _, err := os.Stat(outputDir(gotArgs)); !os.IsNotExist(err) {
		t.Fatalf("staging dir should be removed, stat err = %v", err)
	}
}

func TestDownloadFallsBackToDefaultName(t *testing.T) {
	ing, uploads := newIngestor(t)
	ing.WithCommandRunner(func(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
		path := filepath.Join(outputDir(args), "xyz.webm")
		return []byte("\n"), nil, os.WriteFile(path, []byte("v"), 0o644)
	})

	up, err := ing.Download(context.Background(), "http://example.com/live")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if up.Name != ingest.DefaultRemoteName {
		t.Fatalf("name = %q", up.Name)
	}
	want := filepath.Join(uploads, "2026-03-01", "livestream", "livestream.webm")
	if up.Path != want {
		t.Fatalf("path = %q, want %q", up.Path, want)
	}
}

func TestDownloadReportsToolFailure(t *testing.T) {
	ing, _ := newIngestor(t)
	ing.WithCommandRunner(func(context.Context, string, ...string) ([]byte, []byte, error) {
		return nil, []byte("[youtube] abc: Downloading webpage\nERROR: Video unavailable\n"), errors.New("exit status 1")
	})

	_, err := ing.Download(context.Background(), "https://example.com/watch?v=gone")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "ERROR: Video unavailable") {
		t.Fatalf("stderr missing from error: %v", err)
	}
}

func TestDownloadWithoutOutput(t *testing.T) {
	ing, _ := newIngestor(t)
	ing.WithCommandRunner(func(context.Context, string, ...string) ([]byte, []byte, error) {
		return []byte("Some Title\n"), nil, nil
	})
	if _, err := ing.Download(context.Background(), "https://example.com/v"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestDownloadRejectsBadURL(t *testing.T) {
	ing, _ := newIngestor(t)
	called := false
	ing.WithCommandRunner(func(context.Context, string, ...string) ([]byte, []byte, error) {
		called = true
		return nil, nil, nil
	})
	for _, raw := range []string{"ftp://example.com/a", "not a url", "https://"} {
		if _, err := ing.Download(context.Background(), raw); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%q: expected validation error, got %v", raw, err)
		}
	}
	if called {
		t.Fatal("yt-dlp should not run for invalid urls")
	}
}

func TestDownloadArgs(t *testing.T) {
	args := ingest.DownloadArgs("https://example.com/v", "/tmp/dl", "bv*+ba/b")
	joined := strings.Join(args, " ")
	for _, want := range []string{"--no-playlist", "--merge-output-format mp4", "-f bv*+ba/b", "--print after_move:filepath", "-o /tmp/dl/%(id)s.%(ext)s"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
	if args[len(args)-2] != "--" {
		t.Fatalf("url should follow --, got %v", args)
	}
	for _, arg := range ingest.DownloadArgs("u", "/d", " ") {
		if arg == "-f" {
			t.Fatal("blank format should not add -f")
		}
	}
}

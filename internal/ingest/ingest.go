// Package ingest normalises recordings into the uploads directory.
//
// Local files are copied into <uploads_dir>/<YYYY-MM-DD>/<name>/; remote
// videos are downloaded with yt-dlp into the same layout and named after the
// video title. Either way the caller gets one local path to process.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rywkoo/highlight-clipper/internal/config"
	"github.com/rywkoo/highlight-clipper/internal/fileutil"
	"github.com/rywkoo/highlight-clipper/internal/logging"
	"github.com/rywkoo/highlight-clipper/internal/media/mediatype"
	"github.com/rywkoo/highlight-clipper/internal/services"
	"github.com/rywkoo/highlight-clipper/internal/textutil"
)

// DefaultRemoteName names downloads whose title is unavailable.
const DefaultRemoteName = "livestream"

// Upload is an ingested recording.
type Upload struct {
	Name string
	Path string
	// Origin is the original local path or URL.
	Origin string
}

// CommandFunc runs an external command and returns its stdout and stderr.
type CommandFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// Ingestor places recordings under the uploads directory.
type Ingestor struct {
	uploadsDir string
	ytdlp      string
	format     string
	timeout    time.Duration
	run        CommandFunc
	now        func() time.Time
	logger     *slog.Logger
}

// New builds an Ingestor from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		uploadsDir: cfg.Paths.UploadsDir,
		ytdlp:      cfg.YtDlpBinary(),
		format:     cfg.Ingest.Format,
		timeout:    time.Duration(cfg.Ingest.DownloadTimeout) * time.Second,
		run:        runCommand,
		now:        time.Now,
		logger:     logging.NewComponentLogger(logger, "ingest"),
	}
}

// WithCommandRunner replaces process execution (for testing).
func (i *Ingestor) WithCommandRunner(fn CommandFunc) *Ingestor {
	if fn != nil {
		i.run = fn
	}
	return i
}

// WithClock replaces the clock used for dated folders (for testing).
func (i *Ingestor) WithClock(now func() time.Time) *Ingestor {
	if now != nil {
		i.now = now
	}
	return i
}

// Local copies the file at path into the dated uploads folder. Files already
// inside the uploads directory are used in place.
func (i *Ingestor) Local(path string) (Upload, error) {
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return Upload{}, fmt.Errorf("resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Upload{}, services.Wrap(services.ErrPipeline, "ingest", abs, "cannot read recording", err)
	}
	if info.IsDir() {
		return Upload{}, services.Wrap(services.ErrPipeline, "ingest", abs, "is a directory", nil)
	}
	if _, err := mediatype.Sniff(abs); err != nil {
		return Upload{}, services.Wrap(services.ErrPipeline, "ingest", abs, "unsupported content", err)
	}

	base := filepath.Base(abs)
	name := recordingName(strings.TrimSuffix(base, filepath.Ext(base)), "recording")
	if within(i.uploadsDir, abs) {
		return Upload{Name: name, Path: abs, Origin: abs}, nil
	}

	dir, err := i.datedDir(name)
	if err != nil {
		return Upload{}, err
	}
	dest := filepath.Join(dir, textutil.SanitizeFileName(base))
	if fileutil.SameFile(abs, dest) {
		return Upload{Name: name, Path: dest, Origin: abs}, nil
	}
	if err := fileutil.CopyVerified(abs, dest); err != nil {
		return Upload{}, fmt.Errorf("copy recording into uploads: %w", err)
	}
	i.logger.Info("recording ingested",
		logging.String("source_file", abs),
		logging.String("upload_path", dest),
		logging.Int64("bytes", info.Size()),
	)
	return Upload{Name: name, Path: dest, Origin: abs}, nil
}

// Download fetches rawURL with yt-dlp and files it under the video title.
func (i *Ingestor) Download(ctx context.Context, rawURL string) (Upload, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Upload{}, services.Wrap(services.ErrValidation, "ingest", "download", fmt.Sprintf("not an http(s) url: %q", rawURL), nil)
	}
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	staging := filepath.Join(i.uploadsDir, ".downloads", uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return Upload{}, fmt.Errorf("create download dir: %w", err)
	}
	defer os.RemoveAll(staging)

	i.logger.Info("download started", logging.String("url", parsed.String()))
	stdout, stderr, err := i.run(ctx, i.ytdlp, DownloadArgs(parsed.String(), staging, i.format)...)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return Upload{}, services.Wrap(services.ErrExternalTool, "ingest", "yt-dlp", lastLine(string(stderr)), err)
	}

	title, downloaded := parsePrinted(stdout)
	if downloaded == "" {
		downloaded = findDownloaded(staging)
	}
	if downloaded == "" {
		return Upload{}, services.Wrap(services.ErrExternalTool, "ingest", "yt-dlp", "no file was downloaded", nil)
	}

	name := recordingName(title, DefaultRemoteName)
	dir, err := i.datedDir(name)
	if err != nil {
		return Upload{}, err
	}
	ext := filepath.Ext(downloaded)
	if ext == "" {
		ext = ".mp4"
	}
	dest := filepath.Join(dir, name+ext)
	if err := fileutil.Move(downloaded, dest); err != nil {
		return Upload{}, fmt.Errorf("move download into uploads: %w", err)
	}
	i.logger.Info("download completed",
		logging.String("title", title),
		logging.String("upload_path", dest),
	)
	return Upload{Name: name, Path: dest, Origin: parsed.String()}, nil
}

// DownloadArgs builds the yt-dlp invocation. The title and final path are
// printed on stdout, one per line.
func DownloadArgs(rawURL, dir, format string) []string {
	args := []string{
		"--no-playlist",
		"--no-progress",
		"--no-simulate",
		"--quiet",
		"--no-warnings",
		"--merge-output-format", "mp4",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		"--print", "%(title)s",
		"--print", "after_move:filepath",
	}
	if strings.TrimSpace(format) != "" {
		args = append(args, "-f", format)
	}
	return append(args, "--", rawURL)
}

func (i *Ingestor) datedDir(name string) (string, error) {
	dir := filepath.Join(i.uploadsDir, i.now().Format("2006-01-02"), name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	return dir, nil
}

func parsePrinted(stdout []byte) (title, path string) {
	var lines []string
	for _, line := range strings.Split(string(stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	switch len(lines) {
	case 0:
		return "", ""
	case 1:
		return lines[0], ""
	default:
		return lines[0], lines[len(lines)-1]
	}
}

func findDownloaded(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".part") {
			continue
		}
		return filepath.Join(dir, entry.Name())
	}
	return ""
}

func recordingName(raw, fallback string) string {
	name := strings.Trim(textutil.SanitizeFileName(raw), ". ")
	if name == "" {
		return fallback
	}
	return name
}

func within(root, path string) bool {
	if root == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}

func lastLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndex(text, "\n"); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	if text == "" {
		return "download failed"
	}
	return text
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if errors.Is(err, exec.ErrNotFound) {
		err = fmt.Errorf("%s not found on PATH (run highlighter deps): %w", name, err)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

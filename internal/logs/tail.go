package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const pollInterval = 250 * time.Millisecond

// TailOptions controls one Tail call. A negative Offset reads the last Limit
// lines; otherwise reading starts at Offset. Match, when set, drops lines it
// rejects before Limit applies.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
	Match  func(line string) bool
}

// TailResult carries the lines read and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads complete lines from path according to opts. A trailing line
// without a newline is left for the next call. A missing file yields no
// lines, and an offset past the end of a truncated file restarts at zero.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return TailResult{}, nil
		}
		return TailResult{}, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return TailResult{}, fmt.Errorf("log path %q is a directory", path)
	}

	start := opts.Offset
	if start < 0 || start > info.Size() {
		start = 0
	}

	var lines []string
	var offset int64
	if opts.Offset < 0 {
		last := newRing(opts.Limit)
		offset, err = scanLines(path, start, opts.Match, last.push)
		lines = last.lines()
	} else {
		offset, err = scanLines(path, start, opts.Match, func(line string) { lines = append(lines, line) })
	}
	if err != nil {
		return TailResult{Offset: opts.Offset}, err
	}
	if len(lines) == 0 && opts.Follow && opts.Wait > 0 {
		return follow(ctx, path, offset, opts)
	}
	return TailResult{Lines: lines, Offset: offset}, nil
}

// scanLines visits each complete line at or after offset and returns the
// offset just past the last complete line.
func scanLines(path string, offset int64, match func(string) bool, visit func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return offset, nil
			}
			return offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(raw))
		line := strings.TrimRight(raw, "\r\n")
		if match == nil || match(line) {
			visit(line)
		}
	}
}

func follow(ctx context.Context, path string, offset int64, opts TailOptions) (TailResult, error) {
	deadline := time.Now().Add(opts.Wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return TailResult{Offset: offset}, ctx.Err()
		case <-ticker.C:
		}
		var lines []string
		next, err := scanLines(path, offset, opts.Match, func(line string) { lines = append(lines, line) })
		if err != nil {
			return TailResult{Offset: offset}, err
		}
		offset = next
		if len(lines) > 0 || time.Now().After(deadline) {
			return TailResult{Lines: lines, Offset: offset}, nil
		}
	}
}

// ring keeps the most recent n lines.
type ring struct {
	buf  []string
	next int
	full bool
}

func newRing(n int) *ring {
	if n < 0 {
		n = 0
	}
	return &ring{buf: make([]string, n)}
}

func (r *ring) push(line string) {
	if len(r.buf) == 0 {
		return
	}
	r.buf[r.next] = line
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

func (r *ring) lines() []string {
	if !r.full {
		return append([]string(nil), r.buf[:r.next]...)
	}
	return append(append([]string(nil), r.buf[r.next:]...), r.buf[:r.next]...)
}

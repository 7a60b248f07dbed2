package materialize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileName    = ".highlighter.lock"
	lockRetryWait   = 250 * time.Millisecond
	defaultLockWait = 5 * time.Second
)

// WithLockWait bounds how long Lock waits for another run to release the
// clip directory.
func (m *Materializer) WithLockWait(d time.Duration) *Materializer {
	m.lockWait = d
	return m
}

// Lock takes the advisory lock on recording's clip directory. It gives up
// once the lock wait elapses or ctx is done, so a second run on the same
// recording reports an error instead of writing over the first run's clips.
// Once held, the directory is cleared of clips and .part files from earlier
// runs, leaving only what this run produces. The returned func releases the
// lock.
func (m *Materializer) Lock(ctx context.Context, recording string) (func() error, error) {
	dir := m.RecordingDir(recording)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create clip dir: %w", err)
	}
	waitCtx, cancel := context.WithTimeout(ctx, m.lockWait)
	defer cancel()
	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLockContext(waitCtx, lockRetryWait)
	if err != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("lock %s: %w", dir, ctx.Err())
	}
	if err != nil || !ok {
		return nil, fmt.Errorf("lock %s: held by another run", dir)
	}
	if err := clearPreviousClips(dir); err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	return lock.Unlock, nil
}

func clearPreviousClips(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read clip dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isClipFile(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove previous clip: %w", err)
		}
	}
	return nil
}

func isClipFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return strings.HasSuffix(name, ".part")
	}
	matched, _ := filepath.Match("clip_*.mp4", name)
	return matched
}

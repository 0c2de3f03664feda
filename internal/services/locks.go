package services

import (
	"fmt"
	"os"
	"time"

	"relief/internal/lib"
)

// OutputLock is a file lock guarding one deterministic output path.
// Output filenames double as the cache key, so the existence check and the
// engine run that produces the file must happen under the same lock to keep
// two cooperating processes from racing to produce the same output.
type OutputLock struct {
	target   string
	lockFile *os.File
	lockPath string
	logger   *lib.Logger
}

// WithOutputLock executes fn while holding the lock for an output path.
// Automatically acquires the lock, executes the function, and releases the
// lock. The lock is advisory: only cooperating relief processes observe it.
func WithOutputLock(target string, logger *lib.Logger, fn func() error) error {
	lock, err := AcquireOutputLock(target, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Error("Failed to release output lock", "error", err)
		}
	}()

	return fn()
}

// writeLockInfo writes debug information to the lock file
func (ol *OutputLock) writeLockInfo() error {
	lockInfo := fmt.Sprintf("pid=%d\ntime=%s\n", os.Getpid(), time.Now().Format(time.RFC3339))
	_ = ol.lockFile.Truncate(0)
	_, _ = ol.lockFile.Seek(0, 0)
	_, _ = ol.lockFile.WriteString(lockInfo)
	return ol.lockFile.Sync()
}

//go:build unix

package services

import (
	"os"
	"syscall"

	"relief/internal/lib"
)

// AcquireOutputLock attempts to acquire an exclusive lock for an output
// path (Unix implementation). Returns an OutputLock if successful, error if
// the lock is already held by another process. The lock is automatically
// released when the OutputLock is closed or the process exits.
func AcquireOutputLock(target string, logger *lib.Logger) (*OutputLock, error) {
	lockPath := target + ".lock"

	// Open/create lock file
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, lib.ErrFileSystem("open", lockPath, err)
	}

	// Try to acquire exclusive lock (non-blocking)
	// flock() is advisory - cooperating processes must check the lock
	err = syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		_ = lockFile.Close()
		if err == syscall.EWOULDBLOCK {
			return nil, lib.ErrOutputLocked(target)
		}
		return nil, lib.ErrFileSystem("lock", lockPath, err)
	}

	lock := &OutputLock{
		target:   target,
		lockFile: lockFile,
		lockPath: lockPath,
		logger:   logger,
	}

	// Write lock info
	if err := lock.writeLockInfo(); err != nil {
		logger.Warn("Failed to write lock info", "target", target, "error", err)
	}

	logger.Debug("Acquired output lock", "target", target, "pid", os.Getpid())

	return lock, nil
}

// Release releases the output lock (Unix implementation).
// Should be called once the output is produced or the run has failed.
func (ol *OutputLock) Release() error {
	if ol.lockFile == nil {
		return nil
	}

	// Release flock
	err := syscall.Flock(int(ol.lockFile.Fd()), syscall.LOCK_UN)
	if err != nil {
		ol.logger.Warn("Failed to release flock", "target", ol.target, "error", err)
	}

	// Close lock file and remove it; the output itself is the durable state
	if err := ol.lockFile.Close(); err != nil {
		ol.logger.Warn("Failed to close lock file", "target", ol.target, "error", err)
		return err
	}
	_ = os.Remove(ol.lockPath)

	ol.logger.Debug("Released output lock", "target", ol.target, "pid", os.Getpid())
	ol.lockFile = nil

	return nil
}

// IsOutputLocked checks if an output is currently locked by any process
// (Unix implementation). This is a non-destructive check that doesn't
// acquire the lock.
func IsOutputLocked(target string) bool {
	lockPath := target + ".lock"

	// If lock file doesn't exist, output is not locked
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		return false
	}

	lockFile, err := os.Open(lockPath)
	if err != nil {
		// Can't open lock file - assume not locked
		return false
	}
	defer func() {
		_ = lockFile.Close()
	}()

	// Try to acquire lock (non-blocking)
	err = syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		// Lock is held by another process
		return err == syscall.EWOULDBLOCK
	}

	// We acquired the lock - release it immediately
	_ = syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)
	return false
}

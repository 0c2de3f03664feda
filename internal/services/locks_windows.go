//go:build windows

package services

import (
	"os"
	"syscall"
	"unsafe"

	"relief/internal/lib"
)

var (
	kernel32         = syscall.NewLazyDLL("kernel32.dll")
	procLockFileEx   = kernel32.NewProc("LockFileEx")
	procUnlockFileEx = kernel32.NewProc("UnlockFileEx")
)

const (
	LOCKFILE_FAIL_IMMEDIATELY = 0x00000001
	LOCKFILE_EXCLUSIVE_LOCK   = 0x00000002
	ERROR_LOCK_VIOLATION      = syscall.Errno(33) // File is locked by another process
)

// AcquireOutputLock attempts to acquire an exclusive lock for an output
// path (Windows implementation). Returns an OutputLock if successful, error
// if the lock is already held by another process.
func AcquireOutputLock(target string, logger *lib.Logger) (*OutputLock, error) {
	lockPath := target + ".lock"

	// Open/create lock file
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, lib.ErrFileSystem("open", lockPath, err)
	}

	// Try to acquire exclusive lock (non-blocking)
	handle := syscall.Handle(lockFile.Fd())
	overlapped := syscall.Overlapped{}

	// LockFileEx with FAIL_IMMEDIATELY flag for non-blocking behavior
	r1, _, err := procLockFileEx.Call(
		uintptr(handle),
		uintptr(LOCKFILE_EXCLUSIVE_LOCK|LOCKFILE_FAIL_IMMEDIATELY),
		0,
		uintptr(1),
		0,
		uintptr(unsafe.Pointer(&overlapped)),
	)

	if r1 == 0 {
		_ = lockFile.Close()
		// If the lock fails because the file is already locked, err is ERROR_LOCK_VIOLATION
		if err == ERROR_LOCK_VIOLATION {
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

// Release releases the output lock (Windows implementation)
func (ol *OutputLock) Release() error {
	if ol.lockFile == nil {
		return nil
	}

	handle := syscall.Handle(ol.lockFile.Fd())
	overlapped := syscall.Overlapped{}

	_, _, err := procUnlockFileEx.Call(
		uintptr(handle),
		0,
		uintptr(1),
		0,
		uintptr(unsafe.Pointer(&overlapped)),
	)

	if err != syscall.Errno(0) {
		ol.logger.Warn("Failed to release lock", "target", ol.target, "error", err)
	}

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
// (Windows implementation). This is a non-destructive check that doesn't
// acquire the lock.
func IsOutputLocked(target string) bool {
	lockPath := target + ".lock"

	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		return false
	}

	lockFile, err := os.Open(lockPath)
	if err != nil {
		return false
	}
	defer func() {
		_ = lockFile.Close()
	}()

	handle := syscall.Handle(lockFile.Fd())
	overlapped := syscall.Overlapped{}

	r1, _, err := procLockFileEx.Call(
		uintptr(handle),
		uintptr(LOCKFILE_EXCLUSIVE_LOCK|LOCKFILE_FAIL_IMMEDIATELY),
		0,
		uintptr(1),
		0,
		uintptr(unsafe.Pointer(&overlapped)),
	)

	if r1 == 0 {
		if err == ERROR_LOCK_VIOLATION {
			return true
		}
		return false
	}

	// We acquired the lock - release it immediately
	procUnlockFileEx.Call(
		uintptr(handle),
		0,
		uintptr(1),
		0,
		uintptr(unsafe.Pointer(&overlapped)),
	)
	return false
}

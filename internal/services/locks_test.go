package services_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief/internal/lib"
	"relief/internal/services"
)

// TestOutputLock_AcquireRelease tests the lock lifecycle: the lock file
// appears on acquire and is removed on release
func TestOutputLock_AcquireRelease(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dtm_r0.56")
	logger := lib.NewLogger(lib.LogLevelError)

	lock, err := services.AcquireOutputLock(target, logger)
	require.NoError(t, err)
	assert.FileExists(t, target+".lock")
	assert.True(t, services.IsOutputLocked(target))

	require.NoError(t, lock.Release())
	assert.NoFileExists(t, target+".lock")
	assert.False(t, services.IsOutputLocked(target))
}

// TestOutputLock_SecondAcquireFails tests that a held lock rejects a second
// acquirer instead of blocking
func TestOutputLock_SecondAcquireFails(t *testing.T) {
	target := filepath.Join(t.TempDir(), "classified_s1c3.las")
	logger := lib.NewLogger(lib.LogLevelError)

	lock, err := services.AcquireOutputLock(target, logger)
	require.NoError(t, err)
	defer func() {
		_ = lock.Release()
	}()

	_, err = services.AcquireOutputLock(target, logger)
	require.Error(t, err)
	assert.True(t, lib.IsCategory(err, lib.CategoryFileSystem))
}

// TestWithOutputLock tests that the lock is released after the callback,
// success or failure
func TestWithOutputLock(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dsm_r0.56")
	logger := lib.NewLogger(lib.LogLevelError)

	ran := false
	err := services.WithOutputLock(target, logger, func() error {
		ran = true
		assert.True(t, services.IsOutputLocked(target))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, services.IsOutputLocked(target))

	wantErr := lib.ErrEmptyStack()
	err = services.WithOutputLock(target, logger, func() error {
		return wantErr
	})
	assert.Equal(t, wantErr, err)
	assert.False(t, services.IsOutputLocked(target))
}

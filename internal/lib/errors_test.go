package lib_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief/internal/lib"
)

// TestReliefError_Error tests the log-facing format
func TestReliefError_Error(t *testing.T) {
	err := lib.ErrEngineStart("pdal", errors.New("exec: not found"))
	assert.Equal(t, "[EXTERNALTOOL] Failed to start pdal: exec: not found", err.Error())
}

// TestReliefError_UserMessage tests the user-facing format with guidance
func TestReliefError_UserMessage(t *testing.T) {
	err := lib.ErrMissingOutput("pdal", "/out/dtm_r0.56.den.tif")
	msg := err.UserMessage()

	assert.Contains(t, msg, "Error: pdal did not produce expected output")
	assert.Contains(t, msg, "How to fix:")
	assert.Contains(t, msg, "--verbose")
}

// TestReliefError_Unwrap tests errors.Is/As compatibility through wrapping
func TestReliefError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := lib.ErrFileSystem("write", "/out/x.tif", cause)

	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("during gap-fill: %w", err)
	var re *lib.ReliefError
	require.True(t, errors.As(wrapped, &re))
	assert.Equal(t, lib.CategoryFileSystem, re.Category)
}

// TestIsCategory tests category matching
func TestIsCategory(t *testing.T) {
	assert.True(t, lib.IsCategory(lib.ErrEmptyStack(), lib.CategoryConfiguration))
	assert.False(t, lib.IsCategory(lib.ErrEmptyStack(), lib.CategoryFileSystem))
	assert.False(t, lib.IsCategory(errors.New("plain"), lib.CategoryConfiguration))
}

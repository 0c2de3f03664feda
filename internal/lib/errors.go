package lib

import (
	"fmt"
	"strings"
)

// ReliefError represents a user-friendly error with context and guidance
type ReliefError struct {
	Category ErrorCategory
	Message  string   // Short description of what went wrong
	Cause    error    // Underlying error
	Guidance []string // What the user can do to fix it
}

// ErrorCategory classifies errors for better UX
type ErrorCategory string

const (
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryExternalTool  ErrorCategory = "externaltool"
	CategoryInterpolation ErrorCategory = "interpolation"
	CategoryFileSystem    ErrorCategory = "filesystem"
)

// Error implements the error interface
func (e *ReliefError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] ", strings.ToUpper(string(e.Category))))
	sb.WriteString(e.Message)

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	return sb.String()
}

// UserMessage returns a formatted message suitable for displaying to end users
func (e *ReliefError) UserMessage() string {
	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(e.Message)
	sb.WriteString("\n")

	if len(e.Guidance) > 0 {
		sb.WriteString("\nHow to fix:\n")
		for i, guide := range e.Guidance {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, guide))
		}
	}

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("\nTechnical details: %v\n", e.Cause))
	}

	return sb.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility
func (e *ReliefError) Unwrap() error {
	return e.Cause
}

// IsCategory reports whether err is a ReliefError of the given category
func IsCategory(err error, cat ErrorCategory) bool {
	re, ok := err.(*ReliefError)
	return ok && re.Category == cat
}

// Configuration Errors

// ErrInvalidOptions creates an error for caller-supplied parameter problems
func ErrInvalidOptions(field string, reason string) *ReliefError {
	return &ReliefError{
		Category: CategoryConfiguration,
		Message:  fmt.Sprintf("Invalid options: %s", reason),
		Guidance: []string{
			fmt.Sprintf("Check the '%s' parameter", field),
			"Run with --help to see the expected flags and defaults",
		},
	}
}

// ErrEmptyStack creates an error for a gap-fill call with no input rasters
func ErrEmptyStack() *ReliefError {
	return &ReliefError{
		Category: CategoryConfiguration,
		Message:  "No input rasters provided for gap-fill",
		Guidance: []string{
			"Pass at least one raster, ordered by search radius",
			"Run 'relief dem' with one or more --radius values first",
		},
	}
}

// ErrGridMismatch creates an error for rasters that do not share a grid
func ErrGridMismatch(first string, offending string) *ReliefError {
	return &ReliefError{
		Category: CategoryConfiguration,
		Message:  fmt.Sprintf("Raster %s does not share the grid of %s", offending, first),
		Guidance: []string{
			"All rasters in a gap-fill stack must share cell size, extent and no-data value",
			"Regenerate the products from the same point set and site",
		},
	}
}

// External Tool Errors

// ErrMissingOutput creates an error for an engine run that produced no output
func ErrMissingOutput(tool string, path string) *ReliefError {
	return &ReliefError{
		Category: CategoryExternalTool,
		Message:  fmt.Sprintf("%s did not produce expected output %s", tool, path),
		Guidance: []string{
			"Re-run with --verbose to see the engine's own diagnostics",
			"Check that the input point files are readable and non-empty",
			fmt.Sprintf("Verify %s is installed and on PATH", tool),
		},
	}
}

// ErrEngineStart creates an error for a subprocess that could not be started
func ErrEngineStart(tool string, cause error) *ReliefError {
	return &ReliefError{
		Category: CategoryExternalTool,
		Message:  fmt.Sprintf("Failed to start %s", tool),
		Cause:    cause,
		Guidance: []string{
			fmt.Sprintf("Check that %s is installed and on PATH", tool),
			"Set pdal.path in relief.yaml to the full binary path if needed",
		},
	}
}

// Interpolation Errors

// ErrNoKnownCells creates an error for interpolation over an all-nodata stack
func ErrNoKnownCells() *ReliefError {
	return &ReliefError{
		Category: CategoryInterpolation,
		Message:  "Cannot interpolate: no valid cells in any input raster",
		Guidance: []string{
			"Check that the input rasters contain data within the site boundary",
			"Widen the gridding search radius or add larger radii to the stack",
		},
	}
}

// Filesystem Errors

// ErrFileSystem wraps a filesystem failure with context
func ErrFileSystem(op string, path string, cause error) *ReliefError {
	return &ReliefError{
		Category: CategoryFileSystem,
		Message:  fmt.Sprintf("Failed to %s %s", op, path),
		Cause:    cause,
		Guidance: []string{
			"Check directory permissions and free disk space",
		},
	}
}

// ErrOutputLocked creates an error when an output is being produced by another process
func ErrOutputLocked(path string) *ReliefError {
	return &ReliefError{
		Category: CategoryFileSystem,
		Message:  fmt.Sprintf("Output %s is currently being produced by another process", path),
		Guidance: []string{
			"Wait for the other run to complete",
			fmt.Sprintf("If stuck, remove the stale lock file: %s.lock", path),
		},
	}
}

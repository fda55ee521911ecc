package cleaner

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fenilsonani/duster/internal/security"
)

// ErrorReason categorizes why a deletion failed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorFileInUse
	ErrorFileNotFound
	ErrorIsDirectory
	ErrorInvalidPath
	ErrorRefused
	ErrorUnknown
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorFileInUse:
		return "File is in use"
	case ErrorFileNotFound:
		return "File not found"
	case ErrorIsDirectory:
		return "Is a directory"
	case ErrorInvalidPath:
		return "Invalid path"
	case ErrorRefused:
		return "Outside allowed locations"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// DeletionError represents a detailed deletion error
type DeletionError struct {
	Path      string
	Reason    ErrorReason
	Original  error
	Retryable bool
}

// Error implements the error interface
func (e *DeletionError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
}

func (e *DeletionError) Unwrap() error {
	return e.Original
}

// UserMessage returns a short message suitable for a terminal
func (e *DeletionError) UserMessage() string {
	switch e.Reason {
	case ErrorPermissionDenied:
		return fmt.Sprintf("Permission denied: %s", e.Path)
	case ErrorFileInUse:
		return fmt.Sprintf("File is being used: %s (close the application and try again)", e.Path)
	case ErrorFileNotFound:
		return fmt.Sprintf("Already deleted: %s", e.Path)
	case ErrorIsDirectory:
		return fmt.Sprintf("Cannot delete directory: %s", e.Path)
	case ErrorInvalidPath:
		return fmt.Sprintf("Invalid or unsafe path: %s", e.Path)
	case ErrorRefused:
		return fmt.Sprintf("Refused: %s (%v)", e.Path, e.Original)
	default:
		return fmt.Sprintf("Error deleting %s: %v", e.Path, e.Original)
	}
}

// CategorizeError analyzes an error and returns a categorized DeletionError
func CategorizeError(path string, err error) *DeletionError {
	if err == nil {
		return nil
	}

	delErr := &DeletionError{
		Path:     path,
		Original: err,
		Reason:   ErrorUnknown,
	}

	if errors.Is(err, security.ErrRefused) {
		delErr.Reason = ErrorRefused
		return delErr
	}

	// Check syscall errors first so EBUSY is not mistaken for something broader
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM:
			delErr.Reason = ErrorPermissionDenied
		case syscall.EBUSY, syscall.ETXTBSY:
			delErr.Reason = ErrorFileInUse
			delErr.Retryable = true
		case syscall.ENOENT:
			delErr.Reason = ErrorFileNotFound
		case syscall.EISDIR:
			delErr.Reason = ErrorIsDirectory
		}
		return delErr
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		delErr.Reason = ErrorFileNotFound
	case errors.Is(err, os.ErrPermission):
		delErr.Reason = ErrorPermissionDenied
	}
	return delErr
}

// GroupErrors groups deletion errors by reason
func GroupErrors(errs []*DeletionError) map[ErrorReason][]*DeletionError {
	grouped := make(map[ErrorReason][]*DeletionError)
	for _, err := range errs {
		grouped[err.Reason] = append(grouped[err.Reason], err)
	}
	return grouped
}

// FormatErrorSummary renders a tree of failure counts with a tip for the
// reasons a user can act on. An empty list renders as "".
func FormatErrorSummary(errs []*DeletionError) string {
	if len(errs) == 0 {
		return ""
	}

	grouped := GroupErrors(errs)

	type line struct {
		reason ErrorReason
		label  string
		tip    string
	}
	lines := []line{
		{ErrorRefused, "Refused (outside allowed locations)", ""},
		{ErrorPermissionDenied, "Permission denied", "Check ownership of the listed paths"},
		{ErrorFileInUse, "File in use", "Close applications and retry"},
		{ErrorFileNotFound, "Already deleted", ""},
		{ErrorIsDirectory, "Directories", ""},
		{ErrorInvalidPath, "Unsafe paths", ""},
		{ErrorUnknown, "Other errors", ""},
	}

	var present []line
	for _, l := range lines {
		if len(grouped[l.reason]) > 0 {
			present = append(present, l)
		}
	}

	var b strings.Builder
	b.WriteString("\nIssues encountered:\n")
	for i, l := range present {
		branch, stem := "├─", "│"
		if i == len(present)-1 {
			branch, stem = "└─", " "
		}
		fmt.Fprintf(&b, "   %s %s: %d\n", branch, l.label, len(grouped[l.reason]))
		if l.tip != "" {
			fmt.Fprintf(&b, "   %s  └─ Tip: %s\n", stem, l.tip)
		}
	}
	return b.String()
}

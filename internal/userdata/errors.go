package userdata

import (
	"errors"
	"fmt"
)

type ReadErrorKind string

const (
	ReadMissing   ReadErrorKind = "missing"
	ReadMalformed ReadErrorKind = "malformed"
	ReadSchema    ReadErrorKind = "schema"

	ReadUnreadable ReadErrorKind = "unreadable"
)

// ReadError reports that the user data file could not be loaded as a valid
// profile: it is absent, cannot be read, is not JSON, or does not match the
// schema.
type ReadError struct {
	Kind    ReadErrorKind
	Path    string
	Message string
	Cause   error
}

func (e *ReadError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ReadError) Unwrap() error { return e.Cause }

// WriteError reports a failure while serializing or atomically replacing the
// user data file. The previous file content is left untouched.
type WriteError struct {
	Path    string
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }

// ValidationError is a single schema violation for one profile key.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func missingFile(path string, cause error) error {
	return &ReadError{Kind: ReadMissing, Path: path, Message: fmt.Sprintf("missing file: %s", path), Cause: cause}
}

func malformedJSON(path string, cause error) error {
	return &ReadError{Kind: ReadMalformed, Path: path, Message: fmt.Sprintf("invalid JSON in %s", path), Cause: cause}
}

func schemaMismatch(path string, cause error) error {
	return &ReadError{Kind: ReadSchema, Path: path, Message: fmt.Sprintf("invalid user data schema in %s", path), Cause: cause}
}

func writeFailed(path string, cause error) error {
	return &WriteError{Path: path, Message: "failed to update user data", Cause: cause}
}

func initFailed(path string, cause error) error {
	return &WriteError{Path: path, Message: "failed to initialize user data", Cause: cause}
}

// IsValidation reports whether err carries at least one schema violation and
// is not a read failure.
func IsValidation(err error) bool {
	var re *ReadError
	if errors.As(err, &re) {
		return false
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}

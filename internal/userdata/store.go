package userdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// TempSuffix is appended to the data path to form the staging file used by
// atomic replacement.
const TempSuffix = ".tmp"

// Store provides persistent storage for the user profile at a single path.
//
// All writes are atomic and durable: the new document is written to
// <path>.tmp, synced, renamed over <path>, and the directory is synced
// (best effort).
// No cross-process locking is performed.
type Store struct {
	path   string
	logger *slog.Logger

	// rename and syncDir are os.Rename and fsyncDir outside of tests.
	rename  func(oldpath, newpath string) error
	syncDir func(dir string) error
}

type Option func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStore(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("user data path is required")
	}
	s := &Store{
		path:    path,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		rename:  os.Rename,
		syncDir: fsyncDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the user data file path.
func (s *Store) Path() string { return s.path }

func (s *Store) tempPath() string { return s.path + TempSuffix }

// Read loads and validates the profile. It never modifies the file.
func (s *Store) Read() (Profile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Profile{}, missingFile(s.path, err)
		}
		return Profile{}, &ReadError{Kind: ReadUnreadable, Path: s.path, Message: fmt.Sprintf("cannot read %s", s.path), Cause: err}
	}

	raw, err := decodeStrict(data)
	if err != nil {
		return Profile{}, malformedJSON(s.path, err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Profile{}, schemaMismatch(s.path, fmt.Errorf("expected a JSON object, got %s", jsonTypeName(raw)))
	}
	p, err := ParseProfile(obj)
	if err != nil {
		return Profile{}, schemaMismatch(s.path, err)
	}
	return p, nil
}

// Update merges update over the current profile and atomically replaces the
// file with the result.
//
// A missing or corrupt current file is returned as the *ReadError from Read.
// A merged result that violates the schema is returned as validation errors
// and nothing is written. Serialization, temp-file, and rename failures are
// *WriteError; a *WriteError always means the previous file is unchanged.
func (s *Store) Update(update Fields) error {
	current, err := s.Read()
	if err != nil {
		return err
	}

	merged := current.Fields()
	for k, v := range update {
		merged[k] = v
	}
	next, err := ParseProfile(merged)
	if err != nil {
		return err
	}

	data, err := marshalProfile(next)
	if err != nil {
		return writeFailed(s.path, err)
	}
	if err := s.replace(data); err != nil {
		return writeFailed(s.path, err)
	}
	s.logger.Debug("user data updated", slog.String("path", s.path), slog.Int("fields", len(update)))
	return nil
}

// Ensure prepares the data file for a session. A leftover temp file from an
// interrupted update is removed, and a missing data file is created holding an
// empty profile. An existing data file is not touched or validated.
func (s *Store) Ensure() (created bool, err error) {
	tmp := s.tempPath()
	if _, err := os.Stat(tmp); err == nil {
		s.logger.Warn("removing temp file left by an interrupted update", slog.String("path", tmp))
		if err := removeTemp(tmp); err != nil {
			return false, initFailed(s.path, err)
		}
	}

	_, err = os.Stat(s.path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, initFailed(s.path, err)
	}

	if err := ensureDirDurable(s.path); err != nil {
		return false, initFailed(s.path, err)
	}
	data, err := marshalProfile(Profile{})
	if err != nil {
		return false, initFailed(s.path, err)
	}
	if err := s.replace(data); err != nil {
		return false, initFailed(s.path, err)
	}
	s.logger.Info("created user data file", slog.String("path", s.path))
	return true, nil
}

// replace stages data in the temp file and renames it over the real path.
// The temp file is always removed afterwards.
func (s *Store) replace(data []byte) error {
	tmp := s.tempPath()
	defer func() {
		if err := removeTemp(tmp); err != nil {
			s.logger.Warn("failed to remove temp file", slog.String("path", tmp), slog.Any("error", err))
		}
	}()

	if err := writeFileSynced(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := s.rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	// The new document is in place once rename succeeds; a directory sync
	// failure is logged, not returned.
	if err := s.syncDir(dirOf(s.path)); err != nil {
		s.logger.Warn("failed to sync data directory after replace", slog.String("path", s.path), slog.Any("error", err))
	}
	return nil
}

func marshalProfile(p Profile) ([]byte, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// decodeStrict decodes exactly one JSON value and rejects trailing content.
func decodeStrict(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("trailing content after JSON value")
	}
	return v, nil
}

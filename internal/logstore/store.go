// Package logstore persists samples into one JSON array file per local calendar day.
//
// Each append reads the whole file, adds the record and rewrites the file
// atomically. A missing or unparsable file is treated as an empty log. The
// store assumes it is the only writer of its directory.
package logstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
)

const (
	DefaultDir = "logs"
	filePrefix = "logs-"
	fileLayout = "2006-01-02"
	fileExt    = ".json"
)

// ErrWrite marks failures to create the log directory or write the file.
var ErrWrite = errors.New("log write failed")

type Store struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New returns a store writing into dir. An empty dir means the working directory.
func New(dir string, opts ...Option) *Store {
	if dir == "" {
		dir = "."
	}
	s := &Store{
		dir:    dir,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Dir() string {
	return s.dir
}

// PathFor returns the file holding records of day, using its local date.
func (s *Store) PathFor(day time.Time) string {
	return filepath.Join(s.dir, filePrefix+day.Local().Format(fileLayout)+fileExt)
}

// Append adds rec to today's log and returns the path written.
func (s *Store) Append(rec Record) (string, error) {
	path := s.PathFor(s.now())

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create directory %s: %w", ErrWrite, s.dir, err)
	}

	entries := s.load(path)

	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	entries = append(entries, raw)

	data, err := encode(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode log: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}

	return path, nil
}

// Read returns the records stored for day.
func (s *Store) Read(day time.Time) ([]Record, error) {
	data, err := os.ReadFile(s.PathFor(day))
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse log: %w", err)
	}
	return records, nil
}

// load returns the existing entries of path. Entries are kept as raw JSON so
// that records written by other versions are rewritten unchanged.
func (s *Store) load(path string) []json.RawMessage {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("log file unreadable, starting a new one", slog.String("path", path), slog.Any("error", err))
		}
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Debug("log file corrupt, discarding its content", slog.String("path", path), slog.Any("error", err))
		return nil
	}

	for _, entry := range entries {
		if !isObject(entry) {
			s.logger.Debug("log file holds non-record entries, discarding its content", slog.String("path", path))
			return nil
		}
	}

	return entries
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func encode(entries []json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// Sink reads and writes parquet tables under one data directory. Writes go
// through a temp file and a rename so readers never observe a half-written
// table.
type Sink struct {
	dir    string
	logger *log.Logger
}

func NewSink(dir string, logger *log.Logger) *Sink {
	if logger == nil {
		logger = log.Default()
	}
	return &Sink{dir: dir, logger: logger}
}

// Dir returns the data directory the sink operates on.
func (s *Sink) Dir() string { return s.dir }

// Path returns the file path a table is stored at.
func (s *Sink) Path(table string) string {
	return filepath.Join(s.dir, table+".parquet")
}

// WriteTable replaces one table with the given rows.
func WriteTable[T any](s *Sink, table string, rows []T) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("store: create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, table+".*.parquet.tmp")
	if err != nil {
		return fmt.Errorf("store: temp file for %s: %w", table, err)
	}
	defer os.Remove(tmp.Name())

	if err := parquet.Write(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s: %w", table, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", table, err)
	}

	final := s.Path(table)
	if err := os.Rename(tmp.Name(), final); err != nil {
		return fmt.Errorf("store: publish %s: %w", table, err)
	}
	s.logger.Printf("[Store] wrote table=%s rows=%d path=%s", table, len(rows), final)
	return nil
}

// ReadTable loads one table. A table that has never been written reads as
// empty, not as an error, so the query layer can serve partial datasets.
func ReadTable[T any](s *Sink, table string) ([]T, error) {
	path := s.Path(table)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Printf("[Store] table=%s not present, serving empty", table)
			return []T{}, nil
		}
		return nil, fmt.Errorf("store: open %s: %w", table, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("store: stat %s: %w", table, err)
	}

	rows, err := parquet.Read[T](f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", table, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

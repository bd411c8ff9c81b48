// Package ingest is the boundary to file formats: it turns uploaded files into
// raw rows and candidate lists back into flat interchange rows.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

var ErrUnsupportedFormat = errors.New("please upload a CSV or Excel file")

// ParseError reports that a source file could not be decoded. No rows are
// ingested when it is returned.
type ParseError struct {
	Source string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("parsing %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("error parsing %s file %s: %v", e.Format, e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RowSource supplies parsed rows from an uploaded file.
type RowSource interface {
	Rows(ctx context.Context) ([]candidate.RawRow, error)
}

// Open picks a RowSource by file extension.
func Open(path string) (RowSource, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "csv":
		return &CSVFile{Path: path}, nil
	case "xlsx", "xls":
		return &XLSXFile{Path: path}, nil
	case "json":
		return &JSONFile{Path: path}, nil
	default:
		return nil, &ParseError{Source: path, Err: ErrUnsupportedFormat}
	}
}

func parseErr(source, format string, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{Source: source, Format: format, Err: err}
}

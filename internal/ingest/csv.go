package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

const formatCSV = "CSV"

// CSVFile reads a CSV file whose first record is the header row.
type CSVFile struct {
	Path string
}

func (f *CSVFile) Rows(ctx context.Context) ([]candidate.RawRow, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, parseErr(f.Path, formatCSV, err)
	}
	defer file.Close()

	rows, err := ReadCSV(ctx, file)
	if err != nil {
		return nil, parseErr(f.Path, formatCSV, err)
	}
	return rows, nil
}

// ReadCSV decodes header-keyed rows. Blank lines are skipped, short rows leave
// trailing columns absent.
func ReadCSV(ctx context.Context, r io.Reader) ([]candidate.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	header = cleanHeader(header)

	var rows []candidate.RawRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := toRow(header, record)
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func toRow(header, cells []string) candidate.RawRow {
	row := make(candidate.RawRow, len(header))
	for i, cell := range cells {
		if i >= len(header) || header[i] == "" {
			continue
		}
		if strings.TrimSpace(cell) == "" {
			continue
		}
		row[header[i]] = cell
	}
	return row
}

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

const formatJSON = "JSON"

// JSONFile reads an array of flat objects.
type JSONFile struct {
	Path string
}

func (f *JSONFile) Rows(ctx context.Context) ([]candidate.RawRow, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, parseErr(f.Path, formatJSON, err)
	}
	defer file.Close()

	rows, err := ReadJSON(ctx, file)
	if err != nil {
		return nil, parseErr(f.Path, formatJSON, err)
	}
	return rows, nil
}

func ReadJSON(ctx context.Context, r io.Reader) ([]candidate.RawRow, error) {
	var rows []candidate.RawRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decoding rows: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := rows[:0]
	for _, row := range rows {
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return out, nil
}

package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

const formatExcel = "Excel"

// XLSXFile reads the first sheet of a workbook; the first row is the header.
type XLSXFile struct {
	Path string
}

func (f *XLSXFile) Rows(ctx context.Context) ([]candidate.RawRow, error) {
	book, err := excelize.OpenFile(f.Path)
	if err != nil {
		return nil, parseErr(f.Path, formatExcel, err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseErr(f.Path, formatExcel, errors.New("workbook has no sheets"))
	}

	cells, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, parseErr(f.Path, formatExcel, fmt.Errorf("reading sheet %q: %w", sheets[0], err))
	}
	if len(cells) == 0 {
		return nil, parseErr(f.Path, formatExcel, errors.New("sheet is empty"))
	}

	header := cleanHeader(cells[0])
	rows := make([]candidate.RawRow, 0, len(cells)-1)
	for _, line := range cells[1:] {
		if err := ctx.Err(); err != nil {
			return nil, parseErr(f.Path, formatExcel, err)
		}
		row := toRow(header, line)
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

const (
	ExportCSV  = "csv"
	ExportJSON = "json"
	ExportYAML = "yaml"
)

// Exporter serializes the full candidate list.
type Exporter interface {
	Export(w io.Writer, records []candidate.Record) error
	Extension() string
}

func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", ExportCSV:
		return csvExporter{}, nil
	case ExportJSON:
		return jsonExporter{}, nil
	case ExportYAML, "yml":
		return yamlExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ExportFileName is the default download name, e.g. recruitment_data_2024-06-15.csv.
func ExportFileName(now time.Time, e Exporter) string {
	return fmt.Sprintf("recruitment_data_%s.%s", now.UTC().Format(candidate.DateLayout), e.Extension())
}

// FlatRows converts records to interchange rows with every canonical column.
func FlatRows(records []candidate.Record) []map[string]string {
	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.Flat())
	}
	return rows
}

type csvExporter struct{}

func (csvExporter) Extension() string { return ExportCSV }

func (csvExporter) Export(w io.Writer, records []candidate.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(candidate.FlatColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	line := make([]string, len(candidate.FlatColumns))
	for _, row := range FlatRows(records) {
		for i, col := range candidate.FlatColumns {
			line[i] = row[col]
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

type jsonExporter struct{}

func (jsonExporter) Extension() string { return ExportJSON }

func (jsonExporter) Export(w io.Writer, records []candidate.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(FlatRows(records))
}

type yamlExporter struct{}

func (yamlExporter) Extension() string { return ExportYAML }

func (yamlExporter) Export(w io.Writer, records []candidate.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FlatRows(records)); err != nil {
		return err
	}
	return enc.Close()
}

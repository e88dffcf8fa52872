// Package importer bulk loads inventory entries from Excel workbooks.
//
// Each processed sheet must start with a header row. Headers are matched to
// inventory fields by field name or by the aliases of a YAML mapping, case
// insensitively. Every data row goes through the same validation and
// create-or-update logic as the HTTP API.
package importer

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tealeg/xlsx/v3"
	"gopkg.in/yaml.v3"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/inventory"
	"computer-inventory-api/internal/models"
	"computer-inventory-api/internal/validation"
)

// DefaultMaxErrors bounds row errors before an import is aborted
const DefaultMaxErrors = 50

// maxSamples bounds the row errors reported per sheet
const maxSamples = 20

// ErrTooManyErrors is returned when row errors exceed ImportOptions.MaxErrors
var ErrTooManyErrors = errors.New("too many row errors")

//go:embed default_mapping.yaml
var defaultMapping []byte

// Upserter applies one validated entry. *inventory.Service satisfies it.
type Upserter interface {
	Upsert(ctx context.Context, e *models.Entry) (*inventory.Result, error)
}

// ImportOptions defines the configuration for Excel import operations
type ImportOptions struct {
	// Mapping defaults to the embedded mapping
	Mapping *Mapping
	// DryRun validates rows without writing them
	DryRun    bool
	MaxErrors int
}

// RowError represents an error that occurred during row processing
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// SheetSummary contains the import statistics for a single sheet
type SheetSummary struct {
	Name      string     `json:"name"`
	Created   int        `json:"created"`
	Updated   int        `json:"updated"`
	Unchanged int        `json:"unchanged"`
	Valid     int        `json:"valid"`
	Skipped   int        `json:"skipped"`
	Errors    int        `json:"errors"`
	Samples   []RowError `json:"error_samples,omitempty"`
}

// ImportSummary contains the overall import statistics
type ImportSummary struct {
	Created   int            `json:"created"`
	Updated   int            `json:"updated"`
	Unchanged int            `json:"unchanged"`
	Valid     int            `json:"valid"`
	Skipped   int            `json:"skipped"`
	Errors    int            `json:"errors"`
	Sheets    []SheetSummary `json:"sheets"`
	DryRun    bool           `json:"dry_run"`
}

func (s *ImportSummary) add(sheet SheetSummary) {
	s.Sheets = append(s.Sheets, sheet)
	s.Created += sheet.Created
	s.Updated += sheet.Updated
	s.Unchanged += sheet.Unchanged
	s.Valid += sheet.Valid
	s.Skipped += sheet.Skipped
	s.Errors += sheet.Errors
}

// Mapping represents the YAML mapping configuration
type Mapping struct {
	Version int `yaml:"version"`
	// Sheets lists the sheet names to import; empty means every sheet
	Sheets []string `yaml:"sheets"`
	// Aliases maps a field name to extra accepted header names. They add to
	// the built-in aliases rather than replacing them.
	Aliases map[string][]string `yaml:"aliases"`
}

// ParseMapping decodes a YAML mapping and checks its field names
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	if m.Version != 1 {
		return nil, fmt.Errorf("unsupported mapping version %d", m.Version)
	}
	for name := range m.Aliases {
		if _, ok := models.FieldByName(name); !ok {
			return nil, fmt.Errorf("mapping aliases unknown field %q", name)
		}
	}
	return &m, nil
}

// LoadMapping reads a mapping file
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	return ParseMapping(data)
}

// DefaultMapping returns the embedded mapping
func DefaultMapping() *Mapping {
	m, err := ParseMapping(defaultMapping)
	if err != nil {
		panic("importer: embedded mapping is invalid: " + err.Error())
	}
	return m
}

func (m *Mapping) wantsSheet(name string) bool {
	if len(m.Sheets) == 0 {
		return true
	}
	for _, s := range m.Sheets {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return true
		}
	}
	return false
}

// headerIndex maps upper-cased header names to fields. The aliases of base
// are indexed first so m wins when both claim the same header.
func (m *Mapping) headerIndex(base *Mapping) map[string]models.Field {
	idx := make(map[string]models.Field)
	for _, f := range models.Fields() {
		idx[strings.ToUpper(f.String())] = f
	}
	for _, src := range []*Mapping{base, m} {
		if src == nil {
			continue
		}
		for _, f := range models.Fields() {
			for _, alias := range src.Aliases[f.String()] {
				idx[strings.ToUpper(strings.TrimSpace(alias))] = f
			}
		}
	}
	return idx
}

// ImportExcel processes an Excel workbook and upserts every valid row
func ImportExcel(ctx context.Context, up Upserter, r io.Reader, opts ImportOptions) (ImportSummary, error) {
	summary := ImportSummary{
		DryRun: opts.DryRun,
		Sheets: []SheetSummary{},
	}

	base := DefaultMapping()
	if opts.Mapping == nil {
		opts.Mapping = base
	}
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = DefaultMaxErrors
	}

	// xlsx needs random access, so the upload is buffered whole
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return summary, fmt.Errorf("failed to read Excel file: %w", err)
	}
	xlFile, err := xlsx.OpenBinary(buf.Bytes())
	if err != nil {
		return summary, fmt.Errorf("failed to open Excel file: %w", err)
	}

	headers := opts.Mapping.headerIndex(base)
	for _, sheet := range xlFile.Sheets {
		if !opts.Mapping.wantsSheet(sheet.Name) {
			continue
		}

		sheetSummary, err := processSheet(ctx, up, sheet, headers, opts)
		summary.add(sheetSummary)
		if err != nil {
			return summary, err
		}
		if summary.Errors > opts.MaxErrors {
			return summary, fmt.Errorf("%w (%d), stopping import", ErrTooManyErrors, summary.Errors)
		}
	}

	return summary, nil
}

func processSheet(ctx context.Context, up Upserter, sheet *xlsx.Sheet, headers map[string]models.Field, opts ImportOptions) (SheetSummary, error) {
	summary := SheetSummary{Name: sheet.Name}
	fail := func(row int, err error) {
		summary.Errors++
		if len(summary.Samples) >= maxSamples {
			return
		}
		e := apperr.As(err)
		msg := e.Message
		if e.Kind == apperr.KindInternal && e.Err != nil {
			msg = e.Err.Error()
		}
		summary.Samples = append(summary.Samples, RowError{Sheet: sheet.Name, Row: row, Path: e.Path, Message: msg})
	}

	if sheet.MaxRow == 0 {
		return summary, nil
	}

	headerRow, err := sheet.Row(0)
	if err != nil {
		fail(1, fmt.Errorf("failed to read header row: %w", err))
		return summary, nil
	}

	columns := make(map[int]models.Field)
	for col := 0; col < sheet.MaxCol; col++ {
		name := strings.ToUpper(strings.TrimSpace(headerRow.GetCell(col).String()))
		if f, ok := headers[name]; ok {
			columns[col] = f
		}
	}

	for rowIdx := 1; rowIdx < sheet.MaxRow; rowIdx++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		row, err := sheet.Row(rowIdx)
		if err != nil {
			fail(rowIdx+1, err)
			continue
		}

		values := make(map[models.Field]string, len(columns))
		for col, f := range columns {
			if v := strings.TrimSpace(row.GetCell(col).String()); v != "" {
				values[f] = v
			}
		}
		if len(values) == 0 {
			summary.Skipped++
			continue
		}

		entry, err := validation.DecodeEntryText(values, models.Fields())
		if err != nil {
			fail(rowIdx+1, err)
			continue
		}
		if opts.DryRun {
			summary.Valid++
			continue
		}

		res, err := up.Upsert(ctx, entry)
		if err != nil {
			fail(rowIdx+1, err)
			// the store failing is not a row problem, later rows would fail too
			if apperr.IsKind(err, apperr.KindInternal) {
				return summary, fmt.Errorf("store failure at row %d: %w", rowIdx+1, err)
			}
			continue
		}
		summary.Valid++
		switch res.Outcome {
		case inventory.Created:
			summary.Created++
		case inventory.Updated:
			summary.Updated++
		case inventory.Unchanged:
			summary.Unchanged++
		}
	}

	return summary, nil
}

package core

// reader.go turns uploaded bytes into a RawTable.
//
// CSV input is decoded through a BOM-aware UTF-8 transformer: a leading
// UTF-8 BOM is dropped, UTF-16 input with a BOM is converted, and invalid
// byte sequences become U+FFFD instead of failing the parse. XLSX input is
// read from the first sheet.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Format identifies a supported table encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrEmptyFile is returned when the input has no header row.
var ErrEmptyFile = errors.New("empty file")

// ErrUnsupportedFormat is returned for file extensions other than csv/xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DetectFormat picks a format from a file name's extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ReadTable reads r in the given format.
func ReadTable(r io.Reader, format Format) (RawTable, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	default:
		return RawTable{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// NewDecodingReader wraps r so it yields clean UTF-8.
func NewDecodingReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadCSV reads a comma-separated table with a header row. Rows may have
// differing lengths; short rows are handled by the validator.
func ReadCSV(r io.Reader) (RawTable, error) {
	cr := csv.NewReader(NewDecodingReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return RawTable{}, ErrEmptyFile
	}
	if err != nil {
		return RawTable{}, fmt.Errorf("invalid csv: %w", err)
	}

	table := RawTable{Header: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return RawTable{}, fmt.Errorf("invalid csv: %w", err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ReadXLSX reads the first sheet of a workbook. The first row is the header.
func ReadXLSX(r io.Reader) (RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return RawTable{}, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return RawTable{}, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return RawTable{}, fmt.Errorf("invalid xlsx: %w", err)
	}
	if len(rows) == 0 {
		return RawTable{}, ErrEmptyFile
	}
	return RawTable{Header: rows[0], Rows: rows[1:]}, nil
}

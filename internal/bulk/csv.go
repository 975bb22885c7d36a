package bulk

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/aiflashlang/flashlang-web/pkg/apperrors"
)

// MaxImportRows caps one uploaded batch. Bigger files should be split by the
// user rather than held open against the generation API for minutes.
const MaxImportRows = 200

var csvHeader = []string{"word", "translation", "example", "example_translation", "deck"}

// ParseCSV reads an uploaded import file into rows. The first record must be
// the header; only the word column is mandatory per row. Column order is
// fixed but trailing columns may be omitted.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows may omit trailing optional columns
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.InvalidInputError("empty CSV file")
	}
	if err != nil {
		return nil, apperrors.InvalidInputError(fmt.Sprintf("reading CSV header: %v", err))
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.InvalidInputError(fmt.Sprintf("CSV line %d: %v", line, err))
		}
		if isBlank(record) {
			continue
		}

		row := Row{
			Word:               field(record, 0),
			Translation:        field(record, 1),
			Example:            field(record, 2),
			ExampleTranslation: field(record, 3),
			Deck:               field(record, 4),
		}
		if row.Word == "" {
			return nil, apperrors.InvalidInputError(fmt.Sprintf("CSV line %d: word column is empty", line))
		}
		rows = append(rows, row)

		if len(rows) > MaxImportRows {
			return nil, apperrors.InvalidInputError(fmt.Sprintf("too many rows, the limit is %d per import", MaxImportRows))
		}
	}

	if len(rows) == 0 {
		return nil, apperrors.InvalidInputError("CSV file contains no data rows")
	}
	return rows, nil
}

// Template renders the downloadable starter CSV with the expected header and
// one example row.
func Template() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(csvHeader)                                                     //nolint:errcheck // bytes.Buffer cannot fail
	_ = w.Write([]string{"hola", "hello", "Hola, ¿cómo estás?", "", "custom"}) //nolint:errcheck
	w.Flush()
	return buf.Bytes()
}

func validateHeader(header []string) error {
	if len(header) == 0 {
		return apperrors.InvalidInputError("CSV header is empty")
	}
	for i, name := range header {
		if i >= len(csvHeader) {
			return apperrors.InvalidInputError(fmt.Sprintf("unexpected CSV column %q", name))
		}
		if !strings.EqualFold(strings.TrimSpace(name), csvHeader[i]) {
			return apperrors.InvalidInputError(fmt.Sprintf(
				"CSV column %d must be %q, got %q", i+1, csvHeader[i], name))
		}
	}
	return nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

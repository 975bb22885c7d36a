package bulk_test

import (
	"strings"
	"testing"

	"github.com/aiflashlang/flashlang-web/internal/bulk"
	"github.com/aiflashlang/flashlang-web/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_FullRows(t *testing.T) {
	input := "word,translation,example,example_translation,deck\n" +
		"hola,hello,Hola amigo,Hello friend,greetings\n" +
		"adios,goodbye,,,\n"

	rows, err := bulk.ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, bulk.Row{
		Word:               "hola",
		Translation:        "hello",
		Example:            "Hola amigo",
		ExampleTranslation: "Hello friend",
		Deck:               "greetings",
	}, rows[0])
	assert.Equal(t, "adios", rows[1].Word)
	assert.Empty(t, rows[1].Deck)
}

func TestParseCSV_TrailingColumnsOptional(t *testing.T) {
	input := "word,translation\nhola,hello\nadios\n"

	rows, err := bulk.ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "hello", rows[0].Translation)
	assert.Equal(t, "adios", rows[1].Word)
}

func TestParseCSV_SkipsBlankLines(t *testing.T) {
	input := "word,translation\nhola,hello\n,\n  ,\nadios,bye\n"

	rows, err := bulk.ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"wrong header", "palabra,significado\nhola,hello\n"},
		{"extra header column", "word,translation,example,example_translation,deck,extra\n"},
		{"header only", "word,translation\n"},
		{"missing word", "word,translation\n,hello\nadios,bye\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bulk.ParseCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestParseCSV_RowLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("word\n")
	for range bulk.MaxImportRows + 1 {
		b.WriteString("palabra\n")
	}

	_, err := bulk.ParseCSV(strings.NewReader(b.String()))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestTemplate_RoundTrips(t *testing.T) {
	rows, err := bulk.ParseCSV(strings.NewReader(string(bulk.Template())))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "hola", rows[0].Word)
}

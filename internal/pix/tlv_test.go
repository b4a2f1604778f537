package pix

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatField(t *testing.T) {
	t.Parallel()
	got, err := formatField("00", "01")
	require.NoError(t, err)
	assert.Equal(t, "000201", got)

	got, err = formatField("59", "")
	require.NoError(t, err)
	assert.Equal(t, "5900", got)

	got, err = formatField("26", strings.Repeat("x", 99))
	require.NoError(t, err)
	assert.Equal(t, "2699", got[:4])

	_, err = formatField("26", strings.Repeat("x", 100))
	assert.ErrorIs(t, err, ErrFieldTooLong)
}

func TestParse(t *testing.T) {
	t.Parallel()
	fields, err := Parse("000201010211")
	require.NoError(t, err)
	assert.Equal(t, []Field{{ID: "00", Value: "01"}, {ID: "01", Value: "11"}}, fields)

	fields, err = Parse("")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"short header":     "000",
		"letters in id":    "A00201",
		"letters in len":   "00X101",
		"signed length":    "00+101",
		"value overrun":    "000501",
		"trailing garbage": "000201X",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

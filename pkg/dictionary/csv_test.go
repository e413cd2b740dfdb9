package dictionary

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffWord,Type,Definition\n" +
		"Fish,noun,\"A cold-blooded animal, living in water.\"\n" +
		"fish,verb,To try to catch fish.\n" +
		",noun,orphan definition\n" +
		"Red,adjective,The colour of blood.\n"

	d, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"fish", "red"}, d.Names())

	fish, ok := d.Get("fish")
	require.True(t, ok)
	assert.Equal(t, []string{"A cold-blooded animal, living in water.", "To try to catch fish."}, fish.Definitions)
	assert.Equal(t, "verb", fish.Type)
}

func TestReadCSVColumnOrderAndLowercase(t *testing.T) {
	input := "definition,word\n" +
		"  The Colour Of The Sky.  ,BLUE\n" +
		"short row\n"

	d, err := ReadCSV(strings.NewReader(input), CSVOptions{Lowercase: true})
	require.NoError(t, err)

	require.Equal(t, 1, d.Len())
	blue, ok := d.Get("blue")
	require.True(t, ok)
	assert.Equal(t, []string{"the colour of the sky."}, blue.Definitions)
	assert.Empty(t, blue.Type)
}

func TestReadCSVMissingColumns(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"Empty input", ""},
		{"No word column", "name,definition\nfish,animal\n"},
		{"No definition column", "word,type\nfish,noun\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.input), CSVOptions{})
			assert.ErrorIs(t, err, ErrMissingColumn)
		})
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	d := New()
	d.Add("owl", "a bird, active at night", "noun")
	d.Add("owl", "a wise person", "")
	d.Add("ant", "a small \"busy\" insect", "noun")

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, d))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "word,type,definition", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ant,noun,"))

	read, err := ReadCSV(&buf, CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, d.Entries(), read.Entries())
}

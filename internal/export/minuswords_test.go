package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  string
	}{
		{
			name:  "prefixes each word",
			words: []string{"бесплатно", "скачать"},
			want:  "-бесплатно\n-скачать\n",
		},
		{
			name:  "keeps existing prefix",
			words: []string{"-бесплатно", "реферат"},
			want:  "-бесплатно\n-реферат\n",
		},
		{
			name:  "skips empty entries",
			words: []string{"", "  ", "своими руками"},
			want:  "-своими руками\n",
		},
		{
			name:  "empty input",
			words: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.words))
		})
	}
}

func TestParse(t *testing.T) {
	words := Parse("-бесплатно\n\n-Скачать\nреферат\n")
	assert.Equal(t, []string{"бесплатно", "Скачать", "реферат"}, words)
}

func TestExportRoundTrip(t *testing.T) {
	// Export then re-parse recovers the identical word set: hyphen
	// stripped, case preserved.
	words := []string{"бесплатно", "Своими Руками", "b2b", "скачать"}
	assert.Equal(t, words, Parse(Format(words)))
}

package picker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVimgrepLine_SplitsFourFields(t *testing.T) {
	m, ok := parseVimgrepLine("internal/picker/grep.go:42:5:some text: with a colon")
	assert.True(t, ok)
	assert.Equal(t, "internal/picker/grep.go", m.File)
	assert.Equal(t, 42, m.Line)
	assert.Equal(t, 5, m.Column)
	assert.Equal(t, "some text: with a colon", m.Text)
}

func TestParseVimgrepLine_MalformedLineIsSkipped(t *testing.T) {
	_, ok := parseVimgrepLine("not a vimgrep line at all")
	assert.False(t, ok)
}

func TestParseVimgrepLine_NonNumericLineNumberIsSkipped(t *testing.T) {
	_, ok := parseVimgrepLine("file.go:abc:5:text")
	assert.False(t, ok)
}

func TestParseVimgrep_CapsAtMaxResults(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < grepMaxResults+20; i++ {
		sb.WriteString("file.go:1:1:match\n")
	}
	matches := parseVimgrep(strings.NewReader(sb.String()))
	assert.Len(t, matches, grepMaxResults)
}

package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{
		"":         "English",
		"EN":       "English",
		" hindi ":  "Hindi",
		"espanol":  "Spanish",
		"japanese": "Japanese",
		"ürdü":     "Ürdü",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLanguage(in), in)
	}
}

func TestCompareStrings(t *testing.T) {
	assert.InDelta(t, 1.0, CompareStrings("go channels", "go channels"), 1e-9)
	assert.InDelta(t, 1.0, CompareStrings("go channels", "gochannels"), 1e-9)
	assert.Equal(t, 0.0, CompareStrings("abc", ""))

	near := CompareStrings("Goroutines Go", "Goroutines in Go explained")
	far := CompareStrings("Goroutines Go", "Baking sourdough bread")
	assert.Greater(t, near, far)

	assert.Less(t, CompareStrings("GO CHANNELS", "go channels"), 1.0)
	assert.Greater(t, CompareStrings("Go Channels", "Go Channels explained"), CompareStrings("Go Channels", "go channels explained"))
}

func TestBestMatch(t *testing.T) {
	assert.Equal(t, -1, BestMatch("x", nil))

	titles := []string{"Cooking pasta at home", "Python decorators tutorial", "Decorators in Python"}
	assert.Equal(t, 2, BestMatch("Decorators Python", titles))
}

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON("Here you go:\n```json\n{\"a\": [1, 2]}\n```\nEnjoy!")
	require.NoError(t, err)
	assert.Equal(t, `{"a": [1, 2]}`, got)

	got, err = ExtractJSON("```\n[{\"q\": 1}]\n```")
	require.NoError(t, err)
	assert.Equal(t, `[{"q": 1}]`, got)

	_, err = ExtractJSON("sorry, I cannot help with that")
	assert.ErrorIs(t, err, ErrNoJSON)

	got, err = ExtractJSON("Note [1]: {\"go\": [{\"title\": \"Basics\"}]}")
	require.NoError(t, err)
	assert.Equal(t, `{"go": [{"title": "Basics"}]}`, got)

	got, err = ExtractJSON("See {ref} below: [{\"question\": \"q\"}]")
	require.NoError(t, err)
	assert.Equal(t, `[{"question": "q"}]`, got)

	got, err = ExtractJSON(`{"truncated": [1, }`)
	require.NoError(t, err)
	assert.Equal(t, `{"truncated": [1, }`, got)
	assert.False(t, json.Valid([]byte(got)))
}

func TestMarkdownToHTML(t *testing.T) {
	html, err := MarkdownToHTML("## Title\n\n**bold** and `code`")
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Title</h2>")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, "<code>code</code>")
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutlineShapes(t *testing.T) {
	keyed := `{"go basics":[{"title":"Intro","subtopics":[{"title":"Setup","theory":"x","youtube":"y","done":true}]}]}`

	cases := map[string]string{
		"keyed":        keyed,
		"array":        `[{"title":"Intro","subtopics":[{"title":"Setup"}]}]`,
		"string":       `"` + `{\"go basics\":[{\"title\":\"Intro\",\"subtopics\":[{\"title\":\"Setup\"}]}]}` + `"`,
		"other casing": `{"Go Basics":[{"title":"Intro","subtopics":[{"title":"Setup"}]}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			topics, err := ParseOutline([]byte(raw), "Go Basics")
			require.NoError(t, err)
			require.Len(t, topics, 1)
			assert.Equal(t, "Intro", topics[0].Title)
			assert.Equal(t, "Setup", topics[0].Subtopics[0].Title)
		})
	}
}

func TestParseOutlineRejects(t *testing.T) {
	_, err := ParseOutline([]byte(`{"go":[]}`), "go")
	assert.ErrorIs(t, err, ErrEmptyOutline)

	_, err = ParseOutline([]byte(`{"a":[],"b":[]}`), "go")
	assert.Error(t, err)

	_, err = ParseOutline([]byte(`not json`), "go")
	assert.Error(t, err)

	malformed := map[string]string{
		"blank topic title":    `{"go":[{"title":" ","subtopics":[{"title":"Vars"}]}]}`,
		"empty topic object":   `{"go":[{"title":"Basics","subtopics":[{"title":"Vars"}]},{}]}`,
		"no subtopics":         `{"go":[{"title":"Basics","subtopics":[]}]}`,
		"blank subtopic title": `[{"title":"Basics","subtopics":[{"title":"Vars"},{"title":""}]}]`,
		"untitled everything":  `{"go":[{"title":"","subtopics":[]},{}]}`,
	}
	for name, raw := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOutline([]byte(raw), "go")
			assert.ErrorIs(t, err, ErrMalformedOutline)
		})
	}
}

func TestResetContent(t *testing.T) {
	topics := ResetContent([]Topic{{Title: " Intro ", Subtopics: []Subtopic{{Title: "Setup", Theory: "x", Youtube: "y", Image: "z", Done: true}}}})
	assert.Equal(t, []Topic{{Title: "Intro", Subtopics: []Subtopic{{Title: "Setup"}}}}, topics)
}

func TestCourseContentKey(t *testing.T) {
	c := Course{MainTopic: "  React Hooks ", Topics: []Topic{{Title: "A"}}}
	assert.Equal(t, map[string][]Topic{"react hooks": {{Title: "A"}}}, c.Content())

	t1, st := c.FindSubtopic("A", "missing")
	assert.NotNil(t, t1)
	assert.Nil(t, st)
}

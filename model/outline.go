package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyOutline     = errors.New("outline has no topics")
	ErrMalformedOutline = errors.New("malformed outline")
)

// ParseOutline decodes an outline from any of the shapes clients and the
// generator produce: a bare topic array, an object keyed by the lower-cased
// main topic, or a JSON string that holds either of those.
func ParseOutline(raw []byte, mainTopic string) ([]Topic, error) {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return nil, ErrEmptyOutline
	}
	switch raw[0] {
	case '"':
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("decode outline string: %w", err)
		}
		return ParseOutline([]byte(inner), mainTopic)
	case '[':
		var topics []Topic
		if err := json.Unmarshal(raw, &topics); err != nil {
			return nil, fmt.Errorf("decode outline topics: %w", err)
		}
		return checkOutline(topics)
	case '{':
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, fmt.Errorf("decode outline object: %w", err)
		}
		body, ok := keyed[strings.ToLower(strings.TrimSpace(mainTopic))]
		if !ok {
			// providers sometimes echo the topic with different casing
			if len(keyed) != 1 {
				return nil, fmt.Errorf("outline is not keyed by %q", mainTopic)
			}
			for _, v := range keyed {
				body = v
			}
		}
		var topics []Topic
		if err := json.Unmarshal(body, &topics); err != nil {
			return nil, fmt.Errorf("decode outline topics: %w", err)
		}
		return checkOutline(topics)
	}
	return nil, fmt.Errorf("unexpected outline shape starting with %q", raw[0])
}

// checkOutline requires titled topics that each hold at least one titled
// subtopic. Subtopics are addressed by title once the course is stored.
func checkOutline(topics []Topic) ([]Topic, error) {
	if len(topics) == 0 {
		return nil, ErrEmptyOutline
	}
	for i, t := range topics {
		if strings.TrimSpace(t.Title) == "" {
			return nil, fmt.Errorf("%w: topic %d has no title", ErrMalformedOutline, i)
		}
		if len(t.Subtopics) == 0 {
			return nil, fmt.Errorf("%w: topic %q has no subtopics", ErrMalformedOutline, t.Title)
		}
		for j, st := range t.Subtopics {
			if strings.TrimSpace(st.Title) == "" {
				return nil, fmt.Errorf("%w: subtopic %d of %q has no title", ErrMalformedOutline, j, t.Title)
			}
		}
	}
	return topics, nil
}

// ResetContent clears every generated field so the outline starts unfilled.
func ResetContent(topics []Topic) []Topic {
	out := make([]Topic, 0, len(topics))
	for _, t := range topics {
		t.Title = strings.TrimSpace(t.Title)
		subs := make([]Subtopic, 0, len(t.Subtopics))
		for _, st := range t.Subtopics {
			subs = append(subs, Subtopic{Title: strings.TrimSpace(st.Title)})
		}
		t.Subtopics = subs
		out = append(out, t)
	}
	return out
}

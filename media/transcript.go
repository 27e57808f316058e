package media

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type TranscriptLine struct {
	Text     string  `json:"text"`
	Offset   float64 `json:"offset"`
	Duration float64 `json:"duration"`
}

type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID string) ([]TranscriptLine, error)
}

// TimedTextFetcher reads captions from the public timedtext endpoint. Failed
// fetches are retried a fixed number of times with a fixed delay.
type TimedTextFetcher struct {
	baseURL    string
	lang       string
	attempts   uint
	delay      time.Duration
	httpClient *http.Client
}

func NewTimedTextFetcher() *TimedTextFetcher {
	return &TimedTextFetcher{
		baseURL:    "https://www.youtube.com/api/timedtext",
		lang:       "en",
		attempts:   3,
		delay:      time.Second,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (f *TimedTextFetcher) FetchTranscript(ctx context.Context, videoID string) ([]TranscriptLine, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, fmt.Errorf("video id is required")
	}
	return backoff.Retry(ctx, func() ([]TranscriptLine, error) {
		return f.fetchOnce(ctx, videoID)
	}, backoff.WithBackOff(backoff.NewConstantBackOff(f.delay)), backoff.WithMaxTries(f.attempts))
}

type timedText struct {
	Lines []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Text  string  `xml:",chardata"`
	} `xml:"text"`
}

func (f *TimedTextFetcher) fetchOnce(ctx context.Context, videoID string) ([]TranscriptLine, error) {
	q := url.Values{}
	q.Set("lang", f.lang)
	q.Set("v", videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch transcript: status %d", resp.StatusCode)
	}

	var doc timedText
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	lines := make([]TranscriptLine, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		text := strings.TrimSpace(html.UnescapeString(l.Text))
		if text == "" {
			continue
		}
		lines = append(lines, TranscriptLine{Text: text, Offset: l.Start, Duration: l.Dur})
	}
	return lines, nil
}

package media

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var ErrNoResults = errors.New("no results")

type VideoCandidate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// VideoSearcher returns up to max ranked video candidates for a keyword query.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, query string, max int64) ([]VideoCandidate, error)
}

type YouTubeSearcher struct {
	svc *youtube.Service
}

func NewYouTubeSearcher(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTubeSearcher, error) {
	if apiKey == "" {
		return nil, errors.New("missing YouTube API key")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &YouTubeSearcher{svc: svc}, nil
}

func (y *YouTubeSearcher) SearchVideos(ctx context.Context, query string, max int64) ([]VideoCandidate, error) {
	resp, err := y.svc.Search.List([]string{"id", "snippet"}).
		Q(query).
		Type("video").
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search %q: %w", query, err)
	}
	out := make([]VideoCandidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		out = append(out, VideoCandidate{ID: item.Id.VideoId, Title: item.Snippet.Title})
	}
	return out, nil
}

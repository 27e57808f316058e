package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const (
	PlaceholderImage       = "https://via.placeholder.com/150"
	PlaceholderCourseImage = "https://via.placeholder.com/600x400.png?text=Course+Image"
)

// ImageSource resolves a keyword to a single image URL.
type ImageSource interface {
	FindImage(ctx context.Context, query string) (string, error)
}

type GoogleImageSearch struct {
	svc *customsearch.Service
	cx  string
}

func NewGoogleImageSearch(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*GoogleImageSearch, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("missing image search credentials")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create customsearch service: %w", err)
	}
	return &GoogleImageSearch{svc: svc, cx: cx}, nil
}

func (g *GoogleImageSearch) FindImage(ctx context.Context, query string) (string, error) {
	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query).SearchType("image").Num(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("image search %q: %w", query, err)
	}
	for _, item := range resp.Items {
		if item.Link != "" {
			return item.Link, nil
		}
	}
	return "", ErrNoResults
}

// Unsplash queries the stock photo search endpoint for one landscape photo.
type Unsplash struct {
	accessKey  string
	baseURL    string
	httpClient *http.Client
}

func NewUnsplash(accessKey string) *Unsplash {
	return &Unsplash{
		accessKey:  accessKey,
		baseURL:    "https://api.unsplash.com",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (u *Unsplash) FindImage(ctx context.Context, query string) (string, error) {
	if u.accessKey == "" {
		return "", fmt.Errorf("missing Unsplash access key")
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", "1")
	q.Set("per_page", "1")
	q.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.baseURL+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+u.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("unsplash search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unsplash search: status %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode unsplash response: %w", err)
	}
	if len(body.Results) == 0 || body.Results[0].URLs.Regular == "" {
		return "", ErrNoResults
	}
	return body.Results[0].URLs.Regular, nil
}

// ImageFinder tries each source in order and falls back to a placeholder, so
// FindImage never fails.
type ImageFinder struct {
	sources     []ImageSource
	placeholder string
}

func NewImageFinder(placeholder string, sources ...ImageSource) *ImageFinder {
	var kept []ImageSource
	for _, s := range sources {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &ImageFinder{sources: kept, placeholder: placeholder}
}

func (f *ImageFinder) FindImage(ctx context.Context, query string) (string, error) {
	for _, s := range f.sources {
		if u, err := s.FindImage(ctx, query); err == nil && u != "" {
			return u, nil
		}
	}
	return f.placeholder, nil
}

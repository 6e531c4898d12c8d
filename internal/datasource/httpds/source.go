package httpds

import (
	"context"
	"fmt"
	"io"
)

// Source is a datasource.Source reading one URL.
type Source struct {
	client *Client
	url    string
	name   string
}

// NewSource returns a Source fetching url through client.
func NewSource(client *Client, url string) *Source {
	return &Source{client: client, url: url}
}

// Open issues the GET and returns the response body. Any status other than
// 2xx is an error.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", s.url, resp.Status)
	}
	s.name = FilenameFromResponse(resp)
	return resp.Body, nil
}

// Name returns the payload file name derived from the last successful Open,
// or the URL before the first Open.
func (s *Source) Name() string {
	if s.name != "" {
		return s.name
	}
	return s.url
}

// Package feed fetches pages of articles from a newsapi-style endpoint.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sethvargo/go-retry"
)

// StatusOK is the marker the endpoint sets on a usable response.
const StatusOK = "ok"

type (
	Article struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
	}

	// PageResponse is one page of the remote feed.
	PageResponse struct {
		Status       string    `json:"status"`
		TotalResults int       `json:"totalResults"`
		Articles     []Article `json:"articles"`
	}

	Client struct {
		http    *http.Client
		baseURL string
		apiKey  string
		topic   string
	}
)

// Body picks the article text, falling back from description to content.
func (a Article) Body() string {
	if a.Description != "" {
		return a.Description
	}
	return a.Content
}

// StatusError is a reachable-server failure: the request made it through but
// came back non-2xx.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

func NewClient(baseURL, apiKey, topic string) *Client {
	return &Client{
		http: &http.Client{
			Timeout: time.Second * 3,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		topic:   topic,
	}
}

var stripPolicy = bluemonday.StrictPolicy()

// Removes all html tags from the string, usually a title or description.
//
// Also limits the length of the string so there's not a massive chunk of text
// being cached.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = stripPolicy.Sanitize(s)
	if len(s) > 2048 {
		s = s[:2048]
	}

	return s
}

// FetchPage gets one page of articles. Transport-level failures are retried a
// few times with backoff; a non-2xx response comes back as a *StatusError so
// the caller can tell the two apart.
func (c *Client) FetchPage(ctx context.Context, page, pageSize int) (PageResponse, error) {
	u, err := url.Parse(c.baseURL + "/everything")
	if err != nil {
		return PageResponse{}, fmt.Errorf("error building feed url: %w", err)
	}
	q := u.Query()
	q.Set("q", c.topic)
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("apiKey", c.apiKey)
	u.RawQuery = q.Encode()

	var out PageResponse
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return fmt.Errorf("error building feed request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("error getting feed page: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(&StatusError{Code: resp.StatusCode})
		}
		if resp.StatusCode != http.StatusOK {
			return &StatusError{Code: resp.StatusCode}
		}

		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fmt.Errorf("error decoding feed page: %w", err)
		}

		return nil
	})
	if err != nil {
		return PageResponse{}, err
	}

	for i := range out.Articles {
		out.Articles[i].Title = sanitize(out.Articles[i].Title)
		out.Articles[i].Description = sanitize(out.Articles[i].Description)
		out.Articles[i].Content = sanitize(out.Articles[i].Content)
	}

	return out, nil
}

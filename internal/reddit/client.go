// Package reddit fetches posts and comments from Reddit's public JSON
// listings through a proxy fetch provider. The provider is authenticated
// with an API key and returns Reddit's listing envelope unchanged.
//
// Comment coverage is best-effort: there is no brand-scoped comment search
// on the provider, so callers get the generic recent-comments firehose and
// filter it themselves.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/repradar/repradar/internal/models"
)

const (
	// DefaultBaseURL is the proxy provider endpoint.
	DefaultBaseURL = "https://app.scrapingbee.com/api/v1"

	searchURL         = "https://www.reddit.com/search.json"
	recentCommentsURL = "https://www.reddit.com/r/all/comments.json"

	pageSize = 50
)

// RequestError reports a transport failure or non-2xx provider response.
type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reddit: %s request failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("reddit: %s request returned status %d", e.Op, e.StatusCode)
}

func (e *RequestError) Unwrap() error { return e.Err }

// DecodeError reports a malformed provider response body. Callers treat it
// as "zero results for this fetch" rather than a hard failure.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("reddit: decoding %s response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// listing is Reddit's standard response envelope.
type listing struct {
	Data struct {
		Children []struct {
			Data listingItem `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// listingItem covers both post and comment payloads; Reddit uses the same
// envelope for both, with the unused fields left empty.
type listingItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Body        string  `json:"body"`
	LinkTitle   string  `json:"link_title"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
}

// Client talks to the proxy fetch provider.
type Client struct {
	apiKey  string
	baseURL string
	client  *resty.Client
}

// NewClient creates a provider client. An empty baseURL falls back to
// DefaultBaseURL; tests point it at a local server.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  resty.New().SetTimeout(30 * time.Second),
	}
}

// Configured reports whether the provider API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// SearchPosts runs a quoted-phrase search for posts mentioning the brand,
// newest first, one page of results.
func (c *Client) SearchPosts(ctx context.Context, brand string) ([]models.Post, error) {
	target := fmt.Sprintf("%s?q=%s&limit=%d&sort=new",
		searchURL, url.QueryEscape(fmt.Sprintf("%q", brand)), pageSize)

	items, err := c.fetchListing(ctx, "post search", target)
	if err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(items))
	for _, item := range items {
		posts = append(posts, models.Post{
			ID:          item.ID,
			Title:       item.Title,
			Selftext:    item.Selftext,
			Subreddit:   item.Subreddit,
			Author:      item.Author,
			CreatedUTC:  item.CreatedUTC,
			Score:       item.Score,
			NumComments: item.NumComments,
			URL:         item.URL,
			Permalink:   permalinkURL(item.Permalink),
		})
	}
	return posts, nil
}

// RecentComments fetches one page of the site-wide recent comments feed.
// The feed is not scoped to any brand; callers filter it.
func (c *Client) RecentComments(ctx context.Context) ([]models.Comment, error) {
	target := fmt.Sprintf("%s?limit=%d", recentCommentsURL, pageSize)

	items, err := c.fetchListing(ctx, "recent comments", target)
	if err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0, len(items))
	for _, item := range items {
		comments = append(comments, models.Comment{
			ID:         item.ID,
			Body:       item.Body,
			Subreddit:  item.Subreddit,
			Author:     item.Author,
			CreatedUTC: item.CreatedUTC,
			Score:      item.Score,
			LinkTitle:  item.LinkTitle,
			Permalink:  permalinkURL(item.Permalink),
		})
	}
	return comments, nil
}

// fetchListing issues one proxied GET and decodes the listing envelope.
func (c *Client) fetchListing(ctx context.Context, op, target string) ([]listingItem, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key": c.apiKey,
			"url":     target,
		}).
		Get(c.baseURL)

	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &RequestError{Op: op, StatusCode: resp.StatusCode()}
	}

	var envelope listing
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}

	items := make([]listingItem, 0, len(envelope.Data.Children))
	for _, child := range envelope.Data.Children {
		items = append(items, child.Data)
	}
	return items, nil
}

func permalinkURL(permalink string) string {
	if permalink == "" {
		return ""
	}
	return "https://reddit.com" + permalink
}

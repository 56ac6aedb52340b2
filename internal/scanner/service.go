package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/repradar/repradar/internal/models"
	"github.com/repradar/repradar/internal/reddit"
	"github.com/repradar/repradar/internal/scoring"
	"github.com/sirupsen/logrus"
)

// ErrNotConfigured is returned when the provider API key is missing. No
// network call is attempted in that case.
var ErrNotConfigured = errors.New("scanner: reddit API key not configured")

// RedditClient is the provider surface the scanner needs.
type RedditClient interface {
	Configured() bool
	SearchPosts(ctx context.Context, brand string) ([]models.Post, error)
	RecentComments(ctx context.Context) ([]models.Comment, error)
}

// Ensure the real client satisfies the interface.
var _ RedditClient = (*reddit.Client)(nil)

// Service runs brand scans: fetch candidate posts and comments, filter them
// down to genuine brand mentions, and score what survives.
type Service struct {
	client   RedditClient
	parallel bool
	metrics  *Metrics
	mu       sync.RWMutex
}

// Metrics tracks scan activity for the /metrics endpoint.
type Metrics struct {
	TotalScans         int            `json:"total_scans"`
	LastScan           time.Time      `json:"last_scan"`
	LastScanDuration   string         `json:"last_scan_duration"`
	SentimentBreakdown map[string]int `json:"sentiment_breakdown"`
	ErrorCount         int            `json:"error_count"`
}

// NewService creates a scanner. With parallel set, the two provider fetches
// run concurrently; the default is sequential, which also guarantees that a
// failed post search never consumes a comments request.
func NewService(client RedditClient, parallel bool) *Service {
	return &Service{
		client:   client,
		parallel: parallel,
		metrics: &Metrics{
			SentimentBreakdown: make(map[string]int),
		},
	}
}

// Scan produces a ScanResult for the given brand.
//
// Failure handling is asymmetric on purpose: a failed post-search request
// aborts the scan, while a malformed response on either fetch, or any
// comments-feed failure, degrades to empty results for that fetch. Comment
// coverage is bounded by the generic recent feed and is best-effort only.
func (s *Service) Scan(ctx context.Context, brand string) (*models.ScanResult, error) {
	start := time.Now()

	if !s.client.Configured() {
		s.recordError()
		return nil, ErrNotConfigured
	}

	logrus.Infof("Starting scan for brand %q", brand)

	var (
		posts    []models.Post
		comments []models.Comment
		err      error
	)

	if s.parallel {
		posts, comments, err = s.fetchParallel(ctx, brand)
	} else {
		posts, comments, err = s.fetchSequential(ctx, brand)
	}
	if err != nil {
		s.recordError()
		return nil, err
	}

	posts = filterPosts(posts, brand)
	comments = filterComments(comments, brand)

	texts := make([]string, 0, len(posts)+len(comments))
	for _, p := range posts {
		texts = append(texts, p.Title+" "+p.Selftext)
	}
	for _, c := range comments {
		texts = append(texts, c.Body)
	}

	result := &models.ScanResult{
		Brand:      brand,
		Posts:      posts,
		Comments:   comments,
		TotalFound: len(posts) + len(comments),
		RiskScore:  scoring.RiskScore(texts),
		Sentiment:  scoring.Sentiment(texts),
		ScannedAt:  time.Now().UTC(),
	}

	s.recordScan(result, time.Since(start))
	logrus.Infof("Scan for %q found %d mentions (risk=%d, sentiment=%s) in %v",
		brand, result.TotalFound, result.RiskScore, result.Sentiment, time.Since(start))

	return result, nil
}

// fetchSequential awaits the post search before touching the comments feed.
func (s *Service) fetchSequential(ctx context.Context, brand string) ([]models.Post, []models.Comment, error) {
	posts, err := s.client.SearchPosts(ctx, brand)
	if err != nil {
		posts, err = degradePosts(brand, err)
		if err != nil {
			return nil, nil, err
		}
	}

	comments, err := s.client.RecentComments(ctx)
	if err != nil {
		comments = degradeComments(err)
	}

	return posts, comments, nil
}

// fetchParallel fans both fetches out concurrently. The post-search error
// contract is unchanged: it still fails the whole scan.
func (s *Service) fetchParallel(ctx context.Context, brand string) ([]models.Post, []models.Comment, error) {
	var (
		wg       sync.WaitGroup
		posts    []models.Post
		postsErr error
		comments []models.Comment
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		p, err := s.client.SearchPosts(ctx, brand)
		if err != nil {
			p, err = degradePosts(brand, err)
		}
		posts, postsErr = p, err
	}()
	go func() {
		defer wg.Done()
		c, err := s.client.RecentComments(ctx)
		if err != nil {
			c = degradeComments(err)
		}
		comments = c
	}()
	wg.Wait()

	if postsErr != nil {
		return nil, nil, postsErr
	}
	return posts, comments, nil
}

// degradePosts decides what a post-search failure means: malformed JSON is
// logged and treated as zero posts, anything else aborts the scan.
func degradePosts(brand string, err error) ([]models.Post, error) {
	var decErr *reddit.DecodeError
	if errors.As(err, &decErr) {
		logrus.Warnf("Post search for %q returned malformed data, continuing with no posts: %v", brand, decErr)
		return []models.Post{}, nil
	}
	return nil, fmt.Errorf("searching posts for %q: %w", brand, err)
}

// degradeComments never fails the scan; the comments feed is best-effort.
func degradeComments(err error) []models.Comment {
	logrus.Warnf("Recent comments fetch failed, continuing without comments: %v", err)
	return []models.Comment{}
}

// filterPosts keeps posts whose title or body actually contains the brand,
// compensating for provider-side search imprecision.
func filterPosts(posts []models.Post, brand string) []models.Post {
	needle := strings.ToLower(brand)
	filtered := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		content := strings.ToLower(p.Title + " " + p.Selftext)
		if strings.Contains(content, needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func filterComments(comments []models.Comment, brand string) []models.Comment {
	needle := strings.ToLower(brand)
	filtered := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if strings.Contains(strings.ToLower(c.Body), needle) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

func (s *Service) recordScan(result *models.ScanResult, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.TotalScans++
	s.metrics.LastScan = time.Now().UTC()
	s.metrics.LastScanDuration = duration.String()
	s.metrics.SentimentBreakdown[string(result.Sentiment)]++
}

func (s *Service) recordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.ErrorCount++
}

// GetMetrics returns current metrics as indented JSON.
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}

package models

import "time"

// Sentiment is the coarse three-way classification attached to a scan.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Post is a Reddit submission that mentions the scanned brand.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	CreatedUTC  float64 `json:"created_utc"` // seconds since epoch
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
}

// Comment is a Reddit comment that mentions the scanned brand. LinkTitle
// points back to the title of the post the comment was left on.
type Comment struct {
	ID         string  `json:"id"`
	Body       string  `json:"body"`
	Subreddit  string  `json:"subreddit"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`
	Score      int     `json:"score"`
	LinkTitle  string  `json:"link_title"`
	Permalink  string  `json:"permalink"`
}

// ScanResult is the outcome of a single brand scan. TotalFound is always
// len(Posts)+len(Comments); RiskScore is in [0,100].
type ScanResult struct {
	Brand      string    `json:"brand"`
	Posts      []Post    `json:"posts"`
	Comments   []Comment `json:"comments"`
	TotalFound int       `json:"total_found"`
	RiskScore  int       `json:"risk_score"`
	Sentiment  Sentiment `json:"sentiment"`
	ScannedAt  time.Time `json:"scanned_at"`
}

// ScanRecord is the persisted summary of a completed scan, kept in the
// history store for the back-office listing and digest reports.
type ScanRecord struct {
	ID         string    `json:"id"`
	Brand      string    `json:"brand"`
	TotalFound int       `json:"total_found"`
	RiskScore  int       `json:"risk_score"`
	Sentiment  Sentiment `json:"sentiment"`
	CreatedAt  time.Time `json:"created_at"`
}

// Report is a periodic digest of recent scans.
type Report struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Period      string                 `json:"period"` // "daily" or "weekly"
	TotalScans  int                    `json:"total_scans"`
	Scans       []ScanRecord           `json:"scans"`
	Summary     map[string]interface{} `json:"summary"`
}

package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/repradar/repradar/internal/models"
	"github.com/repradar/repradar/internal/reddit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedditClient is a mock implementation of the provider client.
type MockRedditClient struct {
	mock.Mock
}

func (m *MockRedditClient) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockRedditClient) SearchPosts(ctx context.Context, brand string) ([]models.Post, error) {
	args := m.Called(ctx, brand)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockRedditClient) RecentComments(ctx context.Context) ([]models.Comment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func acmePosts() []models.Post {
	return []models.Post{
		{ID: "p1", Title: "Acme Widgets review", Selftext: "solid product, love it"},
		{ID: "p2", Title: "Unrelated post", Selftext: "nothing to see here"},
	}
}

func acmeComments() []models.Comment {
	return []models.Comment{
		{ID: "c1", Body: "Acme support was helpful"},
		{ID: "c2", Body: "talking about something else entirely"},
	}
}

func TestScan_NotConfigured(t *testing.T) {
	client := &MockRedditClient{}
	client.On("Configured").Return(false)

	service := NewService(client, false)
	_, err := service.Scan(context.Background(), "Acme")

	assert.ErrorIs(t, err, ErrNotConfigured)
	client.AssertNotCalled(t, "SearchPosts", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "RecentComments", mock.Anything)
}

func TestScan_FiltersToGenuineMentions(t *testing.T) {
	client := &MockRedditClient{}
	client.On("Configured").Return(true)
	client.On("SearchPosts", mock.Anything, "Acme").Return(acmePosts(), nil)
	client.On("RecentComments", mock.Anything).Return(acmeComments(), nil)

	service := NewService(client, false)
	result, err := service.Scan(context.Background(), "Acme")
	require.NoError(t, err)

	require.Len(t, result.Posts, 1)
	assert.Equal(t, "p1", result.Posts[0].ID)
	require.Len(t, result.Comments, 1)
	assert.Equal(t, "c1", result.Comments[0].ID)
	assert.Equal(t, 2, result.TotalFound)
}

func TestScan_MatchingIsCaseInsensitive(t *testing.T) {
	client := &MockRedditClient{}
	client.On("Configured").Return(true)
	client.On("SearchPosts", mock.Anything, "ACME").Return(acmePosts(), nil)
	client.On("RecentComments", mock.Anything).Return(acmeComments(), nil)

	service := NewService(client, false)
	result, err := service.Scan(context.Background(), "ACME")
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalFound)
}

func TestScan_PostsFailureShortCircuits(t *testing.T) {
	client := &MockRedditClient{}
	client.On("Configured").Return(true)
	client.On("SearchPosts", mock.Anything, "Acme").
		Return(nil, &reddit.RequestError{Op: "post search", StatusCode: 500})

	service := NewService(client, false)
	_, err := service.Scan(context.Background(), "Acme")

	var reqErr *reddit.RequestError
	require.ErrorAs(t, err, &reqErr)
	client.AssertNotCalled(t, "RecentComments", mock.Anything)
}

func TestScan_MalformedPostsDegradesToEmpty(t *testing.T) {
	client := &MockRedditClient{}
	client.On("Configured").Return(true)
	client.On("SearchPosts", mock.Anything, "Acme").
		Return(nil, &reddit.DecodeError{Op: "post search", Err: errors.New("invalid character '<'")})
	client.On("RecentComments", mock.Anything).Return(acmeComments(), nil)

	service := NewService(client, false)
	result, err := service.Scan(context.Background(), "Acme")
	require.NoError(t, err)

	assert.Empty(t, result.Posts)
	require.Len(t, result.Comments, 1)
	assert.Equal(t, 1, result.TotalFound)
}

func TestScan_CommentsFailureIsBestEffort(t *testing.T) {
	client := &MockRedditClient{}
	client.On("Configured").Return(true)
	client.On("SearchPosts", mock.Anything, "Acme").Return(acmePosts(), nil)
	client.On("RecentComments", mock.Anything).
		Return(nil, &reddit.RequestError{Op: "recent comments", StatusCode: 502})

	service := NewService(client, false)
	result, err := service.Scan(context.Background(), "Acme")
	require.NoError(t, err)

	require.Len(t, result.Posts, 1)
	assert.Empty(t, result.Comments)
	assert.Equal(t, 1, result.TotalFound)
}

func TestScan_ResultInvariants(t *testing.T) {
	client := &MockRedditClient{}
	client.On("Configured").Return(true)
	client.On("SearchPosts", mock.Anything, "Acme").Return([]models.Post{
		{ID: "p1", Title: "Acme is a scam", Selftext: "fraud lawsuit avoid"},
	}, nil)
	client.On("RecentComments", mock.Anything).Return([]models.Comment{
		{ID: "c1", Body: "acme ripped me off, total ripoff"},
	}, nil)

	service := NewService(client, false)
	result, err := service.Scan(context.Background(), "Acme")
	require.NoError(t, err)

	assert.Equal(t, len(result.Posts)+len(result.Comments), result.TotalFound)
	assert.GreaterOrEqual(t, result.RiskScore, 0)
	assert.LessOrEqual(t, result.RiskScore, 100)
	assert.Equal(t, models.SentimentNegative, result.Sentiment)
}

func TestScan_NoMentionsScoresZeroNeutral(t *testing.T) {
	client := &MockRedditClient{}
	client.On("Configured").Return(true)
	client.On("SearchPosts", mock.Anything, "Acme").Return([]models.Post{}, nil)
	client.On("RecentComments", mock.Anything).Return([]models.Comment{}, nil)

	service := NewService(client, false)
	result, err := service.Scan(context.Background(), "Acme")
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalFound)
	assert.Equal(t, 0, result.RiskScore)
	assert.Equal(t, models.SentimentNeutral, result.Sentiment)
	assert.NotNil(t, result.Posts)
	assert.NotNil(t, result.Comments)
}

func TestScan_ParallelKeepsPostErrorContract(t *testing.T) {
	client := &MockRedditClient{}
	client.On("Configured").Return(true)
	client.On("SearchPosts", mock.Anything, "Acme").
		Return(nil, &reddit.RequestError{Op: "post search", StatusCode: 500})
	client.On("RecentComments", mock.Anything).Return(acmeComments(), nil)

	service := NewService(client, true)
	_, err := service.Scan(context.Background(), "Acme")

	var reqErr *reddit.RequestError
	require.ErrorAs(t, err, &reqErr)
}

func TestService_Metrics(t *testing.T) {
	client := &MockRedditClient{}
	client.On("Configured").Return(true)
	client.On("SearchPosts", mock.Anything, "Acme").Return(acmePosts(), nil)
	client.On("RecentComments", mock.Anything).Return(acmeComments(), nil)

	service := NewService(client, false)
	_, err := service.Scan(context.Background(), "Acme")
	require.NoError(t, err)

	metrics := service.GetMetrics()
	assert.Contains(t, metrics, `"total_scans": 1`)
	assert.Contains(t, metrics, `"positive": 1`)
}

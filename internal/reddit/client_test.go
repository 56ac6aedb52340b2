package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postListing = `{
	"data": {
		"children": [
			{"data": {
				"id": "abc123",
				"title": "Acme Widgets review",
				"selftext": "I ordered from Acme last week",
				"subreddit": "reviews",
				"author": "buyer42",
				"created_utc": 1700000000,
				"score": 12,
				"num_comments": 4,
				"url": "https://example.com/widget",
				"permalink": "/r/reviews/comments/abc123/acme_widgets_review/"
			}}
		]
	}
}`

const commentListing = `{
	"data": {
		"children": [
			{"data": {
				"id": "def456",
				"body": "Acme support was quick",
				"subreddit": "reviews",
				"author": "happyuser",
				"created_utc": 1700000100,
				"score": 3,
				"link_title": "Acme Widgets review",
				"permalink": "/r/reviews/comments/abc123/comment/def456/"
			}}
		]
	}
}`

func TestClient_Configured(t *testing.T) {
	assert.True(t, NewClient("key", "").Configured())
	assert.False(t, NewClient("", "").Configured())
}

func TestClient_SearchPosts(t *testing.T) {
	var gotTarget string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("api_key"))
		gotTarget = r.URL.Query().Get("url")
		w.Write([]byte(postListing))
	}))
	defer server.Close()

	client := NewClient("key", server.URL)
	posts, err := client.SearchPosts(context.Background(), "Acme Widgets")
	require.NoError(t, err)

	require.Len(t, posts, 1)
	assert.Equal(t, "abc123", posts[0].ID)
	assert.Equal(t, "Acme Widgets review", posts[0].Title)
	assert.Equal(t, "reviews", posts[0].Subreddit)
	assert.Equal(t, 4, posts[0].NumComments)
	assert.Equal(t, "https://reddit.com/r/reviews/comments/abc123/acme_widgets_review/", posts[0].Permalink)

	// Quoted-phrase search, newest first, one page.
	assert.Contains(t, gotTarget, `%22Acme+Widgets%22`)
	assert.Contains(t, gotTarget, "limit=50")
	assert.Contains(t, gotTarget, "sort=new")
}

func TestClient_RecentComments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(commentListing))
	}))
	defer server.Close()

	client := NewClient("key", server.URL)
	comments, err := client.RecentComments(context.Background())
	require.NoError(t, err)

	require.Len(t, comments, 1)
	assert.Equal(t, "def456", comments[0].ID)
	assert.Equal(t, "Acme support was quick", comments[0].Body)
	assert.Equal(t, "Acme Widgets review", comments[0].LinkTitle)
}

func TestClient_RequestErrorOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("key", server.URL)
	_, err := client.SearchPosts(context.Background(), "Acme")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
}

func TestClient_DecodeErrorOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient("key", server.URL)
	_, err := client.SearchPosts(context.Background(), "Acme")

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestClient_EmptyListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"children":[]}}`))
	}))
	defer server.Close()

	client := NewClient("key", server.URL)
	posts, err := client.SearchPosts(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

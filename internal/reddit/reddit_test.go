package reddit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threadJSON = `[
  {"kind": "Listing", "data": {"children": [
    {"kind": "t3", "data": {
      "title": "Test thread",
      "selftext": "Tom &amp; Jerry",
      "score": 42,
      "num_comments": 5,
      "created_utc": 1700000000.0,
      "subreddit": "test",
      "author": "op",
      "url": "https://www.reddit.com/r/test/comments/abc123/title/",
      "permalink": "/r/test/comments/abc123/title/",
      "domain": "self.test",
      "is_self": true
    }}
  ]}},
  {"kind": "Listing", "data": {"children": [
    {"kind": "t1", "data": {"body": "First", "score": 10, "author": "a", "created_utc": 1700000100}},
    {"kind": "t1", "data": {"body": "[deleted]", "score": 1, "author": "[deleted]", "created_utc": 1700000200}},
    {"kind": "t1", "data": {"body": "Second &gt; third", "score": 5, "author": "b", "created_utc": 1700000300}},
    {"kind": "t1", "data": {"body": "[deleted]", "score": 0, "author": "[deleted]", "created_utc": 1700000400}},
    {"kind": "t1", "data": {"body": "Third", "score": -2, "author": "c", "created_utc": 1700000500}},
    {"kind": "more", "data": {"count": 12, "children": ["x1", "x2"]}}
  ]}}
]`

func TestDataURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.reddit.com/r/test/comments/abc123/title/", "https://www.reddit.com/r/test/comments/abc123/title.json?limit=100"},
		{"https://www.reddit.com/r/test/comments/abc123/title", "https://www.reddit.com/r/test/comments/abc123/title.json?limit=100"},
	}
	for _, tt := range tests {
		got := DataURL(tt.in, 100)
		assert.Equal(t, tt.want, got)
		assert.NotContains(t, got, "/.json")
	}
}

func TestDataURLDefaultLimit(t *testing.T) {
	assert.Equal(t, "https://reddit.com/r/x/comments/1.json?limit=100", DataURL("https://reddit.com/r/x/comments/1/", 0))
}

func TestFilterComments(t *testing.T) {
	in := []Comment{
		{Body: "a"},
		{Body: ""},
		{Body: "[deleted]"},
		{Body: "b"},
		{Body: "[removed]"},
		{Body: "c"},
	}
	got := FilterComments(in, 20)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Body)
	assert.Equal(t, "b", got[1].Body)
	assert.Equal(t, "c", got[2].Body)
}

func TestFilterCommentsTruncatesInOrder(t *testing.T) {
	var in []Comment
	for i := 0; i < 50; i++ {
		body := fmt.Sprintf("comment %d", i)
		if i%3 == 0 {
			body = "[removed]"
		}
		in = append(in, Comment{Body: body, Score: 50 - i})
	}

	got := FilterComments(in, 20)
	require.Len(t, got, 20)

	var filtered []Comment
	for _, c := range in {
		if c.Body != "[removed]" {
			filtered = append(filtered, c)
		}
	}
	assert.Equal(t, filtered[:20], got)
}

func TestFetch(t *testing.T) {
	var gotPath, gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, threadJSON)
	}))
	defer srv.Close()

	f := NewFetcher(Options{Client: srv.Client()})
	thread, err := f.Fetch(context.Background(), srv.URL+"/r/test/comments/abc123/title/")
	require.NoError(t, err)

	assert.Equal(t, "/r/test/comments/abc123/title.json", gotPath)
	assert.Equal(t, "limit=100", gotQuery)
	assert.Equal(t, DefaultUserAgent, gotUA)

	assert.Equal(t, "Test thread", thread.Post.Title)
	assert.Equal(t, "Tom & Jerry", thread.Post.Selftext)
	assert.Equal(t, 42, thread.Post.Score)
	assert.Equal(t, 5, thread.Post.NumComments)
	assert.Equal(t, float64(1700000000), thread.Post.CreatedUTC)
	assert.True(t, thread.Post.IsSelf)

	require.Len(t, thread.Comments, 3)
	assert.Equal(t, "First", thread.Comments[0].Body)
	assert.Equal(t, "Second > third", thread.Comments[1].Body)
	assert.Equal(t, -2, thread.Comments[2].Score)
}

func TestFetchRespectsMaxComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, threadJSON)
	}))
	defer srv.Close()

	f := NewFetcher(Options{Client: srv.Client(), MaxComments: 2, UserAgent: "custom/2.0"})
	thread, err := f.Fetch(context.Background(), srv.URL+"/r/test/comments/abc123/title")
	require.NoError(t, err)
	assert.Len(t, thread.Comments, 2)
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusTooManyRequests, `{"message": "Too Many Requests"}`},
		{"not json", http.StatusOK, `<html>blocked</html>`},
		{"wrong shape", http.StatusOK, `{"kind": "Listing"}`},
		{"single listing", http.StatusOK, `[{"data": {"children": []}}]`},
		{"empty post listing", http.StatusOK, `[{"data": {"children": []}}, {"data": {"children": []}}]`},
		{"post without data", http.StatusOK, `[{"data": {"children": [{"kind": "t3"}]}}, {"data": {"children": []}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			f := NewFetcher(Options{Client: srv.Client()})
			_, err := f.Fetch(context.Background(), srv.URL+"/r/test/comments/abc123/title/")
			require.Error(t, err)

			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, FetchErrorMessage, err.Error())
			assert.NotNil(t, errors.Unwrap(err))
		})
	}
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := NewFetcher(Options{})
	_, err := f.Fetch(context.Background(), url+"/r/test/comments/abc123/title/")
	require.Error(t, err)
	assert.Equal(t, FetchErrorMessage, err.Error())
	assert.False(t, strings.Contains(err.Error(), "connection refused"))
}

package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultUserAgent   = "RedditSummarizer/1.0"
	DefaultFetchLimit  = 100
	DefaultMaxComments = 20
)

// Post is a snapshot of a thread's submission at fetch time.
type Post struct {
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Domain      string  `json:"domain"`
	IsSelf      bool    `json:"is_self"`
}

// Comment is one top-level reply to the post.
type Comment struct {
	Body       string  `json:"body"`
	Score      int     `json:"score"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`
}

// Thread holds the post and the comments kept for summarization.
type Thread struct {
	Post     Post
	Comments []Comment
}

// listing mirrors the subset of Reddit's Listing envelope we read.
type listing struct {
	Data struct {
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetcher retrieves a thread from Reddit's public JSON endpoint.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	fetchLimit  int
	maxComments int
}

// Options configures a Fetcher. Zero values pick the defaults.
type Options struct {
	UserAgent   string
	FetchLimit  int
	MaxComments int
	// Timeout bounds the whole request. Zero means no timeout.
	Timeout time.Duration
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// NewFetcher creates a new thread fetcher.
func NewFetcher(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	f := &Fetcher{
		client:      client,
		userAgent:   opts.UserAgent,
		fetchLimit:  opts.FetchLimit,
		maxComments: opts.MaxComments,
	}
	if f.userAgent == "" {
		f.userAgent = DefaultUserAgent
	}
	if f.fetchLimit <= 0 {
		f.fetchLimit = DefaultFetchLimit
	}
	if f.maxComments <= 0 {
		f.maxComments = DefaultMaxComments
	}
	return f
}

// DataURL returns the JSON endpoint for a thread URL.
func DataURL(threadURL string, limit int) string {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	return fmt.Sprintf("%s.json?limit=%d", strings.TrimSuffix(threadURL, "/"), limit)
}

// Fetch downloads the thread and extracts the post and eligible comments.
// Every failure is reported as a *FetchError; the cause is logged here.
func (f *Fetcher) Fetch(ctx context.Context, threadURL string) (*Thread, error) {
	thread, err := f.fetch(ctx, threadURL)
	if err != nil {
		log.WithError(err).WithField("url", threadURL).Error("Error fetching Reddit data")
		return nil, &FetchError{cause: err}
	}
	log.WithFields(log.Fields{
		"url":      threadURL,
		"comments": len(thread.Comments),
	}).Debug("Fetched Reddit thread")
	return thread, nil
}

func (f *Fetcher) fetch(ctx context.Context, threadURL string) (*Thread, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, DataURL(threadURL, f.fetchLimit), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting thread: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpError{code: resp.StatusCode}
	}

	var listings []listing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return nil, fmt.Errorf("decoding thread: %w", err)
	}
	return parseListings(listings, f.maxComments)
}

func parseListings(listings []listing, maxComments int) (*Thread, error) {
	if len(listings) < 2 {
		return nil, fmt.Errorf("expected 2 listings, got %d", len(listings))
	}
	if len(listings[0].Data.Children) == 0 {
		return nil, fmt.Errorf("post listing is empty")
	}

	var post Post
	if err := json.Unmarshal(listings[0].Data.Children[0].Data, &post); err != nil {
		return nil, fmt.Errorf("decoding post: %w", err)
	}
	post.Selftext = html.UnescapeString(post.Selftext)

	nodes := make([]Comment, 0, len(listings[1].Data.Children))
	for _, child := range listings[1].Data.Children {
		var c Comment
		// "more" stubs and other non-comment kinds decode with an empty body
		// and are dropped by FilterComments.
		if err := json.Unmarshal(child.Data, &c); err != nil {
			return nil, fmt.Errorf("decoding comment: %w", err)
		}
		nodes = append(nodes, c)
	}

	comments := FilterComments(nodes, maxComments)
	for i := range comments {
		comments[i].Body = html.UnescapeString(comments[i].Body)
	}

	return &Thread{Post: post, Comments: comments}, nil
}

// FilterComments drops comments without usable text and keeps at most max
// of the rest in their original order.
func FilterComments(comments []Comment, max int) []Comment {
	kept := make([]Comment, 0, min(len(comments), max))
	for _, c := range comments {
		if len(kept) == max {
			break
		}
		if c.Body == "" || c.Body == "[deleted]" || c.Body == "[removed]" {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

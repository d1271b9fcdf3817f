package summarize

import (
	"context"
	"errors"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/TobiSchelling/RedditSummarizer/internal/llm"
	"github.com/TobiSchelling/RedditSummarizer/internal/reddit"
)

// Summarizer turns a fetched thread into a generated summary.
type Summarizer struct {
	provider llm.Provider
}

// NewSummarizer creates a new summarizer backed by provider.
func NewSummarizer(provider llm.Provider) *Summarizer {
	return &Summarizer{provider: provider}
}

// Summarize makes exactly one provider call and returns its raw text.
func (s *Summarizer) Summarize(ctx context.Context, post reddit.Post, comments []reddit.Comment) (string, error) {
	if s.provider == nil {
		log.Error("No LLM provider available for summarization")
		return "", &SummaryError{cause: errors.New("no provider")}
	}

	prompt := BuildPrompt(post, comments)
	logger := log.WithFields(log.Fields{"provider": s.provider.Name(), "model": s.provider.Model()})
	logger.WithField("prompt_chars", len(prompt)).Debug("Generating summary")

	text, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		logger.WithError(err).Error("Error generating summary")
		return "", &SummaryError{cause: err}
	}
	if strings.TrimSpace(text) == "" {
		logger.Error("Provider returned an empty summary")
		return "", &SummaryError{cause: errors.New("empty summary")}
	}

	logger.WithField("summary_chars", len(text)).Debug("Generated summary")
	return text, nil
}

// Result is the payload of one successful summarize request.
type Result struct {
	Post             reddit.Post `json:"post"`
	Summary          string      `json:"summary"`
	CommentsAnalyzed int         `json:"commentsAnalyzed"`
}

// ThreadFetcher is satisfied by *reddit.Fetcher.
type ThreadFetcher interface {
	Fetch(ctx context.Context, threadURL string) (*reddit.Thread, error)
}

// Service runs one summarize request: validate, fetch, then generate.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	fetcher    ThreadFetcher
	summarizer *Summarizer
	domain     string
}

// NewService creates a new service. domain is the substring a thread URL
// must contain, "reddit.com" when empty.
func NewService(fetcher ThreadFetcher, summarizer *Summarizer, domain string) *Service {
	if domain == "" {
		domain = "reddit.com"
	}
	return &Service{fetcher: fetcher, summarizer: summarizer, domain: domain}
}

// Validate checks that threadURL is an absolute URL on the platform domain.
func (s *Service) Validate(threadURL string) error {
	threadURL = strings.TrimSpace(threadURL)
	if threadURL == "" || !strings.Contains(threadURL, s.domain) {
		return &ValidationError{Message: InvalidURLMessage}
	}
	u, err := url.ParseRequestURI(threadURL)
	if err != nil || u.Host == "" {
		return &ValidationError{Message: InvalidURLMessage}
	}
	return nil
}

// Summarize fetches the thread at threadURL and generates its summary.
// Errors are *ValidationError, *reddit.FetchError or *SummaryError.
func (s *Service) Summarize(ctx context.Context, threadURL string) (*Result, error) {
	if err := s.Validate(threadURL); err != nil {
		return nil, err
	}
	threadURL = strings.TrimSpace(threadURL)

	log.WithField("url", threadURL).Info("Fetching Reddit thread")
	thread, err := s.fetcher.Fetch(ctx, threadURL)
	if err != nil {
		var fe *reddit.FetchError
		if !errors.As(err, &fe) {
			log.WithError(err).WithField("url", threadURL).Error("Error fetching Reddit data")
			err = reddit.NewFetchError(err)
		}
		return nil, err
	}

	log.WithField("comments", len(thread.Comments)).Info("Generating AI summary")
	summary, err := s.summarizer.Summarize(ctx, thread.Post, thread.Comments)
	if err != nil {
		return nil, err
	}

	return &Result{
		Post:             thread.Post,
		Summary:          summary,
		CommentsAnalyzed: len(thread.Comments),
	}, nil
}

package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/RedditSummarizer/internal/present"
	"github.com/TobiSchelling/RedditSummarizer/internal/reddit"
	"github.com/TobiSchelling/RedditSummarizer/internal/summarize"
)

//go:embed templates/*.html
var templateFS embed.FS

var md = goldmark.New()

const healthMessage = "Reddit Summarizer API is running"

// Summarizer runs one summarize request. *summarize.Service implements it.
type Summarizer interface {
	Summarize(ctx context.Context, threadURL string) (*summarize.Result, error)
}

// Options configures a Server.
type Options struct {
	// CORSOrigin is sent as Access-Control-Allow-Origin; empty disables CORS.
	CORSOrigin string
}

// Server is the HTTP server for the JSON API and the HTML UI.
type Server struct {
	svc      Summarizer
	renderer present.Renderer
	opts     Options
	pages    map[string]*template.Template
	mux      *http.ServeMux
}

// New creates a new Server.
func New(svc Summarizer, renderer present.Renderer, opts Options) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown":   renderMarkdown,
		"formatDate": formatDate,
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of base so {{define "content"}} does not collide.
	pageNames := []string{"index.html", "result.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{svc: svc, renderer: renderer, opts: opts, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server, middleware included.
func (s *Server) Handler() http.Handler {
	return requestID(accessLog(cors(s.opts.CORSOrigin, s.mux)))
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/summarize", s.handleSummarizeAPI)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /summarize", s.handleSummarizePage)
}

type summarizeRequest struct {
	URL string `json:"url"`
}

type summarizeResponse struct {
	Success bool              `json:"success"`
	Data    *summarize.Result `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSummarizeAPI(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		entry(r).WithError(err).Debug("Invalid summarize request body")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: summarize.InvalidURLMessage})
		return
	}

	result, err := s.svc.Summarize(r.Context(), req.URL)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= 500 {
			entry(r).WithError(errors.Unwrap(err)).WithField("url", req.URL).Error("API Error: " + msg)
		}
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, summarizeResponse{Success: true, Data: result})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": healthMessage,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", pageData("", ""))
}

func (s *Server) handleSummarizePage(w http.ResponseWriter, r *http.Request) {
	threadURL := strings.TrimSpace(r.FormValue("url"))
	if threadURL == "" {
		s.render(w, http.StatusBadRequest, "index.html", pageData("", "Please enter a Reddit URL"))
		return
	}

	result, err := s.svc.Summarize(r.Context(), threadURL)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= 500 {
			entry(r).WithError(errors.Unwrap(err)).WithField("url", threadURL).Error("Page Error: " + msg)
		}
		// A failed request never shows an earlier result.
		s.render(w, status, "index.html", pageData(threadURL, msg))
		return
	}

	data := pageData(threadURL, "")
	data["Result"] = result
	data["Parsed"] = s.renderer.Render(result.Summary)
	data["Presenter"] = s.renderer.Name()
	s.render(w, http.StatusOK, "result.html", data)
}

// pageData holds the fields every page template reads.
func pageData(threadURL, errMsg string) map[string]any {
	return map[string]any{"URL": threadURL, "Error": errMsg}
}

// errorStatus maps an error kind to its status code and public message.
func errorStatus(err error) (int, string) {
	var ve *summarize.ValidationError
	var fe *reddit.FetchError
	var se *summarize.SummaryError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.As(err, &fe):
		return http.StatusInternalServerError, reddit.FetchErrorMessage
	case errors.As(err, &se):
		return http.StatusInternalServerError, summarize.SummaryErrorMessage
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Error encoding JSON response")
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Errorf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.WithError(err).Errorf("Error rendering template %s", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

func formatDate(ts float64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(int64(ts), 0).UTC().Format("Jan 2, 2006")
}

// Serve starts the HTTP server on the given port.
func Serve(svc Summarizer, renderer present.Renderer, opts Options, port int) error {
	srv, err := New(svc, renderer, opts)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", port)
	log.Infof("Server running on port %d", port)
	return http.ListenAndServe(addr, srv.Handler())
}

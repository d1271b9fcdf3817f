// Package present splits a generated summary into display sections.
//
// The parsing is a heuristic over the prompt's requested headings, not a
// general parser of model output.
package present

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultLabel holds text that appears before any recognized heading.
const DefaultLabel = "Summary"

// BulletMarker delimits list items inside a section.
const BulletMarker = "*"

var (
	emphasisRe     = regexp.MustCompile(`\*\*|__`)
	numberedListRe = regexp.MustCompile(`(?m)^[ \t]*\d+\.\s*`)
)

// Section is one labelled block of a parsed summary. Exactly one of Text or
// Bullets is meaningful: Bullets when the block contained bullet markers.
type Section struct {
	Label   string
	Text    string
	Bullets []string
}

// IsList reports whether the section renders as bullet points.
func (s Section) IsList() bool {
	return s.Bullets != nil
}

// ParsedSummary holds sections in the order their labels first appeared.
type ParsedSummary struct {
	Sections []Section
}

// Get returns the section with the given label.
func (p ParsedSummary) Get(label string) (Section, bool) {
	for _, s := range p.Sections {
		if s.Label == label {
			return s, true
		}
	}
	return Section{}, false
}

// Labels returns section labels in output order.
func (p ParsedSummary) Labels() []string {
	labels := make([]string, len(p.Sections))
	for i, s := range p.Sections {
		labels[i] = s.Label
	}
	return labels
}

// Renderer turns raw summary text into display sections.
type Renderer interface {
	Render(summary string) ParsedSummary
	Name() string
}

// NewRenderer returns the renderer registered under name: "sections",
// "numbered" or "auto" (the default for an empty name).
func NewRenderer(name string, labels []string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return NewFallbackRenderer(labels), nil
	case "sections":
		return NewSectionRenderer(labels), nil
	case "numbered":
		return NumberedRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown presenter %q", name)
	}
}

// SectionRenderer splits on line-leading section labels.
type SectionRenderer struct {
	labels []string
}

// NewSectionRenderer creates a renderer matching labels in the given
// priority order.
func NewSectionRenderer(labels []string) *SectionRenderer {
	return &SectionRenderer{labels: append([]string(nil), labels...)}
}

func (r *SectionRenderer) Name() string { return "sections" }

// Render implements Renderer.
func (r *SectionRenderer) Render(summary string) ParsedSummary {
	var (
		out     ParsedSummary
		current string
		content []string
	)
	index := make(map[string]int)

	flush := func() {
		if current == "" {
			return
		}
		sec := finishSection(current, strings.TrimSpace(strings.Join(content, " ")))
		// A repeated label replaces the earlier content but keeps its position.
		if i, ok := index[current]; ok {
			out.Sections[i] = sec
			return
		}
		index[current] = len(out.Sections)
		out.Sections = append(out.Sections, sec)
	}

	for _, line := range nonEmptyLines(summary) {
		label, rest, ok := r.match(line)
		if !ok {
			if current == "" {
				current = DefaultLabel
			}
			content = append(content, line)
			continue
		}

		flush()
		current = label
		content = content[:0]
		if rest != "" {
			content = append(content, rest)
		}
	}
	flush()

	return out
}

// Recognized reports whether summary contains at least one known label.
func (r *SectionRenderer) Recognized(summary string) bool {
	for _, line := range nonEmptyLines(summary) {
		if _, _, ok := r.match(line); ok {
			return true
		}
	}
	return false
}

func (r *SectionRenderer) match(line string) (label, rest string, ok bool) {
	for _, l := range r.labels {
		if len(line) >= len(l) && strings.EqualFold(line[:len(l)], l) {
			rest = strings.TrimSpace(strings.TrimLeft(line[len(l):], ": "))
			return l, rest, true
		}
	}
	return "", "", false
}

func finishSection(label, text string) Section {
	if strings.Contains(text, BulletMarker) {
		bullets := []string{}
		for _, frag := range strings.Split(text, BulletMarker) {
			frag = strings.TrimSpace(stripEmphasis(frag))
			if frag != "" {
				bullets = append(bullets, frag)
			}
		}
		return Section{Label: label, Bullets: bullets}
	}
	return Section{Label: label, Text: strings.TrimSpace(stripEmphasis(text))}
}

// NumberedRenderer splits on leading "1. ", "2. " markers and yields
// unlabelled paragraphs.
type NumberedRenderer struct{}

func (NumberedRenderer) Name() string { return "numbered" }

// Render implements Renderer.
func (NumberedRenderer) Render(summary string) ParsedSummary {
	var out ParsedSummary
	for _, frag := range numberedListRe.Split(summary, -1) {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}
		out.Sections = append(out.Sections, Section{Text: frag})
	}
	return out
}

// FallbackRenderer uses labelled sections when the summary contains a known
// label and numbered paragraphs otherwise.
type FallbackRenderer struct {
	sections *SectionRenderer
	numbered NumberedRenderer
}

// NewFallbackRenderer creates a renderer over the given labels.
func NewFallbackRenderer(labels []string) *FallbackRenderer {
	return &FallbackRenderer{sections: NewSectionRenderer(labels)}
}

func (r *FallbackRenderer) Name() string { return "auto" }

// Render implements Renderer.
func (r *FallbackRenderer) Render(summary string) ParsedSummary {
	if r.sections.Recognized(summary) {
		return r.sections.Render(summary)
	}
	return r.numbered.Render(summary)
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func stripEmphasis(s string) string {
	return emphasisRe.ReplaceAllString(s, "")
}

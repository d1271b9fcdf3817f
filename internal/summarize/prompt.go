package summarize

import (
	"fmt"
	"strings"

	"github.com/TobiSchelling/RedditSummarizer/internal/reddit"
)

// Section is one heading the model is asked to produce.
type Section struct {
	Label     string
	Guideline string
}

// Sections lists the requested headings in prompt order. The presenter
// matches labels in this same order.
var Sections = []Section{
	{Label: "MAIN SUMMARY", Guideline: "2-3 sentences about the post and overall discussion"},
	{Label: "KEY POINTS", Guideline: "3-5 bullet points of main arguments/ideas"},
	{Label: "POPULAR OPINIONS", Guideline: "what most people seem to agree on"},
	{Label: "CONTROVERSIAL TAKES", Guideline: "opposing viewpoints or debated points"},
	{Label: "OVERALL SENTIMENT", Guideline: "positive/negative/neutral and why"},
}

// Labels returns the section labels in prompt order.
func Labels() []string {
	labels := make([]string, len(Sections))
	for i, s := range Sections {
		labels[i] = s.Label
	}
	return labels
}

const promptTemplate = `Analyze this Reddit thread and provide a comprehensive summary:

ORIGINAL POST:
Title: %s
Content: %s
Subreddit: r/%s
Score: %d upvotes

TOP COMMENTS:
%s

Please provide:
%s

Keep it concise but informative.`

// BuildPrompt renders the thread into the summarization prompt.
func BuildPrompt(post reddit.Post, comments []reddit.Comment) string {
	content := post.Selftext
	if strings.TrimSpace(content) == "" {
		content = "No text content"
	}

	commentLines := make([]string, len(comments))
	for i, c := range comments {
		commentLines[i] = fmt.Sprintf("Comment (%d upvotes): %s", c.Score, c.Body)
	}

	instructions := make([]string, len(Sections))
	for i, s := range Sections {
		instructions[i] = fmt.Sprintf("%d. %s (%s)", i+1, s.Label, s.Guideline)
	}

	return fmt.Sprintf(promptTemplate,
		post.Title,
		content,
		post.Subreddit,
		post.Score,
		strings.Join(commentLines, "\n\n"),
		strings.Join(instructions, "\n"),
	)
}

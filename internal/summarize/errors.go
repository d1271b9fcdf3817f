package summarize

const (
	// InvalidURLMessage is returned for a missing or non-Reddit thread URL.
	InvalidURLMessage = "Invalid Reddit URL"
	// SummaryErrorMessage is the only detail of a generation failure shown to callers.
	SummaryErrorMessage = "Failed to generate AI summary"
)

// ValidationError reports unusable request input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SummaryError reports any failure to obtain generated text.
type SummaryError struct {
	cause error
}

func (e *SummaryError) Error() string {
	return SummaryErrorMessage
}

func (e *SummaryError) Unwrap() error {
	return e.cause
}

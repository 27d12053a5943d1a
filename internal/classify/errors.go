package classify

import "fmt"

// NotFoundError indicates a lookup for a page number that has no entry.
// During evaluation this is a hard setup/data mismatch, never defaulted.
type NotFoundError struct {
	PageNumber int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no classification for page %d", e.PageNumber)
}

// ProviderError wraps a failure from an external collaborator (embedding,
// completion, or layout provider). Provider failures are fatal for the run
// and are surfaced to the caller unmodified via Unwrap.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

package tools

import (
	"fmt"

	"paperdesk/internal/market"
)

// AmbiguousMatchError reports a name lookup with several candidates and no
// exact hit; the caller must pick one instead of the service guessing.
type AmbiguousMatchError struct {
	Keyword    string
	Candidates []market.SymbolInfo
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("found %d stocks matching %q, please specify the exact name or code", len(e.Candidates), e.Keyword)
}

// NoMatchError reports a name lookup with zero candidates.
type NoMatchError struct {
	Keyword string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no stock matching %q", e.Keyword)
}

// UnknownToolError reports an Invoke against a name absent from the manifest.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// InvalidArgsError wraps a schema validation failure for one tool call.
type InvalidArgsError struct {
	Tool   string
	Reason error
}

func (e *InvalidArgsError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.Tool, e.Reason)
}

func (e *InvalidArgsError) Unwrap() error { return e.Reason }

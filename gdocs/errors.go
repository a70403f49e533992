package gdocs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuth wraps every authorization failure.
	ErrAuth = errors.New("google authorization failed")
	// ErrMissingClientSecret is returned when no client id or secret is configured.
	ErrMissingClientSecret = errors.New("google oauth client id and secret are required")
	// ErrAccessDenied is returned when the user declines the consent screen.
	ErrAccessDenied = errors.New("access denied by user")
	// ErrFolderNotFound is returned when no folder has the requested name.
	ErrFolderNotFound = errors.New("folder not found")
	// ErrFolderAmbiguous is returned when several folders share the requested name.
	ErrFolderAmbiguous = errors.New("folder name is ambiguous")
)

// Folder is a Drive folder match.
type Folder struct {
	ID   string
	Name string
}

// AmbiguousFolderError lists every folder matching a name so the operator
// can disambiguate.
type AmbiguousFolderError struct {
	Name    string
	Matches []Folder
}

func (e *AmbiguousFolderError) Error() string {
	parts := make([]string, 0, len(e.Matches))
	for _, f := range e.Matches {
		parts = append(parts, fmt.Sprintf("%s (ID: %s)", f.Name, f.ID))
	}
	return fmt.Sprintf("found %d folders named exactly %q: %s", len(e.Matches), e.Name, strings.Join(parts, ", "))
}

func (e *AmbiguousFolderError) Unwrap() error { return ErrFolderAmbiguous }


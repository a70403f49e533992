package gdocs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"evaluate_homework/config"

	"github.com/chainguard-dev/clog"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType   = "application/vnd.google-apps.folder"
	documentMimeType = "application/vnd.google-apps.document"
)

// Document is a Google Doc found in a folder. Text is empty until fetched.
type Document struct {
	ID   string
	Name string
	Text string
}

// Session holds the authorized Drive and Docs services.
type Session struct {
	drive *drive.Service
	docs  *docs.Service
}

// Authenticate authorizes the user and opens a Session.
func Authenticate(ctx context.Context, settings config.OAuthSettings, opts ...AuthOption) (*Session, error) {
	client, err := Authorize(ctx, settings, opts...)
	if err != nil {
		return nil, err
	}
	return NewSession(ctx, client, settings.ApplicationName)
}

// NewSession creates the Drive and Docs services over an authorized client.
// Extra options apply to both services.
func NewSession(ctx context.Context, client *http.Client, appName string, opts ...option.ClientOption) (*Session, error) {
	if appName == "" {
		appName = config.DefaultApplicationName
	}
	base := append([]option.ClientOption{
		option.WithHTTPClient(client),
		option.WithUserAgent(appName),
	}, opts...)

	driveService, err := drive.NewService(ctx, base...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	docsService, err := docs.NewService(ctx, base...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docs service: %w", err)
	}
	return &Session{drive: driveService, docs: docsService}, nil
}

// escapeQuery quotes a value for a Drive query string literal.
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func (s *Session) listFiles(ctx context.Context, q string) ([]*drive.File, error) {
	var files []*drive.File
	err := s.drive.Files.List().
		Q(q).
		Fields("nextPageToken, files(id, name)").
		Pages(ctx, func(page *drive.FileList) error {
			files = append(files, page.Files...)
			return nil
		})
	return files, err
}

// FindFolderIDByExactName returns the id of the only non-trashed folder
// named name. It fails with ErrFolderNotFound when there is none and with an
// *AmbiguousFolderError when there are several.
func (s *Session) FindFolderIDByExactName(ctx context.Context, name string) (string, error) {
	q := fmt.Sprintf("mimeType = '%s' and trashed = false and name = '%s'", folderMimeType, escapeQuery(name))
	files, err := s.listFiles(ctx, q)
	if err != nil {
		return "", fmt.Errorf("searching for folder %q: %w", name, err)
	}

	// Drive compares names loosely; keep exact matches only.
	var matches []Folder
	for _, f := range files {
		if f.Name == name {
			matches = append(matches, Folder{ID: f.Id, Name: f.Name})
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no folder named exactly %q in Drive", ErrFolderNotFound, name)
	case 1:
		return matches[0].ID, nil
	default:
		return "", &AmbiguousFolderError{Name: name, Matches: matches}
	}
}

// ListDocumentsInFolder lists the non-trashed Google Docs directly inside
// folderID. Only ID and Name are populated.
func (s *Session) ListDocumentsInFolder(ctx context.Context, folderID string) ([]Document, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", escapeQuery(folderID), documentMimeType)
	files, err := s.listFiles(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing documents in folder %s: %w", folderID, err)
	}
	out := make([]Document, 0, len(files))
	for _, f := range files {
		out = append(out, Document{ID: f.Id, Name: f.Name})
	}
	return out, nil
}

// FetchDocumentText returns the plain text of a document.
func (s *Session) FetchDocumentText(ctx context.Context, documentID string) (string, error) {
	if documentID == "" {
		return "", errors.New("document id is required")
	}
	doc, err := s.docs.Documents.Get(documentID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("fetching document %s: %w", documentID, err)
	}
	return PlainText(doc), nil
}

// GetFolderDocuments resolves the folder by name, lists its documents and
// fetches the text of each one, in listing order.
func (s *Session) GetFolderDocuments(ctx context.Context, name string) ([]Document, error) {
	folderID, err := s.FindFolderIDByExactName(ctx, name)
	if err != nil {
		return nil, err
	}
	found, err := s.ListDocumentsInFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	log := clog.FromContext(ctx).With("folder", name)
	for i := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := s.FetchDocumentText(ctx, found[i].ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", found[i].Name, err)
		}
		found[i].Text = text
		log.With("document", found[i].Name).With("chars", len(text)).Debug("Fetched document text")
	}
	return found, nil
}

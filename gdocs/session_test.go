package gdocs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

type fakeFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"-"`
	Parent   string `json:"-"`
}

// fakeGoogle serves the subset of Drive and Docs used by Session.
type fakeGoogle struct {
	t        *testing.T
	pageSize int
	files    []fakeFile
	docs     map[string]*docs.Document

	mu      sync.Mutex
	queries []string
	fetched []string
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/files":
		f.list(w, r)
	case strings.HasPrefix(r.URL.Path, "/v1/documents/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
		f.mu.Lock()
		f.fetched = append(f.fetched, id)
		f.mu.Unlock()
		doc, ok := f.docs[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(doc)
	default:
		f.t.Errorf("unexpected request %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

// list understands the two query shapes Session sends.
func (f *fakeGoogle) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	var hits []fakeFile
	for _, file := range f.files {
		switch {
		case strings.HasPrefix(q, "mimeType = '"+folderMimeType+"'"):
			// Drive name matching is case-insensitive here, like the real service.
			if file.MimeType == folderMimeType && strings.Contains(strings.ToLower(q), strings.ToLower("name = '"+escapeQuery(file.Name)+"'")) {
				hits = append(hits, file)
			}
		case strings.HasPrefix(q, "'"):
			if file.MimeType == documentMimeType && strings.HasPrefix(q, "'"+file.Parent+"' in parents") {
				hits = append(hits, file)
			}
		}
	}

	start := 0
	if tok := r.URL.Query().Get("pageToken"); tok != "" {
		require.NoError(f.t, json.Unmarshal([]byte(tok), &start))
	}
	end := len(hits)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}
	resp := map[string]any{"files": hits[start:end]}
	if end < len(hits) {
		next, _ := json.Marshal(end)
		resp["nextPageToken"] = string(next)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func textDoc(id string, runs ...string) *docs.Document {
	var content []*docs.StructuralElement
	for _, run := range runs {
		content = append(content, &docs.StructuralElement{
			Paragraph: &docs.Paragraph{Elements: []*docs.ParagraphElement{{TextRun: &docs.TextRun{Content: run}}}},
		})
	}
	return &docs.Document{DocumentId: id, Body: &docs.Body{Content: content}}
}

func newTestSession(t *testing.T, fake *fakeGoogle) *Session {
	t.Helper()
	fake.t = t
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewSession(context.Background(), srv.Client(), "", option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return s
}

func TestFindFolderIDByExactName(t *testing.T) {
	fake := &fakeGoogle{files: []fakeFile{
		{ID: "f1", Name: "ClassA", MimeType: folderMimeType},
		{ID: "f2", Name: "classa", MimeType: folderMimeType},
		{ID: "f3", Name: "Twin", MimeType: folderMimeType},
		{ID: "f4", Name: "Twin", MimeType: folderMimeType},
		{ID: "f5", Name: "Twin", MimeType: folderMimeType},
	}}
	s := newTestSession(t, fake)
	ctx := context.Background()

	id, err := s.FindFolderIDByExactName(ctx, "ClassA")
	require.NoError(t, err)
	require.Equal(t, "f1", id)

	_, err = s.FindFolderIDByExactName(ctx, "Missing")
	require.ErrorIs(t, err, ErrFolderNotFound)

	_, err = s.FindFolderIDByExactName(ctx, "Twin")
	require.ErrorIs(t, err, ErrFolderAmbiguous)
	var amb *AmbiguousFolderError
	require.True(t, errors.As(err, &amb))
	require.Len(t, amb.Matches, 3)
	for _, id := range []string{"f3", "f4", "f5"} {
		require.Contains(t, err.Error(), "Twin (ID: "+id+")")
	}
}

func TestFindFolderIDEscapesQuotes(t *testing.T) {
	fake := &fakeGoogle{files: []fakeFile{
		{ID: "q1", Name: `Ana's \ class`, MimeType: folderMimeType},
	}}
	s := newTestSession(t, fake)

	id, err := s.FindFolderIDByExactName(context.Background(), `Ana's \ class`)
	require.NoError(t, err)
	require.Equal(t, "q1", id)
	require.Contains(t, fake.queries[0], `name = 'Ana\'s \\ class'`)
	require.Contains(t, fake.queries[0], "trashed = false")
}

func TestListDocumentsInFolderPaginates(t *testing.T) {
	fake := &fakeGoogle{pageSize: 2, files: []fakeFile{
		{ID: "d1", Name: "One", MimeType: documentMimeType, Parent: "f1"},
		{ID: "d2", Name: "Two", MimeType: documentMimeType, Parent: "f1"},
		{ID: "x1", Name: "Elsewhere", MimeType: documentMimeType, Parent: "f2"},
		{ID: "d3", Name: "Three", MimeType: documentMimeType, Parent: "f1"},
		{ID: "p1", Name: "Plain", MimeType: "text/plain", Parent: "f1"},
	}}
	s := newTestSession(t, fake)

	got, err := s.ListDocumentsInFolder(context.Background(), "f1")
	require.NoError(t, err)
	want := []Document{{ID: "d1", Name: "One"}, {ID: "d2", Name: "Two"}, {ID: "d3", Name: "Three"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListDocumentsInFolder() mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, fake.queries, 2)
}

func TestGetFolderDocuments(t *testing.T) {
	fake := &fakeGoogle{
		files: []fakeFile{
			{ID: "f1", Name: "ClassA", MimeType: folderMimeType},
			{ID: "d1", Name: "Essay1", MimeType: documentMimeType, Parent: "f1"},
			{ID: "d2", Name: "Essay2", MimeType: documentMimeType, Parent: "f1"},
			{ID: "n1", Name: "Notes", MimeType: "text/plain", Parent: "f1"},
		},
		docs: map[string]*docs.Document{
			"d1": textDoc("d1", "Hello ", "world\n"),
			"d2": textDoc("d2"),
		},
	}
	s := newTestSession(t, fake)

	got, err := s.GetFolderDocuments(context.Background(), "ClassA")
	require.NoError(t, err)
	want := []Document{
		{ID: "d1", Name: "Essay1", Text: "Hello world\n"},
		{ID: "d2", Name: "Essay2", Text: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetFolderDocuments() mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"d1", "d2"}, fake.fetched)
}

func TestGetFolderDocumentsFetchError(t *testing.T) {
	fake := &fakeGoogle{
		files: []fakeFile{
			{ID: "f1", Name: "ClassA", MimeType: folderMimeType},
			{ID: "gone", Name: "Deleted", MimeType: documentMimeType, Parent: "f1"},
		},
		docs: map[string]*docs.Document{},
	}
	s := newTestSession(t, fake)

	_, err := s.GetFolderDocuments(context.Background(), "ClassA")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Deleted")
}

func TestGetFolderDocumentsFolderMissing(t *testing.T) {
	s := newTestSession(t, &fakeGoogle{})
	_, err := s.GetFolderDocuments(context.Background(), "Nope")
	require.ErrorIs(t, err, ErrFolderNotFound)
}

func TestPlainText(t *testing.T) {
	doc := &docs.Document{Body: &docs.Body{Content: []*docs.StructuralElement{
		{SectionBreak: &docs.SectionBreak{}},
		{Paragraph: &docs.Paragraph{Elements: []*docs.ParagraphElement{
			{TextRun: &docs.TextRun{Content: "Title\n"}},
		}}},
		{Table: &docs.Table{}},
		{Paragraph: &docs.Paragraph{Elements: []*docs.ParagraphElement{
			{TextRun: &docs.TextRun{Content: "First "}},
			{InlineObjectElement: &docs.InlineObjectElement{}},
			{TextRun: &docs.TextRun{Content: "second\n"}},
		}}},
	}}}
	require.Equal(t, "Title\nFirst second\n", PlainText(doc))
	require.Empty(t, PlainText(nil))
	require.Empty(t, PlainText(&docs.Document{}))
}

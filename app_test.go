package mindjourney

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eringen/mindjourney/content"
)

var testTime = time.Date(2024, 1, 9, 8, 30, 0, 0, time.UTC)

type fakeStore struct {
	mu        sync.Mutex
	posts     []content.Post
	cats      []content.Category
	listCalls int
	getCalls  int
	err       error
}

func (s *fakeStore) ListPosts(context.Context) ([]content.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.posts, nil
}

func (s *fakeStore) GetPost(_ context.Context, slug string) (content.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.err != nil {
		return content.Post{}, s.err
	}
	for _, p := range s.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return content.Post{}, content.ErrNotFound
}

func (s *fakeStore) ListCategories(context.Context) ([]content.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.cats, nil
}

type fakeComments struct {
	mu        sync.Mutex
	approved  map[string][]content.Comment
	drafts    []content.CommentDraft
	listCalls int
	listErr   error
	createErr error
}

func (f *fakeComments) ApprovedComments(_ context.Context, postID string) ([]content.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.approved[postID], nil
}

func (f *fakeComments) CreateComment(_ context.Context, draft content.CommentDraft) (content.CommentDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts = append(f.drafts, draft)
	if f.createErr != nil {
		return content.CommentDocument{}, f.createErr
	}
	doc := draft.Document()
	doc.ID = fmt.Sprintf("comment-%d", len(f.drafts))
	doc.CreatedAt = testTime
	return doc, nil
}

func (f *fakeComments) createCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.drafts)
}

func samplePosts() []content.Post {
	mindfulness := &content.Category{ID: "cat-mindfulness", Title: "Mindfulness", Slug: "mindfulness", PostCount: 1}
	produktivitas := &content.Category{ID: "cat-produktivitas", Title: "Produktivitas", Slug: "produktivitas", PostCount: 1}
	author := &content.Author{Name: "Arif Nugraha", Slug: "arif-nugraha"}
	return []content.Post{
		{
			ID:          "post-fokus",
			Title:       "Fokus di Tengah Distraksi",
			Slug:        "fokus-di-tengah-distraksi",
			Excerpt:     "Cara sederhana menjaga perhatian.",
			Category:    produktivitas,
			Author:      author,
			PublishedAt: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
			ReadTime:    3,
		},
		{
			ID:          "post-napas",
			Title:       "Belajar Bernapas Pelan",
			Slug:        "belajar-bernapas-pelan",
			Excerpt:     "Latihan napas lima menit.",
			Category:    mindfulness,
			Author:      author,
			PublishedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			ReadTime:    4,
			Tags:        []string{"napas"},
		},
	}
}

func sampleCategories() []content.Category {
	return []content.Category{
		{ID: "cat-mindfulness", Title: "Mindfulness", Slug: "mindfulness", Featured: true, PostCount: 1},
		{ID: "cat-produktivitas", Title: "Produktivitas", Slug: "produktivitas", PostCount: 1},
		{ID: "cat-refleksi", Title: "Refleksi", Slug: "refleksi", PostCount: 0},
	}
}

type testApp struct {
	*App
	store    *fakeStore
	comments *fakeComments
	handler  http.Handler
}

func newTestApp(t *testing.T, mutate ...func(*SiteConfig)) *testApp {
	t.Helper()
	cfg := SiteConfig{
		URL:              "https://mindjourney.example",
		Description:      "Catatan perjalanan batin.",
		SessionSecret:    "test-session-secret",
		CommentRateLimit: 100,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	store := &fakeStore{posts: samplePosts(), cats: sampleCategories()}
	comments := &fakeComments{approved: map[string][]content.Comment{}}

	app := New(cfg, store, comments, WithLogger(zerolog.Nop()))
	ta := &testApp{App: app, store: store, comments: comments, handler: app.Handler()}
	t.Cleanup(func() { _ = app.Close() })
	return ta
}

func (ta *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)
	return rec
}

func (ta *testApp) get(target string) *httptest.ResponseRecorder {
	return ta.do(httptest.NewRequest(http.MethodGet, target, nil))
}

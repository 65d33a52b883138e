package sanity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/mindjourney/content"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		ProjectID: "abc123",
		Dataset:   "production",
		Token:     "secret",
		BaseURL:   srv.URL,
	})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewRequiresProjectAndDataset(t *testing.T) {
	_, err := New(Config{Dataset: "production"})
	assert.Error(t, err)
	_, err = New(Config{ProjectID: "abc"})
	assert.Error(t, err)
}

func TestNewHosts(t *testing.T) {
	c, err := New(Config{ProjectID: "abc", Dataset: "production", UseCDN: true, APIVersion: "v2023-05-03"})
	require.NoError(t, err)
	assert.Equal(t, "https://abc.apicdn.sanity.io", c.readHost)
	assert.Equal(t, "https://abc.api.sanity.io", c.writeHost)
	assert.Equal(t, "2023-05-03", c.cfg.APIVersion)
}

func TestApprovedComments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2024-01-01/data/query/production", r.URL.Path)
		assert.Equal(t, `"post-1"`, r.URL.Query().Get("$postId"))
		assert.Equal(t, "published", r.URL.Query().Get("perspective"))
		assert.Contains(t, r.URL.Query().Get("query"), `approved == true && spam != true`)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		writeJSON(w, http.StatusOK, `{"ms":3,"result":[
			{"_id":"c2","_createdAt":"2024-03-02T10:00:00Z","name":"Budi","comment":"Second comment here","approved":true,"replies":null},
			{"_id":"c1","_createdAt":"2024-03-01T10:00:00Z","name":"Rina","website":"https://rina.dev","comment":"First comment here","approved":true,
			 "replies":[{"_id":"r1","_createdAt":"2024-03-01T11:00:00Z","name":"Arif","comment":"Thanks!","isAuthor":true}]}
		]}`)
	})

	comments, err := NewCommentGateway(c).ApprovedComments(context.Background(), "post-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "c2", comments[0].ID)
	assert.NotNil(t, comments[0].Replies)
	assert.Empty(t, comments[0].Replies)
	require.Len(t, comments[1].Replies, 1)
	assert.True(t, comments[1].Replies[0].IsAuthor)
	assert.Equal(t, "https://rina.dev", comments[1].Website)
}

func TestApprovedCommentsEmpty(t *testing.T) {
	for _, body := range []string{`{"result":[]}`, `{"result":null}`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, body)
		})
		comments, err := NewCommentGateway(c).ApprovedComments(context.Background(), "post-1")
		require.NoError(t, err)
		assert.NotNil(t, comments, "body %s", body)
		assert.Empty(t, comments)
	}
}

func TestApprovedCommentsStoreError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":{"description":"param $postId referenced, but not provided","type":"queryParseError"}}`)
	})

	_, err := NewCommentGateway(c).ApprovedComments(context.Background(), "post-1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "param $postId referenced, but not provided", apiErr.Description)
}

func TestCreateComment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2024-01-01/data/mutate/production", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("returnDocuments"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req struct {
			Mutations []struct {
				Create map[string]any `json:"create"`
			} `json:"mutations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Mutations, 1)
		doc := req.Mutations[0].Create

		assert.Equal(t, "comment", doc["_type"])
		assert.Equal(t, "rina@example.com", doc["email"])
		assert.Equal(t, "Rina", doc["name"])
		assert.Equal(t, false, doc["approved"])
		assert.Equal(t, false, doc["spam"])
		assert.Equal(t, "unknown", doc["userAgent"])
		assert.Equal(t, map[string]any{"_type": "reference", "_ref": "post-1"}, doc["post"])
		_, hasWebsite := doc["website"]
		assert.False(t, hasWebsite)
		_, hasID := doc["_id"]
		assert.False(t, hasID)

		doc["_id"] = "new-id"
		doc["_createdAt"] = "2024-03-01T10:00:00Z"
		out, _ := json.Marshal(map[string]any{
			"transactionId": "tx1",
			"results":       []any{map[string]any{"id": "new-id", "operation": "create", "document": doc}},
		})
		writeJSON(w, http.StatusOK, string(out))
	})

	created, err := NewCommentGateway(c).CreateComment(context.Background(), content.CommentDraft{
		PostID:        "post-1",
		Name:          " Rina ",
		Email:         "RINA@example.com",
		Comment:       "A comment long enough",
		SourceAddress: "203.0.113.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.Approved)
	assert.Equal(t, "203.0.113.1", created.IPAddress)
}

func TestCreateCommentError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"error":"Forbidden","message":"Insufficient permissions; permission \"create\" required"}`)
	})

	_, err := NewCommentGateway(c).CreateComment(context.Background(), content.CommentDraft{PostID: "p", Name: "n", Email: "e@x.io", Comment: "0123456789"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `permission "create" required`)
}

func TestGetPostNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `"missing"`, r.URL.Query().Get("$slug"))
		writeJSON(w, http.StatusOK, `{"result":null}`)
	})

	_, err := NewContentGateway(c).GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestGetPost(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"result":{
			"id":"p1","title":"Hello","slug":"hello","excerpt":"Hi","readTime":0,
			"publishedAt":"2024-01-02T00:00:00Z",
			"category":{"id":"cat1","title":"Life","slug":"life"},
			"author":{"name":"Arif","shortBio":"Writer"},
			"body":[{"_type":"block","style":"normal","children":[{"_type":"span","text":"one two three"}]}],
			"related":[{"id":"p2","title":"Other","slug":"other","readTime":4}]
		}}`)
	})

	post, err := NewContentGateway(c).GetPost(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, 1, post.ReadTime)
	assert.Equal(t, "Arif", post.Author.Name)
	assert.True(t, post.InCategory("life"))
	require.Len(t, post.Body, 1)
	require.Len(t, post.Related, 1)
	assert.Equal(t, 4, post.Related[0].ReadTime)
}

func TestListCategories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("query"), "order(featured desc, title asc)")
		writeJSON(w, http.StatusOK, `{"result":[{"id":"c1","title":"Life","slug":"life","featured":true,"postCount":3}]}`)
	})

	cats, err := NewContentGateway(c).ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, 3, cats[0].PostCount)
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		ref   string
		width int
		want  string
	}{
		{"image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg", 800, "https://cdn.sanity.io/images/abc/production/Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000.jpg?w=800&auto=format"},
		{"image-a1-10x20-png", 0, "https://cdn.sanity.io/images/abc/production/a1-10x20.png?auto=format"},
		{"file-a1-pdf", 800, ""},
		{"image-a1-png", 800, ""},
		{"", 800, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ImageURL("abc", "production", tt.ref, tt.width), "ref %q", tt.ref)
	}
}

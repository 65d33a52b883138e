package mindjourney

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/mindjourney/content"
)

func postComment(ta *testApp, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/comments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return ta.do(req)
}

const validBody = `{"name":"  Sari  ","email":" Sari@Example.COM ","comment":"  Tulisan yang sangat membantu.  ","postId":"post-napas"}`

func TestCreateCommentSuccess(t *testing.T) {
	ta := newTestApp(t)

	rec := postComment(ta, validBody, map[string]string{
		"X-Forwarded-For": "203.0.113.5, 10.0.0.1",
		"User-Agent":      "test-agent/1.0",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Comment map[string]interface{} `json:"comment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Comment submitted successfully", resp.Message)
	assert.Equal(t, "comment-1", resp.Comment["_id"])
	assert.Equal(t, "comment", resp.Comment["_type"])
	assert.Equal(t, "Sari", resp.Comment["name"])
	assert.Equal(t, "sari@example.com", resp.Comment["email"])
	assert.Equal(t, "Tulisan yang sangat membantu.", resp.Comment["comment"])
	assert.Equal(t, false, resp.Comment["approved"])
	assert.Equal(t, false, resp.Comment["spam"])
	assert.Equal(t, "203.0.113.5, 10.0.0.1", resp.Comment["ipAddress"])
	assert.Equal(t, "test-agent/1.0", resp.Comment["userAgent"])
	assert.NotContains(t, resp.Comment, "website")
	assert.Equal(t, map[string]interface{}{"_type": "reference", "_ref": "post-napas"}, resp.Comment["post"])

	require.Len(t, ta.comments.drafts, 1)
	assert.Equal(t, "post-napas", ta.comments.drafts[0].PostID)
}

func TestCreateCommentProvenanceFallback(t *testing.T) {
	tests := []struct {
		name      string
		headers   map[string]string
		wantIP    string
		wantAgent string
	}{
		{"no headers", nil, content.Unknown, content.Unknown},
		{"real ip only", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7", content.Unknown},
		{
			"forwarded wins",
			map[string]string{"X-Forwarded-For": "203.0.113.9", "X-Real-IP": "198.51.100.7", "User-Agent": "ua"},
			"203.0.113.9", "ua",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			rec := postComment(ta, validBody, tt.headers)
			require.Equal(t, http.StatusCreated, rec.Code)
			require.Len(t, ta.comments.drafts, 1)
			assert.Equal(t, tt.wantIP, ta.comments.drafts[0].SourceAddress)
			assert.Equal(t, tt.wantAgent, ta.comments.drafts[0].ClientAgent)
		})
	}
}

func TestCreateCommentKeepsWebsite(t *testing.T) {
	ta := newTestApp(t)
	body := `{"name":"Sari","email":"sari@example.com","comment":"Tulisan yang sangat membantu.","postId":"post-napas","website":" https://sari.example "}`

	rec := postComment(ta, body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"website":"https://sari.example"`)
}

func TestCreateCommentValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty object", `{}`, "All fields are required"},
		{"blank name", `{"name":"   ","email":"a@b.co","comment":"komentar panjang","postId":"p"}`, "All fields are required"},
		{"missing post id", `{"name":"Sari","email":"a@b.co","comment":"komentar panjang"}`, "All fields are required"},
		{"presence before email", `{"name":"","email":"bad","comment":"pendek","postId":"p"}`, "All fields are required"},
		{"email without tld", `{"name":"Sari","email":"a@b","comment":"komentar panjang","postId":"p"}`, "Invalid email format"},
		{"email with space", `{"name":"Sari","email":"a b@c.co","comment":"komentar panjang","postId":"p"}`, "Invalid email format"},
		{"email with nbsp", `{"name":"Sari","email":"a\u00a0b@c.co","comment":"komentar panjang","postId":"p"}`, "Invalid email format"},
		{"email with vertical tab", `{"name":"Sari","email":"a\u000bb@c.co","comment":"komentar panjang","postId":"p"}`, "Invalid email format"},
		{"email with line separator", `{"name":"Sari","email":"a@c\u2028d.co","comment":"komentar panjang","postId":"p"}`, "Invalid email format"},
		{"email with byte order mark", `{"name":"Sari","email":"a@c.c\ufeffo","comment":"komentar panjang","postId":"p"}`, "Invalid email format"},
		{"email before length", `{"name":"Sari","email":"nope","comment":"pendek","postId":"p"}`, "Invalid email format"},
		{"short comment", `{"name":"Sari","email":"a@b.co","comment":"123456789","postId":"p"}`, "Comment must be at least 10 characters"},
		{"short after trim", `{"name":"Sari","email":"a@b.co","comment":"   12345   ","postId":"p"}`, "Comment must be at least 10 characters"},
		{"short in runes", `{"name":"Sari","email":"a@b.co","comment":"ééééééééé","postId":"p"}`, "Comment must be at least 10 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			rec := postComment(ta, tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, rec.Body.String())
			assert.Zero(t, ta.comments.createCalls(), "validation failures never reach the store")
		})
	}
}

func TestCreateCommentExactlyTenRunes(t *testing.T) {
	ta := newTestApp(t)
	rec := postComment(ta, `{"name":"Sari","email":"a@b.co","comment":"héllo wörl","postId":"p"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateCommentInvalidBody(t *testing.T) {
	for _, body := range []string{``, `not json`, `{"name":1}`, `[]`} {
		ta := newTestApp(t)
		rec := postComment(ta, body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String(), body)
		assert.Zero(t, ta.comments.createCalls())
	}
}

func TestCreateCommentStoreFailure(t *testing.T) {
	ta := newTestApp(t)
	ta.comments.createErr = errors.New("document references non-existent document \"nope\"")

	rec := postComment(ta, validBody, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t,
		`{"error":"Failed to create comment","details":"document references non-existent document \"nope\""}`,
		rec.Body.String())
}

func TestCreateCommentTwiceCreatesTwo(t *testing.T) {
	ta := newTestApp(t)
	first := postComment(ta, validBody, nil)
	second := postComment(ta, validBody, nil)
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, 2, ta.comments.createCalls())
	assert.NotEqual(t, first.Body.String(), second.Body.String())
}

func TestCreateCommentRateLimited(t *testing.T) {
	ta := newTestApp(t, func(c *SiteConfig) { c.CommentRateLimit = 1 })

	// Invalid submissions do not use up the allowance.
	rec := postComment(ta, `{}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postComment(ta, validBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postComment(ta, validBody, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many comments. Try again later."}`, rec.Body.String())
	assert.Equal(t, 1, ta.comments.createCalls())
}

func TestCreateCommentValidatesBeforeRateLimit(t *testing.T) {
	ta := newTestApp(t, func(c *SiteConfig) { c.CommentRateLimit = 1 })

	rec := postComment(ta, validBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postComment(ta, `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"All fields are required"}`, rec.Body.String())

	rec = postComment(ta, `{"name":"Sari","email":"nope","comment":"komentar panjang","postId":"p"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid email format"}`, rec.Body.String())

	rec = postComment(ta, validBody, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, ta.comments.createCalls())
}

func TestListCommentsRequiresPostID(t *testing.T) {
	for _, target := range []string{"/api/comments", "/api/comments?postId=", "/api/comments?postId=%20%20"} {
		ta := newTestApp(t)
		rec := ta.get(target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.JSONEq(t, `{"error":"Post ID required"}`, rec.Body.String())
		assert.Zero(t, ta.comments.listCalls)
	}
}

func TestListCommentsEmpty(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.get("/api/comments?postId=post-fokus")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"comments":[]}`, rec.Body.String())
}

func TestListCommentsReturnsApproved(t *testing.T) {
	ta := newTestApp(t)
	ta.comments.approved["post-napas"] = []content.Comment{{
		ID:        "c1",
		CreatedAt: testTime,
		Name:      "Sari",
		Comment:   "Tulisan yang sangat membantu.",
		Approved:  true,
		Replies: []content.Reply{{
			ID: "r1", CreatedAt: testTime, Name: "Arif Nugraha", Comment: "Terima kasih!", IsAuthor: true,
		}},
	}}

	rec := ta.get("/api/comments?postId=post-napas")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Comments []content.Comment `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "c1", resp.Comments[0].ID)
	require.Len(t, resp.Comments[0].Replies, 1)
	assert.True(t, resp.Comments[0].Replies[0].IsAuthor)
	assert.NotContains(t, rec.Body.String(), "email")
}

func TestListCommentsStoreFailure(t *testing.T) {
	ta := newTestApp(t)
	ta.comments.listErr = errors.New("connection refused")

	rec := ta.get("/api/comments?postId=post-napas")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch comments"}`, rec.Body.String())
}

func formRequest(slug string, values url.Values, cookies ...*http.Cookie) *http.Request {
	values.Set("_csrf", "form-token")
	req := httptest.NewRequest(http.MethodPost, "/blog/"+slug+"/comments/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: "form-token"})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", sessionName)
	return nil
}

func TestCommentFormSuccessFlashes(t *testing.T) {
	ta := newTestApp(t)
	slug := "belajar-bernapas-pelan"

	rec := ta.do(formRequest(slug, url.Values{
		"name":    {"Sari"},
		"email":   {"sari@example.com"},
		"comment": {"Tulisan yang sangat membantu."},
		"postId":  {"post-napas"},
	}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/"+slug+"/#comments", rec.Header().Get("Location"))
	require.Equal(t, 1, ta.comments.createCalls())

	req := httptest.NewRequest(http.MethodGet, "/blog/"+slug+"/", nil)
	req.AddCookie(sessionCookie(t, rec))
	page := ta.do(req)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "sedang menunggu persetujuan")
}

func TestCommentFormValidationFlashes(t *testing.T) {
	ta := newTestApp(t)
	slug := "belajar-bernapas-pelan"

	rec := ta.do(formRequest(slug, url.Values{
		"name":    {"Sari"},
		"email":   {"bukan-email"},
		"comment": {"Tulisan yang sangat membantu."},
		"postId":  {"post-napas"},
	}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Zero(t, ta.comments.createCalls())

	req := httptest.NewRequest(http.MethodGet, "/blog/"+slug+"/", nil)
	req.AddCookie(sessionCookie(t, rec))
	page := ta.do(req)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Invalid email format")
}

func TestCommentFormRequiresCSRFToken(t *testing.T) {
	ta := newTestApp(t)
	values := url.Values{"name": {"Sari"}}
	req := httptest.NewRequest(http.MethodPost, "/blog/belajar-bernapas-pelan/comments/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := ta.do(req)
	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
	assert.Zero(t, ta.comments.createCalls())
}

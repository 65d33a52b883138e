package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentDraftDocument(t *testing.T) {
	draft := CommentDraft{
		PostID:        " post-1 ",
		Name:          "  Rina ",
		Email:         " Rina@Example.COM ",
		Website:       "   ",
		Comment:       "  A thoughtful comment.  ",
		SourceAddress: "203.0.113.7",
	}

	doc := draft.Document()

	assert.Equal(t, DocumentTypeComment, doc.Type)
	assert.Equal(t, "Rina", doc.Name)
	assert.Equal(t, "rina@example.com", doc.Email)
	assert.Equal(t, "", doc.Website)
	assert.Equal(t, "A thoughtful comment.", doc.Comment)
	assert.Equal(t, Reference{Type: "reference", Ref: "post-1"}, doc.Post)
	assert.Nil(t, doc.ParentComment)
	assert.False(t, doc.Approved)
	assert.False(t, doc.Spam)
	assert.Equal(t, "203.0.113.7", doc.IPAddress)
	assert.Equal(t, Unknown, doc.UserAgent)
}

func TestCommentDraftDocumentWithParent(t *testing.T) {
	doc := CommentDraft{PostID: "p", ParentID: "c-1", Name: "n", Email: "e@x.io", Comment: "0123456789"}.Document()
	require.NotNil(t, doc.ParentComment)
	assert.Equal(t, "c-1", doc.ParentComment.Ref)
}

func TestCommentDocumentOmitsEmptyWebsite(t *testing.T) {
	doc := CommentDraft{PostID: "p", Name: "n", Email: "e@x.io", Website: " ", Comment: "0123456789"}.Document()

	b, err := json.Marshal(doc)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	_, ok := fields["website"]
	assert.False(t, ok, "website must be omitted, got %s", b)
	_, ok = fields["parentComment"]
	assert.False(t, ok)
	assert.Equal(t, false, fields["approved"])
	assert.Equal(t, false, fields["spam"])
}

func TestPostHelpers(t *testing.T) {
	p := Post{Slug: "hello", Category: &Category{Slug: "life"}}
	assert.Equal(t, "/blog/hello/", p.Link())
	assert.True(t, p.InCategory("life"))
	assert.False(t, p.InCategory("work"))
	assert.False(t, Post{}.InCategory("life"))
}

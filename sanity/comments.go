package sanity

import (
	"context"
	"fmt"

	"github.com/eringen/mindjourney/content"
)

// commentsQuery selects the visible top-level comments of a post, newest
// first. Replies are filtered on approval only.
const commentsQuery = `*[_type == "comment" && post._ref == $postId && !defined(parentComment) && approved == true && spam != true] | order(_createdAt desc) {
  _id,
  _createdAt,
  name,
  website,
  comment,
  approved,
  "replies": *[_type == "comment" && parentComment._ref == ^._id && approved == true] {
    _id,
    _createdAt,
    name,
    comment,
    "isAuthor": post->author->name == name
  }
}`

// CommentGateway implements content.CommentStore against a dataset.
type CommentGateway struct {
	client *Client
}

// NewCommentGateway returns a gateway using client. The client must carry a
// write token for CreateComment to succeed.
func NewCommentGateway(client *Client) *CommentGateway {
	return &CommentGateway{client: client}
}

var _ content.CommentStore = (*CommentGateway)(nil)

// ApprovedComments returns the visible comments of postID with their replies.
func (g *CommentGateway) ApprovedComments(ctx context.Context, postID string) ([]content.Comment, error) {
	var comments []content.Comment
	if err := g.client.Query(ctx, commentsQuery, map[string]any{"postId": postID}, &comments); err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	if comments == nil {
		comments = []content.Comment{}
	}
	for i := range comments {
		if comments[i].Replies == nil {
			comments[i].Replies = []content.Reply{}
		}
	}
	return comments, nil
}

// CreateComment writes draft as an unapproved comment document.
func (g *CommentGateway) CreateComment(ctx context.Context, draft content.CommentDraft) (content.CommentDocument, error) {
	doc := draft.Document()

	var created content.CommentDocument
	if err := g.client.Create(ctx, createPayload(doc), &created); err != nil {
		return content.CommentDocument{}, fmt.Errorf("create comment: %w", err)
	}
	return created, nil
}

// createPayload leaves out the store-assigned fields and every optional
// field that is empty.
func createPayload(doc content.CommentDocument) map[string]any {
	payload := map[string]any{
		"_type":     doc.Type,
		"name":      doc.Name,
		"email":     doc.Email,
		"comment":   doc.Comment,
		"post":      doc.Post,
		"approved":  doc.Approved,
		"spam":      doc.Spam,
		"ipAddress": doc.IPAddress,
		"userAgent": doc.UserAgent,
	}
	if doc.Website != "" {
		payload["website"] = doc.Website
	}
	if doc.ParentComment != nil {
		payload["parentComment"] = *doc.ParentComment
	}
	return payload
}

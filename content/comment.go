package content

import (
	"strings"
	"time"
)

// DocumentTypeComment is the store document type of comments.
const DocumentTypeComment = "comment"

// Unknown is recorded for provenance fields the request did not carry.
const Unknown = "unknown"

// Comment is the public projection of an approved top-level comment.
// Email and provenance never appear here.
type Comment struct {
	ID        string    `json:"_id"`
	CreatedAt time.Time `json:"_createdAt"`
	Name      string    `json:"name"`
	Website   string    `json:"website,omitempty"`
	Comment   string    `json:"comment"`
	Approved  bool      `json:"approved"`
	Replies   []Reply   `json:"replies"`
}

// Reply is an approved comment nested under its parent.
type Reply struct {
	ID        string    `json:"_id"`
	CreatedAt time.Time `json:"_createdAt"`
	Name      string    `json:"name"`
	Comment   string    `json:"comment"`
	IsAuthor  bool      `json:"isAuthor"`
}

// Reference points at another document by id.
type Reference struct {
	Type string `json:"_type"`
	Ref  string `json:"_ref"`
}

// NewReference returns a reference to the document id.
func NewReference(id string) Reference {
	return Reference{Type: "reference", Ref: id}
}

// CommentDocument is a comment as persisted in the store.
type CommentDocument struct {
	ID            string     `json:"_id"`
	Type          string     `json:"_type"`
	CreatedAt     time.Time  `json:"_createdAt"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Website       string     `json:"website,omitempty"`
	Comment       string     `json:"comment"`
	Post          Reference  `json:"post"`
	ParentComment *Reference `json:"parentComment,omitempty"`
	Approved      bool       `json:"approved"`
	Spam          bool       `json:"spam"`
	IPAddress     string     `json:"ipAddress"`
	UserAgent     string     `json:"userAgent"`
}

// CommentDraft is a validated submission waiting to be written.
type CommentDraft struct {
	PostID        string
	ParentID      string
	Name          string
	Email         string
	Website       string
	Comment       string
	SourceAddress string
	ClientAgent   string
}

// Normalized returns a copy with the stored representation of each field:
// trimmed values, lower-cased email and "unknown" for missing provenance.
func (d CommentDraft) Normalized() CommentDraft {
	d.PostID = strings.TrimSpace(d.PostID)
	d.ParentID = strings.TrimSpace(d.ParentID)
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Website = strings.TrimSpace(d.Website)
	d.Comment = strings.TrimSpace(d.Comment)
	if strings.TrimSpace(d.SourceAddress) == "" {
		d.SourceAddress = Unknown
	}
	if strings.TrimSpace(d.ClientAgent) == "" {
		d.ClientAgent = Unknown
	}
	return d
}

// Document builds the unapproved, non-spam document for the draft.
// Id and creation time are left for the store to assign.
func (d CommentDraft) Document() CommentDocument {
	d = d.Normalized()
	doc := CommentDocument{
		Type:      DocumentTypeComment,
		Name:      d.Name,
		Email:     d.Email,
		Website:   d.Website,
		Comment:   d.Comment,
		Post:      NewReference(d.PostID),
		Approved:  false,
		Spam:      false,
		IPAddress: d.SourceAddress,
		UserAgent: d.ClientAgent,
	}
	if d.ParentID != "" {
		ref := NewReference(d.ParentID)
		doc.ParentComment = &ref
	}
	return doc
}

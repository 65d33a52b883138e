package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/mindjourney/content"
)

// ApprovedComments returns the approved, non-spam top-level comments of
// postID newest first. Replies are attached in insertion order and are
// filtered on approval only.
func (s *Store) ApprovedComments(ctx context.Context, postID string) (comments []content.Comment, err error) {
	start := time.Now()
	defer func() { s.observe("approved_comments", start, err) }()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, name, website, comment
		FROM comments
		WHERE post_id = ? AND parent_id IS NULL AND approved = 1 AND spam = 0
		ORDER BY created_at DESC, rowid DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments = []content.Comment{}
	index := make(map[string]int)
	for rows.Next() {
		var c content.Comment
		var createdAt string
		if err := rows.Scan(&c.ID, &createdAt, &c.Name, &c.Website, &c.Comment); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = parseTime(createdAt)
		c.Approved = true
		c.Replies = []content.Reply{}
		index[c.ID] = len(comments)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	if len(comments) == 0 {
		return comments, nil
	}

	if err := s.attachReplies(ctx, comments, index); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *Store) attachReplies(ctx context.Context, comments []content.Comment, index map[string]int) error {
	args := make([]any, 0, len(comments))
	for _, c := range comments {
		args = append(args, c.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.parent_id, r.created_at, r.name, r.comment,
			CASE WHEN a.name IS NOT NULL AND a.name = r.name THEN 1 ELSE 0 END
		FROM comments r
		JOIN posts p ON p.id = r.post_id
		LEFT JOIN authors a ON a.id = p.author_id
		WHERE r.parent_id IN (`+placeholders(len(args))+`) AND r.approved = 1
		ORDER BY r.rowid`, args...)
	if err != nil {
		return fmt.Errorf("query replies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r content.Reply
		var parentID, createdAt string
		var isAuthor int
		if err := rows.Scan(&r.ID, &parentID, &createdAt, &r.Name, &r.Comment, &isAuthor); err != nil {
			return fmt.Errorf("scan reply: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		r.IsAuthor = isAuthor == 1
		i := index[parentID]
		comments[i].Replies = append(comments[i].Replies, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate replies: %w", err)
	}
	return nil
}

// CreateComment stores draft as a new unapproved, non-spam comment.
// Each call creates a distinct document.
func (s *Store) CreateComment(ctx context.Context, draft content.CommentDraft) (doc content.CommentDocument, err error) {
	start := time.Now()
	defer func() { s.observe("create_comment", start, err) }()

	doc = draft.Document()
	doc.ID = uuid.NewString()
	doc.CreatedAt = s.now().UTC().Truncate(time.Microsecond)

	var parentID any
	if doc.ParentComment != nil {
		parentID = doc.ParentComment.Ref
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO comments (id, post_id, parent_id, name, email, website, comment,
			approved, spam, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Post.Ref, parentID, doc.Name, doc.Email, doc.Website, doc.Comment,
		boolInt(doc.Approved), boolInt(doc.Spam), doc.IPAddress, doc.UserAgent, formatTime(doc.CreatedAt))
	if err != nil {
		return content.CommentDocument{}, fmt.Errorf("create comment: %w", err)
	}
	return doc, nil
}

// Moderate sets the moderation flags of a comment. Moderation belongs to
// an external tool; this exists for seeding and tests.
func (s *Store) Moderate(ctx context.Context, id string, approved, spam bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE comments SET approved = ?, spam = ? WHERE id = ?`,
		boolInt(approved), boolInt(spam), id)
	if err != nil {
		return fmt.Errorf("moderate comment %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return content.ErrNotFound
	}
	return nil
}

// GetComment returns the stored document of a comment regardless of its
// moderation state.
func (s *Store) GetComment(ctx context.Context, id string) (content.CommentDocument, error) {
	var (
		doc               content.CommentDocument
		postID, createdAt string
		parentID          *string
		approved, spam    int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, post_id, parent_id, name, email, website, comment,
			approved, spam, ip_address, user_agent, created_at
		FROM comments WHERE id = ?`, id).
		Scan(&doc.ID, &postID, &parentID, &doc.Name, &doc.Email, &doc.Website, &doc.Comment,
			&approved, &spam, &doc.IPAddress, &doc.UserAgent, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.CommentDocument{}, content.ErrNotFound
		}
		return content.CommentDocument{}, fmt.Errorf("get comment %s: %w", id, err)
	}
	doc.Type = content.DocumentTypeComment
	doc.Post = content.NewReference(postID)
	if parentID != nil {
		ref := content.NewReference(*parentID)
		doc.ParentComment = &ref
	}
	doc.Approved = approved == 1
	doc.Spam = spam == 1
	doc.CreatedAt = parseTime(createdAt)
	return doc, nil
}

package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eringen/mindjourney/content"
	"github.com/eringen/mindjourney/portabletext"
)

const postColumns = `p.id, p.slug, p.title, p.excerpt, p.main_image, p.main_image_alt,
	p.published_at, p.read_time, p.featured, p.premium, p.tags,
	c.id, c.title, c.slug, c.color, c.icon,
	a.name, a.slug, a.image, a.short_bio, a.job_title`

const postJoins = `FROM posts p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN authors a ON a.id = p.author_id`

const relatedLimit = 3

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner, extra ...any) (content.Post, error) {
	var (
		p                                 content.Post
		publishedAt, tags                 string
		featured, premium                 int
		catID, catTitle, catSlug          sql.NullString
		catColor, catIcon                 sql.NullString
		authorName, authorSlug, authorImg sql.NullString
		authorBio, authorJob              sql.NullString
	)
	dest := []any{
		&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.MainImage.AssetRef, &p.MainImage.Alt,
		&publishedAt, &p.ReadTime, &featured, &premium, &tags,
		&catID, &catTitle, &catSlug, &catColor, &catIcon,
		&authorName, &authorSlug, &authorImg, &authorBio, &authorJob,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return content.Post{}, err
	}

	p.PublishedAt = parseTime(publishedAt)
	p.Featured = featured == 1
	p.Premium = premium == 1
	p.Tags = ParseTags(tags)
	if catID.Valid {
		p.Category = &content.Category{
			ID:    catID.String,
			Title: catTitle.String,
			Slug:  catSlug.String,
			Color: catColor.String,
			Icon:  catIcon.String,
		}
	}
	if authorName.Valid {
		p.Author = &content.Author{
			Name:     authorName.String,
			Slug:     authorSlug.String,
			Image:    content.Image{AssetRef: authorImg.String, Alt: authorName.String},
			ShortBio: authorBio.String,
			JobTitle: authorJob.String,
		}
	}
	return p, nil
}

// ListPosts returns every post ordered by publishedAt descending, without bodies.
func (s *Store) ListPosts(ctx context.Context) (posts []content.Post, err error) {
	start := time.Now()
	defer func() { s.observe("list_posts", start, err) }()

	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` `+postJoins+` ORDER BY p.published_at DESC, p.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPost returns the post with slug including its body and up to three
// newer-first posts of the same category.
func (s *Store) GetPost(ctx context.Context, slug string) (post content.Post, err error) {
	start := time.Now()
	defer func() { s.observe("get_post", start, err) }()

	var body string
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+`, p.body `+postJoins+` WHERE p.slug = ?`, slug)
	post, err = scanPost(row, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Post{}, content.ErrNotFound
	}
	if err != nil {
		return content.Post{}, fmt.Errorf("query post %q: %w", slug, err)
	}

	if err := json.Unmarshal([]byte(body), &post.Body); err != nil {
		return content.Post{}, fmt.Errorf("decode body of %q: %w", slug, err)
	}
	if post.ReadTime == 0 {
		post.ReadTime = portabletext.ReadTime(post.Body)
	}

	if post.Category == nil {
		return post, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` `+postJoins+`
		WHERE p.category_id = ? AND p.slug != ?
		ORDER BY p.published_at DESC, p.rowid DESC LIMIT ?`, post.Category.ID, slug, relatedLimit)
	if err != nil {
		return content.Post{}, fmt.Errorf("query related posts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return content.Post{}, fmt.Errorf("scan related post: %w", err)
		}
		post.Related = append(post.Related, p)
	}
	return post, rows.Err()
}

// ListCategories returns categories ordered by featured desc, title asc.
func (s *Store) ListCategories(ctx context.Context) (cats []content.Category, err error) {
	start := time.Now()
	defer func() { s.observe("list_categories", start, err) }()

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.slug, c.color, c.icon, c.featured,
			(SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id)
		FROM categories c
		ORDER BY c.featured DESC, c.title ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c content.Category
		var featured int
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.Color, &c.Icon, &featured, &c.PostCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Featured = featured == 1
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// SaveAuthor inserts or replaces an author. The author's slug is its id.
func (s *Store) SaveAuthor(ctx context.Context, a content.Author) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authors (id, name, slug, image, short_bio, job_title)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			image = excluded.image,
			short_bio = excluded.short_bio,
			job_title = excluded.job_title`,
		a.Slug, a.Name, a.Slug, a.Image.AssetRef, a.ShortBio, a.JobTitle)
	if err != nil {
		return fmt.Errorf("save author %q: %w", a.Slug, err)
	}
	return nil
}

// SaveCategory inserts or replaces a category.
func (s *Store) SaveCategory(ctx context.Context, c content.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, title, slug, color, icon, featured)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			slug = excluded.slug,
			color = excluded.color,
			icon = excluded.icon,
			featured = excluded.featured`,
		c.ID, c.Title, c.Slug, c.Color, c.Icon, boolInt(c.Featured))
	if err != nil {
		return fmt.Errorf("save category %q: %w", c.Slug, err)
	}
	return nil
}

// SavePost inserts or replaces a post. Category and Author are linked by
// Category.ID and Author.Slug.
func (s *Store) SavePost(ctx context.Context, p content.Post) error {
	body, err := json.Marshal(p.Body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	if p.Body == nil {
		body = []byte("[]")
	}
	if p.ReadTime == 0 {
		p.ReadTime = portabletext.ReadTime(p.Body)
	}
	var categoryID, authorID sql.NullString
	if p.Category != nil {
		categoryID = sql.NullString{String: p.Category.ID, Valid: true}
	}
	if p.Author != nil {
		authorID = sql.NullString{String: p.Author.Slug, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO posts (id, slug, title, excerpt, main_image, main_image_alt, body,
			category_id, author_id, published_at, read_time, featured, premium, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			excerpt = excluded.excerpt,
			main_image = excluded.main_image,
			main_image_alt = excluded.main_image_alt,
			body = excluded.body,
			category_id = excluded.category_id,
			author_id = excluded.author_id,
			published_at = excluded.published_at,
			read_time = excluded.read_time,
			featured = excluded.featured,
			premium = excluded.premium,
			tags = excluded.tags`,
		p.ID, p.Slug, p.Title, p.Excerpt, p.MainImage.AssetRef, p.MainImage.Alt, string(body),
		categoryID, authorID, formatTime(p.PublishedAt), p.ReadTime,
		boolInt(p.Featured), boolInt(p.Premium), FormatTags(p.Tags))
	if err != nil {
		return fmt.Errorf("save post %q: %w", p.Slug, err)
	}
	return nil
}

// ParseTags splits the stored ",a,b," form into trimmed tags.
func ParseTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// FormatTags is the inverse of ParseTags. The surrounding commas let a
// single tag be matched with instr(tags, ',' || ? || ',').
func FormatTags(tags []string) string {
	var kept []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return "," + strings.Join(kept, ",") + ","
}

package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/eringen/mindjourney/content"
	"github.com/eringen/mindjourney/portabletext"
)

func paragraph(key, text string) portabletext.Block {
	return portabletext.Block{
		Type:     "block",
		Key:      key,
		Style:    "normal",
		Children: []portabletext.Span{{Type: "span", Text: text}},
	}
}

func heading(key, text string) portabletext.Block {
	b := paragraph(key, text)
	b.Style = "h2"
	return b
}

// SampleContent is the demo dataset written by Seed.
func SampleContent() ([]content.Author, []content.Category, []content.Post) {
	author := content.Author{
		Name:     "Arif Nugraha",
		Slug:     "arif-nugraha",
		Image:    content.Image{AssetRef: "arif.jpg"},
		ShortBio: "Menulis tentang kesehatan mental, kebiasaan kecil, dan perjalanan batin.",
		JobTitle: "Penulis",
	}
	categories := []content.Category{
		{ID: "cat-mindfulness", Title: "Mindfulness", Slug: "mindfulness", Color: "emerald", Icon: "leaf", Featured: true},
		{ID: "cat-produktivitas", Title: "Produktivitas", Slug: "produktivitas", Color: "amber", Icon: "bolt"},
		{ID: "cat-refleksi", Title: "Refleksi", Slug: "refleksi", Color: "sky", Icon: "moon"},
	}
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 8, 0, 0, 0, time.UTC) }

	posts := []content.Post{
		{
			ID: "post-napas", Slug: "belajar-bernapas", Title: "Belajar Bernapas Lagi",
			Excerpt:   "Latihan napas sederhana untuk hari yang terlalu ramai.",
			MainImage: content.Image{AssetRef: "napas.jpg", Alt: "Danau di pagi hari"},
			Category:  &categories[0], Author: &author, PublishedAt: day(2),
			Featured: true, Tags: []string{"napas", "tenang"},
			Body: []portabletext.Block{
				paragraph("b1", "Setiap pagi aku duduk lima menit dan hanya memperhatikan napas."),
				heading("b2", "Mulai dari yang kecil"),
				paragraph("b3", "Tarik napas empat hitungan, tahan empat, hembuskan empat."),
			},
		},
		{
			ID: "post-fokus", Slug: "fokus-tanpa-paksaan", Title: "Fokus Tanpa Paksaan",
			Excerpt:   "Produktivitas yang lahir dari rasa ingin tahu, bukan rasa takut.",
			MainImage: content.Image{AssetRef: "fokus.jpg", Alt: "Meja kerja rapi"},
			Category:  &categories[1], Author: &author, PublishedAt: day(9),
			Tags: []string{"fokus"},
			Body: []portabletext.Block{
				paragraph("b1", "Daftar tugas yang panjang jarang membuat kita bergerak."),
			},
		},
		{
			ID: "post-jeda", Slug: "seni-mengambil-jeda", Title: "Seni Mengambil Jeda",
			Excerpt:   "Istirahat bukan hadiah, melainkan bagian dari pekerjaan.",
			MainImage: content.Image{AssetRef: "jeda.jpg", Alt: "Cangkir teh"},
			Category:  &categories[0], Author: &author, PublishedAt: day(16),
			Premium: true, Tags: []string{"istirahat", "tenang"},
			Body: []portabletext.Block{
				paragraph("b1", "Jeda memberi ruang bagi pikiran untuk merapikan dirinya sendiri."),
			},
		},
	}
	return []content.Author{author}, categories, posts
}

// Seed writes the sample dataset and a few moderated comments. It is
// idempotent for posts, categories and authors.
func (s *Store) Seed(ctx context.Context) error {
	authors, categories, posts := SampleContent()
	for _, a := range authors {
		if err := s.SaveAuthor(ctx, a); err != nil {
			return err
		}
	}
	for _, c := range categories {
		if err := s.SaveCategory(ctx, c); err != nil {
			return err
		}
	}
	for _, p := range posts {
		if err := s.SavePost(ctx, p); err != nil {
			return err
		}
	}

	existing, err := s.ApprovedComments(ctx, "post-napas")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	top, err := s.CreateComment(ctx, content.CommentDraft{
		PostID:  "post-napas",
		Name:    "Sari",
		Email:   "sari@example.com",
		Comment: "Latihan empat hitungan ini sangat membantu sebelum rapat.",
	})
	if err != nil {
		return err
	}
	reply, err := s.CreateComment(ctx, content.CommentDraft{
		PostID:   "post-napas",
		ParentID: top.ID,
		Name:     authors[0].Name,
		Email:    "arif@example.com",
		Comment:  "Senang mendengarnya, Sari. Terima kasih sudah mencoba!",
	})
	if err != nil {
		return err
	}
	for _, id := range []string{top.ID, reply.ID} {
		if err := s.Moderate(ctx, id, true, false); err != nil {
			return fmt.Errorf("approve seed comment: %w", err)
		}
	}
	return nil
}

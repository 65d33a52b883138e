package mindjourney

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/eringen/mindjourney/content"
)

// emailPattern accepts local@domain.tld with no whitespace or extra "@".
// RE2's \s is ASCII only, so vertical tab, Unicode spaces and the BOM are
// listed explicitly.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

const minCommentLength = 10

// Submission is the comment a visitor sends, through the JSON API or the
// post page form.
type Submission struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Comment string `json:"comment" form:"comment"`
	PostID  string `json:"postId" form:"postId"`
	Website string `json:"website" form:"website"`
}

func (s Submission) trimmed() Submission {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Comment = strings.TrimSpace(s.Comment)
	s.PostID = strings.TrimSpace(s.PostID)
	s.Website = strings.TrimSpace(s.Website)
	return s
}

// Validate checks presence, then email shape, then comment length, and
// reports only the first failing rule.
func (s Submission) Validate() error {
	s = s.trimmed()

	for _, v := range []string{s.Name, s.Email, s.Comment, s.PostID} {
		if validation.Validate(v, validation.Required) != nil {
			return ErrFieldsRequired
		}
	}
	if validation.Validate(s.Email, validation.Match(emailPattern)) != nil {
		return ErrInvalidEmail
	}
	if validation.Validate(s.Comment, validation.RuneLength(minCommentLength, 0)) != nil {
		return ErrCommentTooShort
	}
	return nil
}

// Draft converts a validated submission into a store draft carrying the
// request provenance.
func (s Submission) Draft(sourceAddress, clientAgent string) content.CommentDraft {
	return content.CommentDraft{
		PostID:        s.PostID,
		Name:          s.Name,
		Email:         s.Email,
		Website:       s.Website,
		Comment:       s.Comment,
		SourceAddress: sourceAddress,
		ClientAgent:   clientAgent,
	}.Normalized()
}

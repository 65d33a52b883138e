package mindjourney

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mindjourney/content"
	"github.com/eringen/mindjourney/metrics"
	"github.com/eringen/mindjourney/notify"
)

// Submission outcomes.
const (
	outcomeCreated     = "created"
	outcomeInvalid     = "invalid"
	outcomeRateLimited = "rate_limited"
	outcomeFailed      = "failed"
)

const msgCommentAwaitingApproval = "Terima kasih! Komentarmu telah dikirim dan sedang menunggu persetujuan."

type createResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Comment content.CommentDocument `json:"comment"`
}

type listResponse struct {
	Comments []content.Comment `json:"comments"`
}

// submitComment runs a submission through validation, the rate limit and
// the store. Validation and rate-limit failures are *ValidationError values
// and never reach the store.
func (a *App) submitComment(c echo.Context, sub Submission) (content.CommentDocument, error) {
	if err := sub.Validate(); err != nil {
		metrics.ObserveSubmission(outcomeInvalid)
		return content.CommentDocument{}, err
	}
	ip := c.RealIP()
	if !a.limiter.Check(ip) {
		metrics.ObserveSubmission(outcomeRateLimited)
		return content.CommentDocument{}, ErrRateLimited
	}

	r := c.Request()
	draft := sub.Draft(sourceAddress(r), clientAgent(r))
	doc, err := a.Comments.CreateComment(r.Context(), draft)
	if err != nil {
		metrics.ObserveSubmission(outcomeFailed)
		a.log.Error().Err(err).Str("post_id", draft.PostID).Msg("create comment")
		return content.CommentDocument{}, err
	}
	a.limiter.Record(ip)
	metrics.ObserveSubmission(outcomeCreated)

	if err := a.notifier.PublishComment(r.Context(), notify.NewCommentEvent(doc)); err != nil {
		a.log.Warn().Err(err).Str("comment_id", doc.ID).Msg("publish comment event")
	}
	a.log.Info().Str("comment_id", doc.ID).Str("post_id", doc.Post.Ref).Msg("comment submitted")
	return doc, nil
}

func (a *App) handleCreateComment(c echo.Context) error {
	var sub Submission
	if err := json.NewDecoder(c.Request().Body).Decode(&sub); err != nil {
		metrics.ObserveSubmission(outcomeInvalid)
		return c.JSON(ErrInvalidBody.Status(), errorResponse{Error: ErrInvalidBody.Message})
	}

	doc, err := a.submitComment(c, sub)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return c.JSON(ve.Status(), errorResponse{Error: ve.Message})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   msgCreateFailed,
			Details: err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, createResponse{
		Success: true,
		Message: "Comment submitted successfully",
		Comment: doc,
	})
}

func (a *App) handleListComments(c echo.Context) error {
	postID := strings.TrimSpace(c.QueryParam("postId"))
	if postID == "" {
		return c.JSON(ErrPostIDRequired.Status(), errorResponse{Error: ErrPostIDRequired.Message})
	}

	comments, err := a.Comments.ApprovedComments(c.Request().Context(), postID)
	if err != nil {
		metrics.CommentFetches.WithLabelValues("error").Inc()
		a.log.Error().Err(err).Str("post_id", postID).Msg("fetch comments")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgFetchFailed})
	}
	metrics.CommentFetches.WithLabelValues("ok").Inc()

	if comments == nil {
		comments = []content.Comment{}
	}
	return c.JSON(http.StatusOK, listResponse{Comments: comments})
}

// handleCommentForm is the no-JavaScript path: the outcome is flashed and the
// visitor is sent back to the comment section.
func (a *App) handleCommentForm(c echo.Context) error {
	target := "/blog/" + url.PathEscape(c.Param("slug")) + "/#comments"

	var sub Submission
	if err := c.Bind(&sub); err != nil {
		metrics.ObserveSubmission(outcomeInvalid)
		return a.flashRedirect(c, flashCommentError, ErrInvalidBody.Message, target)
	}

	if _, err := a.submitComment(c, sub); err != nil {
		msg := msgCreateFailed
		var ve *ValidationError
		if errors.As(err, &ve) {
			msg = ve.Message
		}
		return a.flashRedirect(c, flashCommentError, msg, target)
	}
	return a.flashRedirect(c, flashCommentSuccess, msgCommentAwaitingApproval, target)
}

func (a *App) flashRedirect(c echo.Context, key, msg, target string) error {
	if err := addFlash(c, key, msg); err != nil {
		a.log.Warn().Err(err).Msg("save comment flash")
	}
	return c.Redirect(http.StatusSeeOther, target)
}

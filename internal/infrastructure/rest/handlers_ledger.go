package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"ArticleGate/internal/domain"
)

func (h *handlers) listReadingStates(c echo.Context) error {
	states, err := h.ledger.ListReadingStates(c.Request().Context(), principalFrom(c).UserID)
	if err != nil {
		return err
	}
	out := make([]readingStateResponse, len(states))
	for i, rs := range states {
		out[i] = toReadingStateResponse(rs)
	}
	return c.JSON(http.StatusOK, out)
}

// createReadingState opens an article for reading. An existing record is
// returned unchanged with 200; a new one requires access to the article.
func (h *handlers) createReadingState(c echo.Context) error {
	var req readingStateCreateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	principal := principalFrom(c)
	existing, err := h.ledger.GetReadingState(ctx, principal.UserID, req.Article)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, toReadingStateResponse(existing))
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	if _, err := h.catalog.Get(ctx, principal, req.Article); err != nil {
		return err
	}

	rs, created, err := h.ledger.GetOrCreateReadingState(ctx, principal.UserID, req.Article, toReadingUpdate(req.Status, req.PageLeftOff))
	if err != nil {
		return err
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, toReadingStateResponse(rs))
}

func (h *handlers) getReadingState(c echo.Context) error {
	articleID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	rs, err := h.ledger.GetReadingState(c.Request().Context(), principalFrom(c).UserID, articleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReadingStateResponse(rs))
}

func (h *handlers) updateReadingState(c echo.Context) error {
	articleID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req readingStateUpdateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	rs, err := h.ledger.UpdateReadingState(c.Request().Context(), principalFrom(c).UserID, articleID, toReadingUpdate(req.Status, req.PageLeftOff))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReadingStateResponse(rs))
}

func (h *handlers) deleteReadingState(c echo.Context) error {
	articleID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.ledger.DeleteReadingState(c.Request().Context(), principalFrom(c).UserID, articleID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) listReviews(c echo.Context) error {
	reviews, err := h.ledger.ListReviews(c.Request().Context(), principalFrom(c).UserID)
	if err != nil {
		return err
	}
	out := make([]reviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = toReviewResponse(r)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) submitReview(c echo.Context) error {
	var req reviewRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	review, err := h.ledger.SubmitReview(c.Request().Context(), principalFrom(c).UserID, req.Article, *req.Score)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReviewResponse(review))
}

func (h *handlers) getReview(c echo.Context) error {
	articleID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	review, err := h.ledger.GetReview(c.Request().Context(), principalFrom(c).UserID, articleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReviewResponse(review))
}

func (h *handlers) deleteReview(c echo.Context) error {
	articleID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.ledger.DeleteReview(c.Request().Context(), principalFrom(c).UserID, articleID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

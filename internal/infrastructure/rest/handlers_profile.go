package rest

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"ArticleGate/internal/domain"
)

// register provisions the caller's profile and initial interests atomically.
// Repeating it is harmless: the profile is kept and interests are replaced.
func (h *handlers) register(c echo.Context) error {
	var req registerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	principal := principalFrom(c)
	username := req.Username
	if username == "" {
		username = principal.Username
	}

	view, err := h.progress.Register(ctx, principal.UserID, username, req.ScientificDomains)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProfileResponse(view))
}

func (h *handlers) getProfile(c echo.Context) error {
	view, err := h.progress.Profile(c.Request().Context(), principalFrom(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(view))
}

func (h *handlers) updateProfile(c echo.Context) error {
	var req profileUpdateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := principalFrom(c).UserID
	if _, err := h.progress.SetInterests(ctx, userID, req.ScientificDomains); err != nil {
		return err
	}
	view, err := h.progress.Profile(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(view))
}

// deleteProgress deactivates a domain; ?hard=true purges the record instead.
func (h *handlers) deleteProgress(c echo.Context) error {
	domainID, err := pathID(c, "domainId")
	if err != nil {
		return err
	}

	hard := false
	if raw := c.QueryParam("hard"); raw != "" {
		hard, err = strconv.ParseBool(raw)
		if err != nil {
			return domain.Validationf("hard must be a boolean")
		}
	}

	ctx := c.Request().Context()
	userID := principalFrom(c).UserID
	if hard {
		err = h.progress.Purge(ctx, userID, domainID)
	} else {
		err = h.progress.Deactivate(ctx, userID, domainID)
	}
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

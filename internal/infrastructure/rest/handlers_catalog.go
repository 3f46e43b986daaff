package rest

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"ArticleGate/internal/domain"
)

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validationf("%s must be a positive integer", name)
	}
	return id, nil
}

// bindValid decodes the body and runs struct validation.
func bindValid(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return domain.Validationf("malformed request body")
	}
	return c.Validate(dst)
}

func (h *handlers) listDomains(c echo.Context) error {
	domains, err := h.domains.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]domainResponse, len(domains))
	for i, d := range domains {
		out[i] = toDomainResponse(d)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) getDomain(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.domains.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDomainResponse(d))
}

func (h *handlers) createDomain(c echo.Context) error {
	var req domainRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	d, err := h.domains.Create(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toDomainResponse(d))
}

func (h *handlers) renameDomain(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req domainRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	d, err := h.domains.Rename(c.Request().Context(), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDomainResponse(d))
}

func (h *handlers) deleteDomain(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.domains.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) listArticles(c echo.Context) error {
	views, err := h.catalog.Browse(c.Request().Context(), principalFrom(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArticleResponses(views))
}

func (h *handlers) listStoreArticles(c echo.Context) error {
	views, err := h.catalog.Upcoming(c.Request().Context(), principalFrom(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArticleResponses(views))
}

func (h *handlers) getArticle(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.catalog.Get(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArticleResponse(view, true))
}

func (h *handlers) createArticle(c echo.Context) error {
	var req articleRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	view, err := h.catalog.Create(c.Request().Context(), principalFrom(c), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toArticleResponse(view, true))
}

func (h *handlers) updateArticle(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req articleRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	view, err := h.catalog.Update(c.Request().Context(), principalFrom(c), id, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArticleResponse(view, true))
}

func (h *handlers) deleteArticle(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.Delete(c.Request().Context(), principalFrom(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"ArticleGate/internal/domain"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps an error kind onto an HTTP status. Permission failures of
// anonymous callers become 401.
func statusFor(kind domain.ErrorKind, authenticated bool) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindPermission:
		if !authenticated {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders every failure as {"error": {"code", "message"}}.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   errorBody
			he     *echo.HTTPError
			de     *domain.Error
		)
		switch {
		case errors.As(err, &de):
			status = statusFor(de.Kind, principalFrom(c).Authenticated())
			body.Error = errorDetail{Code: string(de.Kind), Message: de.Message}
			if status == http.StatusUnauthorized {
				body.Error.Message = "authentication required"
			}
		case errors.As(err, &he):
			status = he.Code
			body.Error = errorDetail{Code: httpErrorCode(status), Message: http.StatusText(status)}
			if msg, ok := he.Message.(string); ok && status < http.StatusInternalServerError {
				body.Error.Message = msg
			}
		default:
			status = http.StatusInternalServerError
		}

		if status >= http.StatusInternalServerError {
			body.Error = errorDetail{Code: string(domain.KindStorage), Message: "internal error"}
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Warn("write error response", "error", err)
		}
	}
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return string(domain.KindValidation)
	case http.StatusUnauthorized, http.StatusForbidden:
		return string(domain.KindPermission)
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return string(domain.KindNotFound)
	default:
		return "HTTP_ERROR"
	}
}

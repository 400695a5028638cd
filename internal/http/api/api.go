package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/signage"
)

type APIError struct {
	Code    int
	Message string
	// RetryAfter, in seconds, is sent as a Retry-After header when set.
	RetryAfter int
}

func (e *APIError) Error() string { return e.Message }

type HandlerFunc func(ctx *gin.Context) (any, *APIError)

// ResolveEndpoint adapts a HandlerFunc to gin. Handlers that already wrote a
// response (for example a 304) return nil, nil.
func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			if apiErr.RetryAfter > 0 {
				ctx.Header("Retry-After", strconv.Itoa(apiErr.RetryAfter))
			}
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		if ctx.IsAborted() || ctx.Writer.Written() {
			return
		}
		if result == nil {
			ctx.Status(http.StatusNoContent)
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}

// FromError maps engine errors onto HTTP responses and logs what reaches
// the boundary.
func FromError(ctx *gin.Context, op string, err error) *APIError {
	var ve *signage.ValidationError
	var se *signage.StoreError

	switch {
	case errors.As(err, &ve):
		return &APIError{Code: http.StatusBadRequest, Message: ve.Error()}
	case errors.Is(err, signage.ErrNotFound):
		return &APIError{Code: http.StatusNotFound, Message: "not found"}
	case errors.Is(err, signage.ErrForbidden):
		return &APIError{Code: http.StatusForbidden, Message: "forbidden"}
	case errors.Is(err, signage.ErrBatchInFlight):
		return &APIError{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, signage.ErrExportDisabled):
		return &APIError{Code: http.StatusNotImplemented, Message: err.Error()}
	case errors.As(err, &se) && se.Retryable:
		log.Warn().Err(err).Str("op", op).Str("path", ctx.FullPath()).Msg("transient store failure")
		return &APIError{Code: http.StatusServiceUnavailable, Message: "temporarily unavailable", RetryAfter: 1}
	case errors.As(err, &se) && se.Rejected:
		log.Warn().Err(err).Str("op", op).Str("path", ctx.FullPath()).Msg("write rejected by store constraint")
		return &APIError{Code: http.StatusUnprocessableEntity, Message: "rejected by store constraints"}
	}

	log.Error().Err(err).Str("op", op).Str("path", ctx.FullPath()).Msg("request failed")
	return &APIError{Code: http.StatusInternalServerError, Message: "internal error"}
}

// ParamID reads a positive integer path parameter.
func ParamID(ctx *gin.Context, name string) (int, *APIError) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		log.Debug().Str(name, ctx.Param(name)).Msg("invalid path id")
		return 0, &APIError{Code: http.StatusBadRequest, Message: "invalid " + name}
	}
	return id, nil
}

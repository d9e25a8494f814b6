package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent writes a 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes a 200 with items plus paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody{Error: message})
}

// Error maps a domain error to its HTTP status. Non-domain errors become an
// opaque 500 so storage details never reach the client.
func Error(c *gin.Context, err error) {
	kind := shared.KindOf(err)
	status, message := statusFor(kind, err)
	c.JSON(status, errorBody{Error: message, Kind: string(kind)})
}

func statusFor(kind shared.ErrorKind, err error) (int, string) {
	switch kind {
	case shared.KindValidation, shared.KindInvalidFormat:
		return http.StatusBadRequest, err.Error()
	case shared.KindNotFound, shared.KindUnknownAssignee:
		return http.StatusNotFound, err.Error()
	case shared.KindInvalidTransition,
		shared.KindDuplicateActiveQuotation,
		shared.KindExpired,
		shared.KindAlreadyPaid,
		shared.KindAlreadyIssued,
		shared.KindNotEligible,
		shared.KindNotDeletable,
		shared.KindConflict:
		return http.StatusConflict, err.Error()
	case shared.KindForbidden:
		return http.StatusForbidden, err.Error()
	case shared.KindUnauthorized:
		return http.StatusUnauthorized, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

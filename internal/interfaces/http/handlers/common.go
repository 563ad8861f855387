// Package handlers implements the REST endpoints of the discovery compliance
// engine.  Handlers bind and validate transport concerns only; all domain
// rules live in the services they call.
package handlers

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/interfaces/http/middleware"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError translates an error into the HTTP response mandated by its
// error code.  Non-AppError failures are masked as internal errors.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *errors.AppError
	if goerrors.As(err, &appErr) {
		c.JSON(appErr.Code.HTTPStatus(), ErrorResponse{
			Code:    appErr.Code.String(),
			Message: appErr.Message,
			Detail:  appErr.Detail,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    errors.CodeInternal.String(),
		Message: "internal server error",
	})
}

// respondInvalid reports a request-binding failure.
func respondInvalid(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    errors.CodeInvalidParam.String(),
		Message: message,
	})
}

func ownerID(c *gin.Context) common.UserID {
	return middleware.OwnerID(c)
}

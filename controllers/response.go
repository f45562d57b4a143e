package controllers

import (
	"errors"
	"net/http"

	"farmconnect/middleware"
	"farmconnect/models"
	"farmconnect/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs), errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, models.ErrNetwork):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes the error envelope with the status matching err's kind.
// Unclassified errors are logged and reported without detail.
func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Str("path", c.FullPath()).Msg(message)
		c.JSON(status, models.ErrorResponse{Success: false, Message: message})
		return
	}
	c.JSON(status, models.ErrorResponse{Success: false, Message: message, Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Message: "Invalid request",
		Error:   err.Error(),
	})
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.Response{Success: true, Message: message, Data: data})
}

func claims(c *gin.Context) *utils.Claims {
	return middleware.Claims(c)
}

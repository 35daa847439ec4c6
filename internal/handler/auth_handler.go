package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Login validates the admin password and returns a session token for
// the query surface.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Password required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if err := h.auth.CheckPassword(req.Password); err != nil {
		logrus.Warnf("Failed login attempt from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid password",
			Code:    http.StatusUnauthorized,
		})
		return
	}

	token, expiresIn, err := h.auth.IssueToken()
	if err != nil {
		logrus.Errorf("Failed to issue session token: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to issue token",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

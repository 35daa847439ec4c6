package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mail-webhook-relay/internal/model"
	"mail-webhook-relay/internal/store"
)

func emailResponse(email *model.ForwardedEmail) EmailResponse {
	resp := EmailResponse{
		ID:          email.ID,
		RuleID:      email.RuleID,
		FromAddr:    email.FromAddr,
		ToAddr:      email.ToAddr,
		Subject:     email.Subject,
		Body:        email.Body,
		HTMLBody:    email.HTMLBody,
		ForwardedTo: email.ForwardedTo,
		CreatedAt:   email.CreatedAt,
		ExpiresAt:   email.ExpiresAt,
	}
	if email.MessageID != nil {
		resp.MessageID = *email.MessageID
	}
	return resp
}

// GetEmails returns active retained emails, newest first, paginated.
func (h *Handlers) GetEmails(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	emails, err := h.store.ListActiveEmails(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch emails",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	total, err := h.store.CountActiveEmails()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to count emails",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	responses := make([]EmailResponse, 0, len(emails))
	for i := range emails {
		responses = append(responses, emailResponse(&emails[i]))
	}

	if limit <= 0 {
		limit = store.DefaultPageSize
	}
	if limit > store.MaxPageSize {
		limit = store.MaxPageSize
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    responses,
		"pagination": gin.H{
			"limit":  limit,
			"offset": offset,
			"total":  total,
		},
	})
}

// GetEmail returns a single active retained email by ID.
func (h *Handlers) GetEmail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid email ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	email, err := h.store.GetEmailByID(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch email",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	if email == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Email not found",
			Code:    http.StatusNotFound,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": emailResponse(email)})
}

// DeleteEmail removes a retained email regardless of its expiry.
func (h *Handlers) DeleteEmail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid email ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	deleted, err := h.store.DeleteEmailByID(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to delete email",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Email not found",
			Code:    http.StatusNotFound,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email deleted successfully"})
}

// GetStats returns aggregate counters and refreshes the gauges.
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.store.GetStats()
	if err != nil {
		logrus.Errorf("Failed to collect stats: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to collect stats",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	h.metrics.ActiveEmails.Set(float64(stats.ActiveEmails))
	h.metrics.TotalRules.Set(float64(stats.TotalRules))
	h.metrics.EnabledRules.Set(float64(stats.EnabledRules))

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

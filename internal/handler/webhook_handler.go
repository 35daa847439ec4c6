package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mail-webhook-relay/internal/mailparse"
	"mail-webhook-relay/internal/model"
	"mail-webhook-relay/internal/pipeline"
)

// IngestEmail accepts an inbound email from the edge relay, either as
// a JSON payload or a raw RFC 5322 document, selected by Content-Type.
func (h *Handlers) IngestEmail(c *gin.Context) {
	// Shared-secret policy, kept bug-compatible with the upstream
	// worker contract: a present-but-mismatched key is rejected, an
	// absent key is accepted. Checked before any body parsing.
	apiKey := c.GetHeader("X-API-Key")
	if apiKey != "" && apiKey != h.cfg.Webhook.APIKey {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_api_key",
			Message: "Invalid API key",
			Code:    http.StatusUnauthorized,
		})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "read_error",
			Message: "Failed to read request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	result, err := h.pipeline.Ingest(payload, c.GetHeader("Content-Type"))
	if err != nil {
		var parseErr *mailparse.ParseError
		switch {
		case errors.Is(err, pipeline.ErrMissingAddress):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "Missing from or to address",
				Code:    http.StatusBadRequest,
			})
		case errors.Is(err, pipeline.ErrInvalidPayload), errors.As(err, &parseErr):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "parse_error",
				Message: "Failed to parse email payload",
				Code:    http.StatusBadRequest,
			})
		default:
			logrus.Errorf("Ingestion failed: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to process email",
				Code:    http.StatusInternalServerError,
			})
		}
		return
	}

	c.JSON(http.StatusOK, webhookResponse(result))
}

func webhookResponse(result *pipeline.Result) WebhookResponse {
	switch result.Outcome {
	case pipeline.OutcomeProcessed:
		message := "Email processed and saved locally"
		if result.ForwardedTo != model.LocalDestination {
			message = "Email processed and forwarded"
		}
		return WebhookResponse{
			Success:     true,
			Status:      string(result.Outcome),
			Message:     message,
			EmailID:     result.EmailID,
			RuleID:      result.RuleID,
			ForwardedTo: result.ForwardedTo,
		}
	case pipeline.OutcomeAlreadyProcessed:
		return WebhookResponse{Success: true, Status: string(result.Outcome), Message: "Email already processed"}
	case pipeline.OutcomeNoRules:
		return WebhookResponse{Success: true, Status: string(result.Outcome), Message: "No rules configured"}
	case pipeline.OutcomeNoMatch:
		return WebhookResponse{Success: true, Status: string(result.Outcome), Message: "No matching rule found"}
	default:
		return WebhookResponse{Success: true, Status: string(result.Outcome)}
	}
}

// Cleanup forces an immediate expired-record sweep. It is gated by the
// cleanup token so external schedulers can call it.
func (h *Handlers) Cleanup(c *gin.Context) {
	token := c.Query("token")
	if h.cfg.Webhook.CleanupToken == "" || token != h.cfg.Webhook.CleanupToken {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid cleanup token",
			Code:    http.StatusUnauthorized,
		})
		return
	}

	deleted, err := h.pipeline.Sweep()
	if err != nil {
		logrus.Errorf("Cleanup sweep failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to delete expired emails",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("Deleted %d expired emails", deleted),
		"deletedCount": deleted,
	})
}

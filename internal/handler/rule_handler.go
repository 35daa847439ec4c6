package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mail-webhook-relay/internal/model"
)

func ruleResponse(rule *model.ForwardRule) ForwardRuleResponse {
	return ForwardRuleResponse{
		ID:              rule.ID,
		Name:            rule.Name,
		Enabled:         rule.Enabled,
		FromAddr:        rule.FromAddr,
		SubjectContains: rule.SubjectContains,
		BodyContains:    rule.BodyContains,
		ExcludeWords:    rule.ExcludeWords,
		ForwardTo:       rule.ForwardTo,
		Description:     rule.Description,
		CreatedAt:       rule.CreatedAt,
		UpdatedAt:       rule.UpdatedAt,
	}
}

// GetRules returns all forwarding rules
func (h *Handlers) GetRules(c *gin.Context) {
	rules, err := h.store.GetAllRules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch rules",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	responses := make([]ForwardRuleResponse, 0, len(rules))
	for i := range rules {
		responses = append(responses, ruleResponse(&rules[i]))
	}

	c.JSON(http.StatusOK, responses)
}

// CreateRule creates a new forwarding rule
func (h *Handlers) CreateRule(c *gin.Context) {
	var req ForwardRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	rule := model.ForwardRule{
		Name:            req.Name,
		Enabled:         enabled,
		FromAddr:        req.FromAddr,
		SubjectContains: req.SubjectContains,
		BodyContains:    req.BodyContains,
		ExcludeWords:    req.ExcludeWords,
		ForwardTo:       req.ForwardTo,
		Description:     req.Description,
	}

	if err := h.store.CreateRule(&rule); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create rule",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusCreated, ruleResponse(&rule))
}

// GetRule returns a specific forwarding rule
func (h *Handlers) GetRule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid rule ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	rule, err := h.store.GetRuleByID(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch rule",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	if rule == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Rule not found",
			Code:    http.StatusNotFound,
		})
		return
	}

	c.JSON(http.StatusOK, ruleResponse(rule))
}

// UpdateRule updates a forwarding rule
func (h *Handlers) UpdateRule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid rule ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	var req ForwardRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	rule, err := h.store.GetRuleByID(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch rule",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	if rule == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Rule not found",
			Code:    http.StatusNotFound,
		})
		return
	}

	rule.Name = req.Name
	rule.FromAddr = req.FromAddr
	rule.SubjectContains = req.SubjectContains
	rule.BodyContains = req.BodyContains
	rule.ExcludeWords = req.ExcludeWords
	rule.ForwardTo = req.ForwardTo
	rule.Description = req.Description
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := h.store.UpdateRule(rule); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update rule",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, ruleResponse(rule))
}

// DeleteRule deletes a forwarding rule
func (h *Handlers) DeleteRule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid rule ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if err := h.store.DeleteRule(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to delete rule",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// EnableRule enables a forwarding rule
func (h *Handlers) EnableRule(c *gin.Context) {
	h.setRuleEnabled(c, true)
}

// DisableRule disables a forwarding rule
func (h *Handlers) DisableRule(c *gin.Context) {
	h.setRuleEnabled(c, false)
}

func (h *Handlers) setRuleEnabled(c *gin.Context, enabled bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid rule ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if err := h.store.SetRuleEnabled(uint(id), enabled); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update rule",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.Status(http.StatusNoContent)
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/sandevgo/tuskchat/pkg/log"
)

type chatRequest struct {
	SessionID string `json:"sessionId" binding:"required,sessionid"`
	Prompt    string `json:"prompt" binding:"required,min=1"`
}

type chatResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "Invalid request body",
			Details: validationDetails(err),
		})
		return
	}

	ctx := c.Request.Context()
	reply, err := s.chat.Run(ctx, req.SessionID, req.Prompt)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("session_id", req.SessionID).Msg("chat turn failed")
		c.JSON(http.StatusBadGateway, errorResponse{Error: "Upstream model request failed"})
		return
	}

	c.JSON(http.StatusOK, chatResponse{Text: reply.Text})
}

func (s *Server) handleReset(c *gin.Context) {
	id := c.Param("sessionId")
	if err := validateSessionID(id); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.chat.Reset(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.chat.SessionCount(),
		"chunks":   s.chunks.Len(),
	})
}

func (s *Server) handleTurns(c *gin.Context) {
	id := c.Param("sessionId")
	turns, err := s.turns.ListTurns(c.Request.Context(), id)
	if err != nil {
		log.FromCtx(c.Request.Context()).Error().Err(err).Msg("failed to list turns")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": id,
		"turns":     turns,
	})
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "SessionID":
			details["sessionId"] = "sessionId is required"
		case "Prompt":
			details["prompt"] = "prompt is required"
		default:
			details[fe.Field()] = fe.Tag()
		}
	}
	return details
}

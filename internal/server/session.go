package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trading-coach/internal/models"
	"trading-coach/internal/store"
)

const defaultHistoryLimit = 20

func (s *Server) getSession(c *gin.Context) {
	sess, err := s.deps.Store.GetOrCreateSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess})
}

type messageRequest struct {
	Role    string             `json:"role"`
	Content string             `json:"content"`
	Type    models.MessageType `json:"type"`
}

func (s *Server) addMessage(c *gin.Context) {
	var req messageRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		badRequest(c, "Message content required", nil)
		return
	}
	if req.Role == "" {
		req.Role = "user"
	}
	msg := &models.Message{Role: req.Role, Content: req.Content, Type: req.Type}
	if err := s.deps.Store.AppendMessage(c.Request.Context(), c.Param("sessionId"), msg); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

func (s *Server) updateMetadata(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		badRequest(c, "Invalid metadata", err)
		return
	}
	md, err := s.deps.Store.UpdateSessionMetadata(c.Request.Context(), c.Param("sessionId"), updates)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "metadata": md})
}

func (s *Server) sessionHistory(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultHistoryLimit)
	if err != nil {
		s.fail(c, err)
		return
	}
	sid := c.Param("sessionId")
	msgs, total, err := s.deps.Store.GetMessages(c.Request.Context(), sid, store.MessageFilter{
		Type:  models.MessageType(c.DefaultQuery("type", "all")),
		Limit: limit,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "total": total, "sessionId": sid})
}

func (s *Server) clearMessages(c *gin.Context) {
	if err := s.deps.Store.ClearMessages(c.Request.Context(), c.Param("sessionId")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session history cleared"})
}

func (s *Server) listSessions(c *gin.Context) {
	sessions, err := s.deps.Store.ListSessions(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "total": len(sessions)})
}

package handler

import (
	"net/http"
	"strings"

	"deskgogo/backend/internal/presence"

	"github.com/gin-gonic/gin"
)

// RegisterPresence records a heartbeat for the caller on the subject (a
// ticket or session id) and returns the other live viewers. Clients call
// this periodically while the page is open.
func (h *Handler) RegisterPresence(c *gin.Context) {
	userID, err := h.requestUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	subjectID := c.Param("subject_id")

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	// The body is optional; a bare heartbeat reuses the stored identity.
	_ = c.ShouldBindJSON(&req)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		if display, err := h.Storage.ResolveDisplay(userID); err == nil {
			name = display.Name
		}
	}

	viewers := h.Presence.Register(subjectID, presence.Viewer{
		ID:    userID,
		Name:  name,
		Email: strings.TrimSpace(req.Email),
	})

	c.JSON(http.StatusOK, gin.H{"viewers": viewers, "count": len(viewers)})
}

// GetPresence returns who else is currently viewing the subject.
func (h *Handler) GetPresence(c *gin.Context) {
	userID, err := h.requestUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	viewers := h.Presence.Get(c.Param("subject_id"), userID)
	c.JSON(http.StatusOK, gin.H{"viewers": viewers, "count": len(viewers)})
}

// RemovePresence drops the caller's entry on a graceful leave.
func (h *Handler) RemovePresence(c *gin.Context) {
	userID, err := h.requestUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	h.Presence.Remove(c.Param("subject_id"), userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"aegischat/backend/internal/apperrors"
	"aegischat/backend/internal/ingress"

	"github.com/gin-gonic/gin"
)

// GetConversationPeers lists the ids the caller has exchanged direct
// messages with, the synthetic system peer included.
func (h *Handler) GetConversationPeers(c *gin.Context) {
	peers, err := h.Messages.ListConversationPeers(callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": peers})
}

// GetSystemMessages returns the caller's system-notification conversation.
func (h *Handler) GetSystemMessages(c *gin.Context) {
	before, limit, err := pageParams(c)
	if err != nil {
		respondError(c, err)
		return
	}
	msgs, err := h.Messages.FetchConversation(callerID(c), "system", before, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// GetConversation returns the page of messages between the caller and the
// receiver, oldest first.
func (h *Handler) GetConversation(c *gin.Context) {
	before, limit, err := pageParams(c)
	if err != nil {
		respondError(c, err)
		return
	}
	msgs, err := h.Messages.FetchConversation(callerID(c), c.Param("receiverId"), before, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type notificationRequest struct {
	ReceiverID   string  `json:"receiverId"`
	SenderID     string  `json:"senderId"`
	Message      string  `json:"message"`
	MessageType  string  `json:"messageType"`
	TournamentID *string `json:"tournamentId"`
	MatchID      *string `json:"matchId"`
	InvitationID *string `json:"invitationId"`
}

// SendNotification creates a direct message. A senderId of "system" marks
// the message as system-originated; any other value is ignored in favor of
// the authenticated caller.
func (h *Handler) SendNotification(c *gin.Context) {
	var req notificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("invalid request body: %w", apperrors.ErrValidation))
		return
	}

	msg, err := h.Messages.SendDirect(callerID(c), ingress.Notification{
		SenderID:     req.SenderID,
		ReceiverID:   req.ReceiverID,
		Message:      req.Message,
		MessageType:  req.MessageType,
		TournamentID: req.TournamentID,
		MatchID:      req.MatchID,
		InvitationID: req.InvitationID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification sent successfully", "chatMessage": msg})
}

// SendTournamentReference sends a tournament reference message to a team
// captain.
func (h *Handler) SendTournamentReference(c *gin.Context) {
	var req struct {
		CaptainID string `json:"captainId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("invalid request body: %w", apperrors.ErrValidation))
		return
	}

	msg, err := h.Messages.SendTournamentReference(callerID(c), c.Param("tournamentId"), req.CaptainID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tournament reference sent to captain", "chatMessage": msg})
}

// AcceptInvitation marks an invitation message accepted.
func (h *Handler) AcceptInvitation(c *gin.Context) {
	msg, err := h.Messages.RespondToInvitation(callerID(c), c.Param("invitationId"), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chatMessage": msg})
}

// DeclineInvitation marks an invitation message declined.
func (h *Handler) DeclineInvitation(c *gin.Context) {
	msg, err := h.Messages.RespondToInvitation(callerID(c), c.Param("invitationId"), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chatMessage": msg})
}

// pageParams parses the shared before/limit query parameters.
func pageParams(c *gin.Context) (*time.Time, int, error) {
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid 'before' timestamp: %w", apperrors.ErrValidation)
		}
		before = &t
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid 'limit': %w", apperrors.ErrValidation)
		}
		limit = n
	}
	return before, limit, nil
}

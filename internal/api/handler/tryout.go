package handler

import (
	"fmt"
	"net/http"

	"aegischat/backend/internal/apperrors"
	"aegischat/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// StartTryout creates a tryout chat from a pending team application.
func (h *Handler) StartTryout(c *gin.Context) {
	chat, err := h.Tryouts.StartTryout(callerID(c), c.Param("applicationId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// MyTryoutChats lists every tryout chat the caller participates in.
func (h *Handler) MyTryoutChats(c *gin.Context) {
	chats, err := h.Tryouts.ListChatsFor(callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// GetTryoutChat returns a chat with its full message log.
func (h *Handler) GetTryoutChat(c *gin.Context) {
	chat, err := h.Tryouts.GetChat(callerID(c), c.Param("chatId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// EndTryout terminates an active tryout. The ending party kind is derived
// from the caller's role in the chat: the applicant ends as the player,
// anyone else as the team.
func (h *Handler) EndTryout(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("invalid request body: %w", apperrors.ErrValidation))
		return
	}

	caller := callerID(c)
	chat, err := h.Tryouts.GetChat(caller, c.Param("chatId"))
	if err != nil {
		respondError(c, err)
		return
	}

	kind := models.EndedByTeam
	if caller == chat.ApplicantID {
		kind = models.EndedByPlayer
	}

	chat, err = h.Tryouts.EndTryout(chat.ID, caller, kind, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// SendOffer sends the team's join offer to the applicant.
func (h *Handler) SendOffer(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("invalid request body: %w", apperrors.ErrValidation))
		return
	}

	chat, err := h.Tryouts.SendOffer(c.Param("chatId"), callerID(c), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// AcceptOffer is the applicant accepting the pending offer.
func (h *Handler) AcceptOffer(c *gin.Context) {
	chat, err := h.Tryouts.AcceptOffer(c.Param("chatId"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat, "team": gin.H{"id": chat.TeamID}})
}

// RejectOffer is the applicant declining the pending offer. The reason is
// optional.
func (h *Handler) RejectOffer(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// The body is optional for a rejection.
	_ = c.ShouldBindJSON(&req)

	chat, err := h.Tryouts.RejectOffer(c.Param("chatId"), callerID(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

package handler

import (
	"net/http"

	"aegischat/backend/internal/apperrors"
	"aegischat/backend/internal/chathub"
	"aegischat/backend/internal/ingress"
	"aegischat/backend/internal/tryout"

	"github.com/gin-gonic/gin"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	Hub       *chathub.ManagerService
	Tryouts   *tryout.Service
	Messages  *ingress.Service
	JWTSecret string
}

func NewHandler(hub *chathub.ManagerService, tryouts *tryout.Service, messages *ingress.Service, jwtSecret string) *Handler {
	return &Handler{Hub: hub, Tryouts: tryouts, Messages: messages, JWTSecret: jwtSecret}
}

// RegisterRoutes wires the HTTP surface. Specific chat routes must come
// before the parameterized /:receiverId route.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/auth/token", h.GetToken)
	r.GET("/ws", h.ServeWebSocket)

	authed := r.Group("/api", h.AuthRequired())

	chat := authed.Group("/chat")
	chat.GET("/users/with-chats", h.GetConversationPeers)
	chat.GET("/system", h.GetSystemMessages)
	chat.POST("/send-notification", h.SendNotification)
	chat.POST("/tournament-reference/:tournamentId", h.SendTournamentReference)
	chat.POST("/invitations/:invitationId/accept", h.AcceptInvitation)
	chat.POST("/invitations/:invitationId/decline", h.DeclineInvitation)
	chat.GET("/:receiverId", h.GetConversation)

	authed.POST("/team-applications/:applicationId/start-tryout", h.StartTryout)

	tryouts := authed.Group("/tryout-chats")
	tryouts.GET("/my-chats", h.MyTryoutChats)
	tryouts.GET("/:chatId", h.GetTryoutChat)
	tryouts.POST("/:chatId/end-tryout", h.EndTryout)
	tryouts.POST("/:chatId/send-offer", h.SendOffer)
	tryouts.POST("/:chatId/accept-offer", h.AcceptOffer)
	tryouts.POST("/:chatId/reject-offer", h.RejectOffer)
}

// respondError reports a service error to the caller. Taxonomy errors
// surface their detail; anything unexpected becomes a generic failure the
// caller may retry.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	c.JSON(status, gin.H{"error": message})
}

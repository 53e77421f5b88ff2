package statushandler

import (
	"net/http"

	"whiteboardgo/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	registry session.IRegistry
}

func New(registry session.IRegistry) *Handler { return &Handler{registry: registry} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.status)
}

func (h *Handler) status(c *gin.Context) {
	rooms, participants := h.registry.Counts()
	c.JSON(http.StatusOK, StatusResponse{
		Status:       "running",
		Message:      "Signaling server is operational",
		Rooms:        rooms,
		Participants: participants,
	})
}

package game

import (
	"net/http"

	"adedonha/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	lobby    *Lobby
	registry UserRegistry
	upgrader websocket.Upgrader
}

func NewHandler(lobby *Lobby, registry UserRegistry) *Handler {
	return &Handler{
		lobby:    lobby,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are enforced by the router middleware before upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the connection and runs the player session until the
// socket drops. All further interaction happens over the message protocol.
func (h *Handler) ServeWS(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Warningf("WS upgrade failed: %v", err)
		return
	}

	session := NewWebsocketSession(conn)
	player := NewPlayer(&session, h.lobby, h.registry)
	go player.WritePump()
	player.ReadPump()
}

// PublicRoomsHandler lists waiting rooms; password-protected rooms are
// omitted entirely from this listing.
func (h *Handler) PublicRoomsHandler(ctx *gin.Context) {
	listing := []roomListing{}
	for _, desc := range h.lobby.WaitingRooms(ctx.Request.Context()) {
		if desc.HasPassword {
			continue
		}
		listing = append(listing, desc.listing())
	}
	ctx.JSON(http.StatusOK, listing)
}

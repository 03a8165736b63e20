package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ServeWS upgrades an HTTP request to a websocket and hands the connection
// to the hub.
func (h *Hub) ServeWS(ctx *gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}
	h.Connect(NewWebsocketConn(conn), ctx.ClientIP())
}

// SettingsHandler exposes branding settings to the login screen before any
// websocket exists.
func (h *Hub) SettingsHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.store.Settings())
}

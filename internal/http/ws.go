package http

import (
	"github.com/gin-gonic/gin"
)

// liveDashboard upgrades to a websocket fed by the hub. The token was checked
// by QueryAuth before the upgrade.
func (h *Handler) liveDashboard(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	h.hub.Serve(c.Request.Context(), conn)
}

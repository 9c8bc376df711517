package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pasarfleet/p-ui/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamNodeLogs upgrades to a websocket and relays the node's log
// stream until either side goes away. The node must currently be in
// the pool; otherwise the request fails without streaming.
func (a *ApiService) StreamNodeLogs(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 32)
	if err != nil {
		jsonMsg(c, "node_logs", err)
		return
	}

	streamLogs, err := a.NodeService.GetLogs(uint(id))
	if err != nil {
		jsonMsg(c, "node_logs", err)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warning("websocket upgrade failed: ", err)
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	logs, err := streamLogs(ctx)
	if err != nil {
		ws.WriteMessage(websocket.TextMessage, []byte("stream failed: "+err.Error()))
		return
	}

	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for line := range logs {
		if err := ws.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return
		}
	}
}

package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/propflow/propertyflow/internal/auth"
)

var upgrader = gorillaWS.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 在生产环境中应该检查 Origin
		return true
	},
}

// NotificationHandler 通知推送 WebSocket 处理器
// 浏览器无法在 WebSocket 握手设置 Authorization 头,token 走 query 参数
func NotificationHandler(hub *Hub, tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade connection"})
			return
		}

		client := NewClient(
			uuid.New().String(),
			claims.Subject,
			hub,
			conn,
		)

		hub.Register <- client

		go client.ReadPump()
		go client.WritePump()
	}
}

package websocket

import (
	"sync"

	"github.com/propflow/propertyflow/internal/metrics"
)

// Hub 管理所有通知推送连接
// 通知派发器在转换落库后通过 Hub 把通知推给在线的责任人
type Hub struct {
	// 已注册的客户端
	clients map[*Client]bool

	// 广播消息到所有客户端
	Broadcast chan []byte

	// 注册新客户端
	Register chan *Client

	// 注销客户端
	Unregister chan *Client

	// 互斥锁,保护 clients map
	mu sync.RWMutex
}

// NewHub 创建新的 Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run 运行 Hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			metrics.SetWebSocketClients(float64(len(h.clients)))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			metrics.SetWebSocketClients(float64(len(h.clients)))
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			metrics.SetWebSocketClients(float64(len(h.clients)))
			h.mu.Unlock()
		}
	}
}

// PushToUser 向特定用户的所有连接推送消息
func (h *Hub) PushToUser(userID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// ClientCount 获取在线客户端数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

package services

import (
	"encoding/json"
	"sync"
	"time"

	"inventorywise/internal/models"
	"inventorywise/pkg/logger"

	"github.com/gorilla/websocket"
)

// AlertClient 一条已连接的WebSocket客户端
type AlertClient struct {
	hub  *AlertHub
	conn *websocket.Conn
	send chan []byte
}

// AlertHub 低库存告警集线器
// 维护已连接的客户端集合，把库存跌破阈值的商品广播给所有连接。
type AlertHub struct {
	clients    map[*AlertClient]bool
	broadcast  chan []byte
	register   chan *AlertClient
	unregister chan *AlertClient
	mu         sync.Mutex
}

func NewAlertHub() *AlertHub {
	return &AlertHub{
		clients:    make(map[*AlertClient]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *AlertClient),
		unregister: make(chan *AlertClient),
	}
}

// Run 主分发循环，应在单独的goroutine中运行
func (h *AlertHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.GetLogger().Debug("stock alert client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logger.GetLogger().Debug("stock alert client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 发送缓冲区已满，视为失联
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// lowStockAlert 广播消息体
type lowStockAlert struct {
	Type         string    `json:"type"`
	ProductID    uint      `json:"product_id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	CurrentStock uint      `json:"current_stock"`
	MinThreshold uint      `json:"min_threshold"`
	Timestamp    time.Time `json:"timestamp"`
}

// PublishLowStock 广播一条低库存告警
func (h *AlertHub) PublishLowStock(product *models.Product) {
	alert := lowStockAlert{
		Type:         "low_stock",
		ProductID:    product.ID,
		SKU:          product.SKU,
		Name:         product.Name,
		CurrentStock: product.StockQuantity,
		MinThreshold: product.MinStockThreshold,
		Timestamp:    time.Now(),
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		logger.GetLogger().Errorf("failed to marshal low stock alert: %v", err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		logger.GetLogger().Warn("stock alert broadcast channel full, dropping alert")
	}
}

// ClientCount 当前连接数
func (h *AlertHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Register 把一条已升级的连接挂入集线器
func (h *AlertHub) Register(conn *websocket.Conn) {
	client := &AlertClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *AlertClient) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *AlertClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	for {
		// 只读不处理，用于感知连接关闭
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

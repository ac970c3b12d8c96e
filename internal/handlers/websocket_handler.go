package handlers

import (
	"net/http"

	"inventorywise/internal/services"
	"inventorywise/pkg/config"
	"inventorywise/pkg/jwt"
	"inventorywise/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocketHandler 低库存告警的WebSocket入口
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	hub         *services.AlertHub
	jwtManager  *jwt.JWTManager
	userService *services.UserService
}

func NewWebSocketHandler(hub *services.AlertHub, userService *services.UserService, jwtManager *jwt.JWTManager) *WebSocketHandler {
	allowedOrigins := config.GetConfig().CORS.AllowOrigins

	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				logger.GetLogger().Warnf("websocket connection rejected, origin: %s", origin)
				return false
			},
		},
		hub:         hub,
		jwtManager:  jwtManager,
		userService: userService,
	}
}

// StockAlerts 订阅低库存告警
// WebSocket不支持自定义header，token从查询参数传入。
func (h *WebSocketHandler) StockAlerts(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing token", "status_code": http.StatusUnauthorized})
		return
	}

	userID, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token", "status_code": http.StatusUnauthorized})
		return
	}

	user, err := h.userService.GetByID(userID)
	if err != nil || !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not found", "status_code": http.StatusUnauthorized})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.GetLogger().Errorf("websocket upgrade failed: %v", err)
		return
	}

	h.hub.Register(conn)
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"legal_connect/internal/service"
	"legal_connect/pkg/logger"
)

const (
	wsReadLimit    = 4096
	wsPongTimeout  = 90 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	authService service.AuthService
	presence    service.PresenceRegistry
	log         logger.Logger
}

func NewWebSocketHandler(authService service.AuthService, presence service.PresenceRegistry, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		authService: authService,
		presence:    presence,
		log:         log,
	}
}

// HandleChat привязывает соединение к аутентифицированному пользователю.
// Токен передается query-параметром: браузерный WebSocket не умеет заголовки.
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	user, err := h.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	ctx := c.Request.Context()
	h.presence.Connect(ctx, user.ID, conn)
	defer h.presence.Disconnect(ctx, user.ID, conn)
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		h.presence.Touch(ctx, user.ID)
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	// Сервер пингует сам: браузерный клиент ping-фреймы слать не умеет,
	// и без пингов read deadline у молчащего получателя просто истечет
	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, wsPingInterval, done)

	// Канал односторонний: сервер только шлет события new-message.
	// Read-цикл нужен, чтобы заметить закрытие и обработать ping/pong.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("WebSocket read error", "user_id", user.ID, "error", err)
			}
			return
		}
		h.presence.Touch(ctx, user.ID)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	}
}

type pingWriter interface {
	WriteControl(messageType int, data []byte, deadline time.Time) error
}

// pingLoop шлет ping-фреймы до закрытия done или первой ошибки записи.
// WriteControl у gorilla безопасен параллельно с WriteJSON из Push.
func pingLoop(conn pingWriter, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

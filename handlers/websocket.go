package handlers

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"pileup-backend/models"
)

const (
	ClientTypeRobot = "robot"
	ClientTypeWeb   = "web"
)

// wsConn - 허브가 쓰는 연결 최소 인터페이스 (*websocket.Conn 만족)
type wsConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	Conn       wsConn
	ClientType string // "robot" 또는 "web"

	writeMu sync.Mutex // 연결당 동시 writer 는 하나만 허용된다
}

// WriteJSON - 허브와 핸들러 고루틴이 함께 쓰는 직렬화된 전송
func (client *Client) WriteJSON(v interface{}) error {
	client.writeMu.Lock()
	defer client.writeMu.Unlock()
	return client.Conn.WriteJSON(v)
}

// ClientManager - WebSocket 클라이언트 관리 및 브로드캐스트
type ClientManager struct {
	clients    map[wsConn]*Client
	broadcast  chan models.WebSocketMessage
	register   chan *Client
	unregister chan wsConn
	stop       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	logger     *zap.Logger
}

// NewClientManager - 허브 생성
func NewClientManager(logger *zap.Logger) *ClientManager {
	return &ClientManager{
		clients:    make(map[wsConn]*Client),
		broadcast:  make(chan models.WebSocketMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan wsConn),
		stop:       make(chan struct{}),
		logger:     logger,
	}
}

// Start - 클라이언트 관리 루프 (Stop 까지 블록)
func (manager *ClientManager) Start() {
	for {
		select {
		case <-manager.stop:
			return

		case client := <-manager.register:
			manager.mutex.Lock()
			manager.clients[client.Conn] = client
			manager.mutex.Unlock()
			manager.logger.Info("클라이언트 등록", zap.String("type", client.ClientType))

		case conn := <-manager.unregister:
			manager.remove(conn)

		case message := <-manager.broadcast:
			manager.handleBroadcast(message)
		}
	}
}

// Stop - 관리 루프 종료
func (manager *ClientManager) Stop() {
	manager.stopOnce.Do(func() { close(manager.stop) })
}

// Register - 클라이언트 등록 (허브가 멈췄으면 false)
func (manager *ClientManager) Register(client *Client) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.stop:
		return false
	}
}

// Unregister - 클라이언트 해제 요청 (허브가 멈췄으면 연결만 닫음)
func (manager *ClientManager) Unregister(conn wsConn) {
	select {
	case manager.unregister <- conn:
	case <-manager.stop:
		_ = conn.Close()
	}
}

func (manager *ClientManager) remove(conn wsConn) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	if client, ok := manager.clients[conn]; ok {
		delete(manager.clients, conn)
		_ = conn.Close()
		manager.logger.Info("클라이언트 해제", zap.String("type", client.ClientType))
	}
}

// targetClientType - 메시지 타입별 수신 대상
func targetClientType(msgType string) string {
	switch msgType {
	case models.MessageTypeMoveCommand:
		return ClientTypeRobot
	case models.MessageTypeRobotPosition,
		models.MessageTypePlayEvent,
		models.MessageTypePlayResult,
		models.MessageTypeScenario,
		models.MessageTypeSystemInfo:
		return ClientTypeWeb
	default:
		return ""
	}
}

func (manager *ClientManager) handleBroadcast(message models.WebSocketMessage) {
	target := targetClientType(message.Type)
	if target == "" {
		manager.logger.Debug("알 수 없는 메시지 타입", zap.String("type", message.Type))
		return
	}

	var failed []wsConn

	manager.mutex.RLock()
	for conn, client := range manager.clients {
		if client.ClientType != target {
			continue
		}
		if err := client.WriteJSON(message); err != nil {
			manager.logger.Warn("전송 실패", zap.String("type", client.ClientType), zap.Error(err))
			failed = append(failed, conn)
		}
	}
	manager.mutex.RUnlock()

	for _, conn := range failed {
		manager.remove(conn)
	}
}

// BroadcastMessage - 브로드캐스트 큐에 추가 (가득 차면 버림)
func (manager *ClientManager) BroadcastMessage(msg models.WebSocketMessage) {
	select {
	case manager.broadcast <- msg:
	default:
		manager.logger.Warn("⚠️ broadcast 채널 가득 참", zap.String("type", msg.Type))
	}
}

func (manager *ClientManager) GetClientCount() map[string]int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	count := map[string]int{
		ClientTypeRobot: 0,
		ClientTypeWeb:   0,
	}
	for _, client := range manager.clients {
		count[client.ClientType]++
	}
	return count
}

// decodeData - interface{} 데이터를 구조체로 변환
func decodeData(data interface{}, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// HandleRobotWebSocket - 로봇 WebSocket (위치 보고 수신, 이동 명령 송신)
func (h *Handler) HandleRobotWebSocket(c *websocket.Conn) {
	if !h.Hub.Register(&Client{Conn: c, ClientType: ClientTypeRobot}) {
		return
	}
	defer h.Hub.Unregister(c)

	for {
		var msg models.WebSocketMessage
		if err := c.ReadJSON(&msg); err != nil {
			h.Logger.Debug("로봇 메시지 읽기 종료", zap.Error(err))
			break
		}
		if msg.Timestamp == 0 {
			msg.Timestamp = time.Now().UnixMilli()
		}

		if msg.Type != models.MessageTypeRobotPosition {
			h.Logger.Warn("알 수 없는 로봇 메시지", zap.String("type", msg.Type))
			continue
		}

		var report models.RobotPositionReport
		if err := decodeData(msg.Data, &report); err != nil {
			h.Logger.Warn("위치 보고 파싱 실패", zap.Error(err))
			continue
		}
		if err := h.Registry.ReportPosition(report); err != nil {
			h.Logger.Warn("위치 보고 반영 실패", zap.Error(err))
			continue
		}

		msg.Data = report
		h.Hub.BroadcastMessage(msg)
	}
}

// HandleWebClientWebSocket - 웹 클라이언트 WebSocket (공 갱신, 플레이 활성화)
func (h *Handler) HandleWebClientWebSocket(c *websocket.Conn) {
	client := &Client{Conn: c, ClientType: ClientTypeWeb}
	if !h.Hub.Register(client) {
		return
	}
	defer h.Hub.Unregister(c)

	// 연결 확인 메시지 전송 (허브 브로드캐스트와 같은 잠금 사용)
	_ = client.WriteJSON(models.WebSocketMessage{
		Type: models.MessageTypeSystemInfo,
		Data: models.SystemInfo{
			ConnectedClients: h.Hub.GetClientCount()[ClientTypeWeb],
			Robots:           h.Registry.Count(),
			Uptime:           int64(time.Since(h.StartedAt).Seconds()),
		},
		Timestamp: time.Now().UnixMilli(),
	})

	for {
		var msg models.WebSocketMessage
		if err := c.ReadJSON(&msg); err != nil {
			h.Logger.Debug("웹 메시지 읽기 종료", zap.Error(err))
			break
		}

		switch msg.Type {
		case models.MessageTypeBallUpdate:
			var update models.BallUpdate
			if err := decodeData(msg.Data, &update); err != nil {
				h.Logger.Warn("공 위치 파싱 실패", zap.Error(err))
				continue
			}
			p := models.Point{X: update.X, Y: update.Y}
			if !h.Field.Contains(p) {
				h.Logger.Warn("필드 밖 공 위치 무시", zap.Float64("x", p.X), zap.Float64("y", p.Y))
				continue
			}
			h.Ball.SetBall(p)

		case models.MessageTypeActivate:
			h.broadcastActivation(h.Play.Activate())

		default:
			h.Logger.Warn("알 수 없는 메시지 타입", zap.String("type", msg.Type))
		}
	}
}

package models

// ========================================
// 메시지 타입 상수
// ========================================
const (
	// Robot → Server → Web
	MessageTypeRobotPosition = "robot_position" // 로봇 위치 업데이트

	// Web → Server
	MessageTypeBallUpdate = "ball_update" // 공 위치 갱신
	MessageTypeActivate   = "activate"    // 파일업 플레이 활성화 요청

	// Server → Web
	MessageTypePlayEvent  = "play_event"  // 영역 메시지 (플레이 출력)
	MessageTypePlayResult = "play_result" // 계산된 계획 + 배정 결과
	MessageTypeScenario   = "scenario"    // 시나리오 생성
	MessageTypeSystemInfo = "system_info" // 시스템 정보

	// Server → Robot
	MessageTypeMoveCommand = "move_command" // 이동 명령
)

// ========================================
// 공통 WebSocket 메시지 형식
// ========================================
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"` // Unix timestamp (ms)
}

// ========================================
// 위치 데이터
// ========================================
type PositionData struct {
	X         float64 `json:"x"`         // X 좌표 (미터)
	Y         float64 `json:"y"`         // Y 좌표 (미터)
	Angle     float64 `json:"angle"`     // 각도 (라디안)
	Timestamp float64 `json:"timestamp"` // 측정 시각 (Unix 초, ms 포함)
}

// 이동 명령
type MoveCommand struct {
	RobotID  string `json:"robot_id"`
	Target   Point  `json:"target"`
	Required bool   `json:"required"`
}

// BallUpdate - 공 위치 갱신 요청
type BallUpdate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RobotPositionReport - 로봇이 보고하는 위치
type RobotPositionReport struct {
	RobotID string  `json:"robot_id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Angle   float64 `json:"angle"`
}

// ========================================
// 시스템 정보
// ========================================
type SystemInfo struct {
	ConnectedClients int   `json:"connected_clients"` // 연결된 클라이언트 수
	Robots           int   `json:"robots"`            // 등록된 로봇 수
	Uptime           int64 `json:"uptime"`            // 가동 시간 (초)
}

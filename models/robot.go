package models

import "time"

// ========================================
// 로봇 상태 상수
// ========================================
const (
	StateIdle    RobotState = "idle"    // 대기 중 (배정 가능)
	StateMoving  RobotState = "moving"  // 목표 지점으로 이동 중
	StateStandby RobotState = "standby" // 파일업 대기 위치 도착
)

// RobotState - 로봇 상태 타입
type RobotState string

// ========================================
// 로봇 전체 상태
// ========================================
type RobotStatus struct {
	ID         string    `json:"id"`          // 로봇 고유 ID
	LastUpdate time.Time `json:"last_update"` // 마지막 업데이트 시각

	Position PositionData `json:"position"` // 현재 위치
	State    RobotState   `json:"state"`    // 현재 상태
	Speed    float64      `json:"speed"`    // 현재 속도 (m/s)

	// 시뮬레이터가 움직이는 로봇 (위치 보고 없이도 살아있는 것으로 본다)
	Simulated bool `json:"simulated"`

	Target *Point  `json:"target,omitempty"` // 목표 위치 (없으면 nil)
	Path   []Point `json:"path,omitempty"`   // 남은 경로
}

// Point - 현재 위치를 Point로 반환
func (r *RobotStatus) Point() Point {
	return Point{X: r.Position.X, Y: r.Position.Y}
}

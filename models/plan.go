package models

import "time"

// RequireMode - 이동 요청의 필수 여부
type RequireMode bool

const (
	Required RequireMode = true
	Optional RequireMode = false
)

// PileupPlan - 한 번의 플레이 활성화에서 계산된 대기 위치
//
// 활성화마다 새로 계산되며 이후 수정되지 않는다.
type PileupPlan struct {
	Region  Region  `json:"region"`
	Message string  `json:"message"`
	Ball    Point   `json:"ball"`
	Targets []Point `json:"targets"` // 0~2개
	Option  int     `json:"option"`  // center_field에서 뽑은 분기 (0 또는 1), 그 외 -1
}

// HasTargets - 이동할 목표가 있는지
func (p PileupPlan) HasTargets() bool {
	return len(p.Targets) > 0
}

// Assignment - 목표 지점에 배정된 로봇
type Assignment struct {
	Target    Point  `json:"target"`
	RobotID   string `json:"robot_id"` // 배정 실패 시 빈 문자열
	Satisfied bool   `json:"satisfied"`
}

// Activation - 플레이 활성화 1회의 결과
type Activation struct {
	ID          string       `json:"id"`
	ActivatedAt time.Time    `json:"activated_at"`
	Plan        PileupPlan   `json:"plan"`
	Assignments []Assignment `json:"assignments"`
	StandbyBot1 string       `json:"standby_bot1,omitempty"`
	StandbyBot2 string       `json:"standby_bot2,omitempty"`
	Complete    bool         `json:"complete"` // 필수 이동이 모두 배정되었는지
}

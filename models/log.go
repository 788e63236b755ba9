package models

import (
	"time"
)

// PlayLog - 파일업 플레이 활성화 로그
type PlayLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	ActivationID string    `gorm:"size:36;index" json:"activation_id"`

	// 분류 결과
	Region  string `gorm:"size:32;index" json:"region"`
	Message string `json:"message"`
	Option  int    `json:"option"`

	// 공 위치
	BallX float64 `json:"ball_x"`
	BallY float64 `json:"ball_y"`

	// 목표 및 배정
	TargetCount int     `json:"target_count"`
	Target1X    float64 `json:"target1_x"`
	Target1Y    float64 `json:"target1_y"`
	Target2X    float64 `json:"target2_x"`
	Target2Y    float64 `json:"target2_y"`
	StandbyBot1 string  `json:"standby_bot1"`
	StandbyBot2 string  `json:"standby_bot2"`
	Complete    bool    `json:"complete"`
}

// RegionCount - 영역별 집계
type RegionCount struct {
	Region string `json:"region"`
	Count  int64  `json:"count"`
}

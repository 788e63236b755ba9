package models

import "time"

// Scenario - 시뮬레이션용 공/로봇 배치
type Scenario struct {
	ID        string           `json:"id"`
	Field     FieldGeometry    `json:"field"`
	Ball      Point            `json:"ball"`
	Robots    map[string]Point `json:"robots"`
	CreatedAt time.Time        `json:"created_at"`
}

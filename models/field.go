package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry - 필드 길이/폭이 0 이하인 경우
var ErrInvalidGeometry = errors.New("invalid field geometry")

// Point - 필드 위의 2D 좌표 (미터)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FieldGeometry - 필드 치수 (읽기 전용)
//
// 좌표계: y축은 우리 골라인(0)에서 상대 골라인(Length)까지,
// x축은 필드 중앙선(0)을 기준으로 -Width/2 ~ +Width/2.
type FieldGeometry struct {
	Length      float64 `json:"length" yaml:"length"`             // 필드 길이 L (m)
	Width       float64 `json:"width" yaml:"width"`               // 필드 폭 W (m)
	RobotRadius float64 `json:"robot_radius" yaml:"robot_radius"` // 로봇 반경 (m)
	BallRadius  float64 `json:"ball_radius" yaml:"ball_radius"`   // 공 반경 (m)
}

// DefaultField - SSL Division B 기본 치수
func DefaultField() FieldGeometry {
	return FieldGeometry{
		Length:      9.0,
		Width:       6.0,
		RobotRadius: 0.09,
		BallRadius:  0.0215,
	}
}

// Validate - 길이와 폭이 유한한 양수인지 확인 (NaN, Inf 거부)
func (f FieldGeometry) Validate() error {
	if !positiveFinite(f.Length) || !positiveFinite(f.Width) {
		return fmt.Errorf("%w: length=%.3f width=%.3f", ErrInvalidGeometry, f.Length, f.Width)
	}
	if !(f.RobotRadius >= 0) || !(f.BallRadius >= 0) || math.IsInf(f.RobotRadius, 1) || math.IsInf(f.BallRadius, 1) {
		return fmt.Errorf("%w: negative radius", ErrInvalidGeometry)
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Contains - 좌표가 필드 안에 있는지
func (f FieldGeometry) Contains(p Point) bool {
	half := f.Width / 2
	return p.X >= -half && p.X <= half && p.Y >= 0 && p.Y <= f.Length
}

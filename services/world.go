package services

import (
	"sync"
	"time"

	"pileup-backend/models"
)

// BallProvider - 현재 공 위치
type BallProvider interface {
	Ball() models.Point
}

// BallTracker - 최근 공 위치 보관 (BallProvider 구현)
type BallTracker struct {
	mu      sync.RWMutex
	pos     models.Point
	updated time.Time
}

// NewBallTracker - 초기 위치로 생성
func NewBallTracker(initial models.Point) *BallTracker {
	return &BallTracker{pos: initial, updated: time.Now()}
}

// Ball - 현재 공 위치
func (b *BallTracker) Ball() models.Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pos
}

// SetBall - 공 위치 갱신
func (b *BallTracker) SetBall(p models.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pos = p
	b.updated = time.Now()
}

// LastUpdate - 마지막 갱신 시각
func (b *BallTracker) LastUpdate() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updated
}

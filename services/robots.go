package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"pileup-backend/models"
)

// ErrRobotNotFound - 등록되지 않은 로봇
var ErrRobotNotFound = errors.New("robot not found")

// RobotRegistry - 로봇 상태 관리
type RobotRegistry struct {
	mu       sync.RWMutex
	robots   map[string]*models.RobotStatus // robot_id -> 상태
	lastPing map[string]time.Time           // robot_id -> 마지막 보고 시간
	logger   *zap.Logger
	now      func() time.Time
}

// NewRobotRegistry - 레지스트리 생성
func NewRobotRegistry(logger *zap.Logger) *RobotRegistry {
	return &RobotRegistry{
		robots:   make(map[string]*models.RobotStatus),
		lastPing: make(map[string]time.Time),
		logger:   logger,
		now:      time.Now,
	}
}

// Register - 로봇 등록
//
// 이미 등록된 로봇이면 위치만 갱신한다.
func (r *RobotRegistry) Register(robotID string, pos models.Point) (models.RobotStatus, error) {
	if robotID == "" {
		return models.RobotStatus{}, fmt.Errorf("로봇 ID가 비어있습니다")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	position := models.PositionData{
		X:         pos.X,
		Y:         pos.Y,
		Timestamp: float64(now.UnixMilli()) / 1000.0,
	}

	if info, exists := r.robots[robotID]; exists {
		info.Position = position
		info.LastUpdate = now
		r.lastPing[robotID] = now
		r.logger.Debug("[Registry] robot re-registered", zap.String("robot", robotID))
		return copyStatus(info), nil
	}

	info := &models.RobotStatus{
		ID:         robotID,
		LastUpdate: now,
		Position:   position,
		State:      models.StateIdle,
	}
	r.robots[robotID] = info
	r.lastPing[robotID] = now
	r.logger.Info("[Registry] robot registered", zap.String("robot", robotID),
		zap.Float64("x", pos.X), zap.Float64("y", pos.Y))
	return copyStatus(info), nil
}

// ReportPosition - 로봇이 보고한 위치 반영 (미등록이면 등록)
func (r *RobotRegistry) ReportPosition(report models.RobotPositionReport) error {
	if _, err := r.Register(report.RobotID, models.Point{X: report.X, Y: report.Y}); err != nil {
		return err
	}
	return r.Update(report.RobotID, func(s *models.RobotStatus) {
		s.Position.Angle = report.Angle
		s.Simulated = false
	})
}

// Update - 잠금 상태에서 로봇 상태 수정
func (r *RobotRegistry) Update(robotID string, fn func(*models.RobotStatus)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.robots[robotID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrRobotNotFound, robotID)
	}

	fn(info)
	info.LastUpdate = r.now()
	return nil
}

// UpdateAll - 모든 로봇을 한 번의 잠금으로 수정 (ID 순서)
func (r *RobotRegistry) UpdateAll(fn func(*models.RobotStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, id := range r.sortedIDs() {
		fn(r.robots[id])
		r.robots[id].LastUpdate = now
	}
}

// Get - 로봇 상태 조회 (복사본)
func (r *RobotRegistry) Get(robotID string) (models.RobotStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.robots[robotID]
	if !exists {
		return models.RobotStatus{}, fmt.Errorf("%w: %s", ErrRobotNotFound, robotID)
	}
	return copyStatus(info), nil
}

// List - 모든 로봇 상태 (ID 순서)
func (r *RobotRegistry) List() []models.RobotStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.RobotStatus, 0, len(r.robots))
	for _, id := range r.sortedIDs() {
		result = append(result, copyStatus(r.robots[id]))
	}
	return result
}

// IDs - 등록된 로봇 ID (정렬)
func (r *RobotRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedIDs()
}

// Remove - 로봇 등록 해제
func (r *RobotRegistry) Remove(robotID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.robots[robotID]; !exists {
		return fmt.Errorf("%w: %s", ErrRobotNotFound, robotID)
	}

	delete(r.robots, robotID)
	delete(r.lastPing, robotID)
	r.logger.Info("[Registry] robot removed", zap.String("robot", robotID))
	return nil
}

// Count - 등록된 로봇 수
func (r *RobotRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.robots)
}

// IsAlive - 마지막 보고가 timeout 이내인지
func (r *RobotRegistry) IsAlive(robotID string, timeout time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lastPing, exists := r.lastPing[robotID]
	if !exists {
		return false
	}
	return r.now().Sub(lastPing) < timeout
}

// TouchSimulated - 시뮬레이터 로봇의 마지막 보고 시간 갱신
func (r *RobotRegistry) TouchSimulated() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, info := range r.robots {
		if info.Simulated {
			r.lastPing[id] = now
		}
	}
}

// CleanupOffline - timeout 동안 보고가 없던 로봇 제거
func (r *RobotRegistry) CleanupOffline(timeout time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	now := r.now()

	for robotID, lastPing := range r.lastPing {
		if now.Sub(lastPing) > timeout {
			delete(r.robots, robotID)
			delete(r.lastPing, robotID)
			r.logger.Warn("[Registry] robot cleanup (offline)", zap.String("robot", robotID))
			count++
		}
	}

	return count
}

// RobotStats - 로봇 통계
type RobotStats struct {
	Total   int `json:"total"`
	Idle    int `json:"idle"`
	Moving  int `json:"moving"`
	Standby int `json:"standby"`
}

// Statistics - 상태별 로봇 수
func (r *RobotRegistry) Statistics() RobotStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RobotStats{Total: len(r.robots)}
	for _, info := range r.robots {
		switch info.State {
		case models.StateIdle:
			stats.Idle++
		case models.StateMoving:
			stats.Moving++
		case models.StateStandby:
			stats.Standby++
		}
	}
	return stats
}

func (r *RobotRegistry) sortedIDs() []string {
	ids := make([]string, 0, len(r.robots))
	for id := range r.robots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func copyStatus(s *models.RobotStatus) models.RobotStatus {
	out := *s
	if s.Target != nil {
		t := *s.Target
		out.Target = &t
	}
	if s.Path != nil {
		out.Path = append([]models.Point(nil), s.Path...)
	}
	return out
}

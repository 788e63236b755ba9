package services

import (
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"pileup-backend/algorithms"
	"pileup-backend/models"
)

// arrivalTolerance - 목표 도달 판정 거리 (m)
const arrivalTolerance = 0.02

// MoveHandle - 이동 요청 결과
type MoveHandle interface {
	Robot() string   // 배정된 로봇 ID (실패 시 "")
	Satisfied() bool // 로봇이 배정되고 경로가 있는지
}

// Mover - 로봇을 목표 지점으로 보내는 모션 프리미티브
type Mover interface {
	Move(target models.Point, mode models.RequireMode) MoveHandle
}

// Releaser - 이전 배정을 해제할 수 있는 Mover
type Releaser interface {
	Release(robotID string)
}

// MoveRequest - MotionSimulator 의 MoveHandle 구현
type MoveRequest struct {
	Target  models.Point       `json:"target"`
	Mode    models.RequireMode `json:"required"`
	RobotID string             `json:"robot_id"`
	Path    []models.Point     `json:"path,omitempty"`
	Err     error              `json:"-"`
}

func (m *MoveRequest) Robot() string   { return m.RobotID }
func (m *MoveRequest) Satisfied() bool { return m.RobotID != "" && m.Err == nil }

// ErrNoIdleRobot - 배정 가능한 로봇이 없음
var ErrNoIdleRobot = errors.New("no idle robot")

// MotionSimulator - 로봇 이동 시뮬레이터 (Mover 구현)
//
// Move 는 가장 가까운 idle 로봇을 골라 A* 경로를 붙이고 바로 반환한다.
// 실제 이동은 틱 루프(Step)에서 진행된다.
type MotionSimulator struct {
	field         models.FieldGeometry
	registry      *RobotRegistry
	broadcastFunc func(models.WebSocketMessage)
	logger        *zap.Logger

	speed    float64 // m/s
	cellSize float64
	tick     time.Duration
	timeout  time.Duration // 0이면 생존 확인과 정리를 하지 않음

	// 제어
	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
	done      chan struct{}
}

// NewMotionSimulator - 시뮬레이터 생성
func NewMotionSimulator(cfg *Config, registry *RobotRegistry, broadcastFunc func(models.WebSocketMessage), logger *zap.Logger) *MotionSimulator {
	return &MotionSimulator{
		field:         cfg.Field,
		registry:      registry,
		broadcastFunc: broadcastFunc,
		logger:        logger,
		speed:         cfg.RobotSpeed,
		cellSize:      cfg.GridCellSize,
		tick:          cfg.TickInterval,
		timeout:       cfg.RobotTimeout,
	}
}

// Move - 가장 가까운 idle 로봇을 target 으로 보냄
func (s *MotionSimulator) Move(target models.Point, mode models.RequireMode) MoveHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := &MoveRequest{Target: target, Mode: mode}

	robots := s.registry.List()
	chosen := nearestIdle(s.alive(robots), target)
	if chosen == nil {
		req.Err = ErrNoIdleRobot
		s.logger.Warn("⚠️ 배정 가능한 로봇 없음",
			zap.Float64("x", target.X), zap.Float64("y", target.Y),
			zap.Bool("required", bool(mode)))
		return req
	}

	grid := algorithms.NewFieldGrid(s.field, s.cellSize)
	for _, r := range robots {
		if r.ID == chosen.ID {
			continue
		}
		grid.AddObstacle(algorithms.Obstacle{Center: r.Point(), Radius: s.field.RobotRadius}, s.field.RobotRadius)
	}

	path, err := grid.FindPath(chosen.Point(), target)
	if err != nil {
		req.Err = err
		s.logger.Warn("⚠️ 경로 없음", zap.String("robot", chosen.ID),
			zap.Float64("x", target.X), zap.Float64("y", target.Y), zap.Error(err))
		return req
	}

	req.RobotID = chosen.ID
	req.Path = path

	_ = s.registry.Update(chosen.ID, func(r *models.RobotStatus) {
		t := target
		r.Target = &t
		r.Path = append([]models.Point(nil), path[1:]...)
		if len(r.Path) == 0 {
			r.Path = []models.Point{target}
		}
		r.State = models.StateMoving
		r.Speed = s.speed
	})

	s.logger.Info("📍 이동 배정", zap.String("robot", chosen.ID),
		zap.Float64("x", target.X), zap.Float64("y", target.Y),
		zap.Int("waypoints", len(path)), zap.Bool("required", bool(mode)))

	s.broadcast(models.MessageTypeMoveCommand, models.MoveCommand{
		RobotID:  chosen.ID,
		Target:   target,
		Required: bool(mode),
	})

	return req
}

// Release - 로봇의 현재 목표를 해제하고 idle 로 되돌림
func (s *MotionSimulator) Release(robotID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.registry.Update(robotID, func(r *models.RobotStatus) {
		r.Target = nil
		r.Path = nil
		r.State = models.StateIdle
		r.Speed = 0
	})
	if err != nil {
		s.logger.Debug("release skipped", zap.String("robot", robotID), zap.Error(err))
	}
}

// Start - 시뮬레이션 시작
func (s *MotionSimulator) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("🚀 모션 시뮬레이터 시작", zap.Duration("tick", s.tick))
	go s.run(s.stopChan, s.done)
}

// Stop - 시뮬레이션 중지 (루프 종료까지 대기)
func (s *MotionSimulator) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	close(stop)
	<-done
	s.logger.Info("🛑 모션 시뮬레이터 중지")
}

// IsRunning - 루프 동작 여부
func (s *MotionSimulator) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// run - 시뮬레이션 메인 루프
func (s *MotionSimulator) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	// 오프라인 로봇 정리 (timeout 이 없으면 비활성)
	var cleanup <-chan time.Time
	if s.timeout > 0 {
		cleanupTicker := time.NewTicker(s.timeout)
		defer cleanupTicker.Stop()
		cleanup = cleanupTicker.C
	}

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Step(s.tick.Seconds())
		case <-cleanup:
			if n := s.registry.CleanupOffline(s.timeout); n > 0 {
				s.logger.Warn("🧹 오프라인 로봇 정리", zap.Int("count", n))
			}
		}
	}
}

// Step - dt 초만큼 모든 로봇을 경로를 따라 이동
func (s *MotionSimulator) Step(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry.TouchSimulated()

	var moved []models.RobotPositionReport
	now := float64(time.Now().UnixMilli()) / 1000.0

	s.registry.UpdateAll(func(r *models.RobotStatus) {
		if r.State != models.StateMoving || len(r.Path) == 0 {
			return
		}

		budget := s.speed * dt
		for budget > 0 && len(r.Path) > 0 {
			next := r.Path[0]
			dx := next.X - r.Position.X
			dy := next.Y - r.Position.Y
			distance := math.Hypot(dx, dy)

			if distance <= budget || distance < arrivalTolerance {
				r.Position.X, r.Position.Y = next.X, next.Y
				r.Path = r.Path[1:]
				budget -= distance
				continue
			}

			r.Position.Angle = math.Atan2(dy, dx)
			r.Position.X += (dx / distance) * budget
			r.Position.Y += (dy / distance) * budget
			budget = 0
		}
		r.Position.Timestamp = now

		if len(r.Path) == 0 {
			r.Path = nil
			r.State = models.StateStandby
			r.Speed = 0
			s.logger.Info("✅ 대기 위치 도착", zap.String("robot", r.ID),
				zap.Float64("x", r.Position.X), zap.Float64("y", r.Position.Y))
		}

		moved = append(moved, models.RobotPositionReport{
			RobotID: r.ID,
			X:       r.Position.X,
			Y:       r.Position.Y,
			Angle:   r.Position.Angle,
		})
	})

	for _, m := range moved {
		s.broadcast(models.MessageTypeRobotPosition, m)
	}
}

func (s *MotionSimulator) broadcast(msgType string, data interface{}) {
	if s.broadcastFunc == nil {
		return
	}
	s.broadcastFunc(models.WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

// alive - timeout 안에 보고가 있었던 로봇만
func (s *MotionSimulator) alive(robots []models.RobotStatus) []models.RobotStatus {
	if s.timeout <= 0 {
		return robots
	}
	out := make([]models.RobotStatus, 0, len(robots))
	for _, r := range robots {
		if s.registry.IsAlive(r.ID, s.timeout) {
			out = append(out, r)
		}
	}
	return out
}

// nearestIdle - target 에 가장 가까운 idle 로봇 (동률이면 ID 순)
func nearestIdle(robots []models.RobotStatus, target models.Point) *models.RobotStatus {
	var best *models.RobotStatus
	bestDist := math.MaxFloat64

	for i := range robots {
		r := &robots[i]
		if r.State != models.StateIdle {
			continue
		}
		d := math.Hypot(r.Position.X-target.X, r.Position.Y-target.Y)
		if d < bestDist {
			best = r
			bestDist = d
		}
	}
	return best
}

package services

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"pileup-backend/models"
)

// ScenarioGenerator - 시뮬레이션용 공/로봇 배치 생성
type ScenarioGenerator struct {
	field  models.FieldGeometry
	mu     sync.RWMutex
	active *models.Scenario
	rngMu  sync.Mutex
	rng    *rand.Rand
}

// NewScenarioGenerator - 생성기 생성
func NewScenarioGenerator(field models.FieldGeometry, rng *rand.Rand) *ScenarioGenerator {
	return &ScenarioGenerator{field: field, rng: rng}
}

type placed struct {
	p models.Point
	r float64
}

// Generate - 공 1개와 로봇들을 필드 안에 무작위 배치
//
// 로봇끼리, 로봇과 공이 겹치지 않도록 재시도한다.
func (g *ScenarioGenerator) Generate(robotIDs []string) *models.Scenario {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()

	scenario := &models.Scenario{
		ID:        uuid.New().String(),
		Field:     g.field,
		Ball:      g.randomPoint(0.05),
		Robots:    make(map[string]models.Point, len(robotIDs)),
		CreatedAt: time.Now(),
	}

	taken := []placed{{scenario.Ball, g.field.BallRadius}}

	for _, id := range robotIDs {
		var p models.Point
		for attempt := 0; attempt < 100; attempt++ {
			p = g.randomPoint(0.1)
			free := true
			for _, t := range taken {
				if math.Hypot(p.X-t.p.X, p.Y-t.p.Y) < t.r+g.field.RobotRadius*2 {
					free = false
					break
				}
			}
			if free {
				break
			}
		}
		scenario.Robots[id] = p
		taken = append(taken, placed{p, g.field.RobotRadius})
	}

	g.mu.Lock()
	g.active = scenario
	g.mu.Unlock()

	return scenario
}

// randomPoint - 경계 여백(margin 비율)을 둔 무작위 좌표
func (g *ScenarioGenerator) randomPoint(margin float64) models.Point {
	minX := -g.field.Width/2 + g.field.Width*margin
	maxX := g.field.Width/2 - g.field.Width*margin
	minY := g.field.Length * margin
	maxY := g.field.Length * (1 - margin)

	return models.Point{
		X: minX + g.rng.Float64()*(maxX-minX),
		Y: minY + g.rng.Float64()*(maxY-minY),
	}
}

// Active - 마지막으로 생성한 시나리오
func (g *ScenarioGenerator) Active() *models.Scenario {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.active
}

// Apply - 시나리오를 공 추적기와 레지스트리에 반영
//
// 배치된 로봇은 idle 상태의 시뮬레이터 로봇으로 초기화된다.
func (g *ScenarioGenerator) Apply(s *models.Scenario, ball *BallTracker, registry *RobotRegistry) error {
	ball.SetBall(s.Ball)

	for id, p := range s.Robots {
		if _, err := registry.Register(id, p); err != nil {
			return fmt.Errorf("로봇 배치 실패 (%s): %w", id, err)
		}
		err := registry.Update(id, func(r *models.RobotStatus) {
			r.State = models.StateIdle
			r.Target = nil
			r.Path = nil
			r.Speed = 0
			r.Simulated = true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// DefaultRobotIDs - robot-1 ... robot-n
func DefaultRobotIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("robot-%d", i+1)
	}
	return ids
}

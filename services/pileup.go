package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pileup-backend/algorithms"
	"pileup-backend/models"
)

// Play - 활성화 가능한 전술 단위
type Play interface {
	Name() string
	Activate() *models.Activation
}

// OutputChannel - 플레이 메시지 출력
type OutputChannel interface {
	Emit(message string)
}

// ActivationRecorder - 활성화 결과 기록 (LogBuffer 가 구현)
type ActivationRecorder interface {
	Record(a *models.Activation)
}

// PileupPlay - 공 주변 파일업 발생 시 대기 로봇 배치
type PileupPlay struct {
	field    models.FieldGeometry
	ball     BallProvider
	mover    Mover
	output   OutputChannel
	recorder ActivationRecorder
	rng      algorithms.RandomSource
	now      func() time.Time

	mu   sync.Mutex
	last *models.Activation

	// 현재 대기 로봇 ID (없으면 ""), mu 로 보호
	standbyBot1 string
	standbyBot2 string
}

// NewPileupPlay - 플레이 생성
//
// recorder 는 nil 이어도 된다.
func NewPileupPlay(field models.FieldGeometry, ball BallProvider, mover Mover, output OutputChannel, recorder ActivationRecorder, rng algorithms.RandomSource) *PileupPlay {
	return &PileupPlay{
		field:    field,
		ball:     ball,
		mover:    mover,
		output:   output,
		recorder: recorder,
		rng:      rng,
		now:      time.Now,
	}
}

// Name - 플레이 이름
func (p *PileupPlay) Name() string {
	return "pileup"
}

// Activate - 현재 공 위치로 계획을 새로 계산하고 로봇을 배정
//
// 필수 이동이 하나라도 배정되지 않으면 Complete 는 false 이다.
// 불법 구역이면 이동 요청 없이 메시지만 출력한다.
func (p *PileupPlay) Activate() *models.Activation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activate(p.ball.Ball())
}

// ActivateAt - 주어진 공 위치로 활성화
//
// 공 추적기 값과 무관하게 ball 로 계획하므로, 요청마다 공 위치를 넘기는
// 호출자끼리 서로의 위치를 덮어쓰지 않는다.
func (p *PileupPlay) ActivateAt(ball models.Point) *models.Activation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activate(ball)
}

// Standby - 현재 대기 로봇 ID 두 개
func (p *PileupPlay) Standby() (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.standbyBot1, p.standbyBot2
}

func (p *PileupPlay) activate(ball models.Point) *models.Activation {
	p.releasePrevious()

	plan := algorithms.ComputePileupPlan(ball, p.field, p.rng)

	activation := &models.Activation{
		ID:          uuid.New().String(),
		ActivatedAt: p.now(),
		Plan:        plan,
		Assignments: make([]models.Assignment, 0, len(plan.Targets)),
		Complete:    true,
	}

	for _, target := range plan.Targets {
		handle := p.mover.Move(target, models.Required)
		activation.Assignments = append(activation.Assignments, models.Assignment{
			Target:    target,
			RobotID:   handle.Robot(),
			Satisfied: handle.Satisfied(),
		})
		if !handle.Satisfied() {
			activation.Complete = false
		}
	}

	if len(activation.Assignments) > 0 {
		activation.StandbyBot1 = activation.Assignments[0].RobotID
	}
	if len(activation.Assignments) > 1 {
		activation.StandbyBot2 = activation.Assignments[1].RobotID
	}
	p.standbyBot1 = activation.StandbyBot1
	p.standbyBot2 = activation.StandbyBot2
	p.last = activation

	p.output.Emit(plan.Message)
	if p.recorder != nil {
		p.recorder.Record(activation)
	}

	return activation
}

// Last - 마지막 활성화 결과 (없으면 nil)
func (p *PileupPlay) Last() *models.Activation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// releasePrevious - 이전 활성화에서 배정한 로봇 해제
func (p *PileupPlay) releasePrevious() {
	releaser, ok := p.mover.(Releaser)
	if !ok {
		return
	}
	for _, id := range []string{p.standbyBot1, p.standbyBot2} {
		if id != "" {
			releaser.Release(id)
		}
	}
	p.standbyBot1, p.standbyBot2 = "", ""
}

// ========================================
// OutputChannel 구현
// ========================================

// ZapOutput - zap 로거로 출력
type ZapOutput struct {
	Logger *zap.Logger
}

func (o ZapOutput) Emit(message string) {
	o.Logger.Info("⚽ "+message, zap.String("play", "pileup"))
}

// BroadcastOutput - WebSocket play_event 메시지로 출력
type BroadcastOutput struct {
	Broadcast func(models.WebSocketMessage)
}

func (o BroadcastOutput) Emit(message string) {
	o.Broadcast(models.WebSocketMessage{
		Type:      models.MessageTypePlayEvent,
		Data:      map[string]interface{}{"play": "pileup", "message": message},
		Timestamp: time.Now().UnixMilli(),
	})
}

// MultiOutput - 여러 출력으로 전달
type MultiOutput []OutputChannel

func (m MultiOutput) Emit(message string) {
	for _, o := range m {
		o.Emit(message)
	}
}

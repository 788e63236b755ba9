package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"pileup-backend/models"
)

// LogBuffer - 플레이 로그 버퍼 (비동기 일괄 처리)
type LogBuffer struct {
	store     *PlayLogStore
	logger    *zap.Logger
	logs      []models.PlayLog
	mu        sync.Mutex
	flushSize int           // 일괄 저장 크기
	flushTime time.Duration // 자동 플러시 시간
	stopChan  chan struct{}
	done      chan struct{}
	started   bool
	once      sync.Once
}

// NewLogBuffer - 로그 버퍼 생성
//
// store 가 nil 이면 로그는 버퍼에서 버려진다.
func NewLogBuffer(store *PlayLogStore, flushSize int, flushInterval time.Duration, logger *zap.Logger) *LogBuffer {
	if flushSize <= 0 {
		flushSize = 50
	}
	return &LogBuffer{
		store:     store,
		logger:    logger,
		logs:      make([]models.PlayLog, 0, flushSize*2),
		flushSize: flushSize,
		flushTime: flushInterval,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start - 주기적 플러시 고루틴 시작
func (lb *LogBuffer) Start() {
	lb.mu.Lock()
	if lb.started {
		lb.mu.Unlock()
		return
	}
	lb.started = true
	lb.mu.Unlock()

	go lb.autoFlush()
	lb.logger.Info("✅ 로깅 시스템 시작",
		zap.Int("flushSize", lb.flushSize),
		zap.Duration("flushInterval", lb.flushTime))
}

// autoFlush - 주기적 로그 저장
func (lb *LogBuffer) autoFlush() {
	defer close(lb.done)

	ticker := time.NewTicker(lb.flushTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lb.Flush()
		case <-lb.stopChan:
			lb.Flush() // 종료 시 남은 로그 저장
			return
		}
	}
}

// Add - 로그 버퍼에 추가, 버퍼가 차면 즉시 플러시
func (lb *LogBuffer) Add(entry models.PlayLog) {
	lb.mu.Lock()
	lb.logs = append(lb.logs, entry)
	size := len(lb.logs)
	lb.mu.Unlock()

	if size >= lb.flushSize {
		lb.Flush()
	}
}

// Flush - 버퍼의 모든 로그를 DB에 저장
func (lb *LogBuffer) Flush() {
	lb.mu.Lock()
	if len(lb.logs) == 0 {
		lb.mu.Unlock()
		return
	}

	logsToSave := make([]models.PlayLog, len(lb.logs))
	copy(logsToSave, lb.logs)
	lb.logs = lb.logs[:0]
	lb.mu.Unlock()

	if lb.store == nil {
		return
	}

	if err := lb.store.Save(logsToSave); err != nil {
		lb.logger.Error("❌ 로그 저장 실패", zap.Error(err), zap.Int("count", len(logsToSave)))
		return
	}
	lb.logger.Debug("💾 로그 저장 완료", zap.Int("count", len(logsToSave)))
}

// Pending - 아직 저장되지 않은 로그 수
func (lb *LogBuffer) Pending() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return len(lb.logs)
}

// Stop - 자동 플러시 종료 (남은 로그 저장)
func (lb *LogBuffer) Stop() {
	lb.once.Do(func() {
		lb.mu.Lock()
		started := lb.started
		lb.mu.Unlock()

		if !started {
			lb.Flush()
			return
		}

		close(lb.stopChan)
		<-lb.done
		lb.logger.Info("🛑 로깅 시스템 종료")
	})
}

// Record - 플레이 활성화 결과를 로그로 변환해 버퍼에 추가
func (lb *LogBuffer) Record(a *models.Activation) {
	lb.Add(activationLog(a))
}

// activationLog - Activation → PlayLog
func activationLog(a *models.Activation) models.PlayLog {
	entry := models.PlayLog{
		CreatedAt:    a.ActivatedAt,
		ActivationID: a.ID,
		Region:       string(a.Plan.Region),
		Message:      a.Plan.Message,
		Option:       a.Plan.Option,
		BallX:        a.Plan.Ball.X,
		BallY:        a.Plan.Ball.Y,
		TargetCount:  len(a.Plan.Targets),
		StandbyBot1:  a.StandbyBot1,
		StandbyBot2:  a.StandbyBot2,
		Complete:     a.Complete,
	}

	if len(a.Plan.Targets) > 0 {
		entry.Target1X = a.Plan.Targets[0].X
		entry.Target1Y = a.Plan.Targets[0].Y
	}
	if len(a.Plan.Targets) > 1 {
		entry.Target2X = a.Plan.Targets[1].X
		entry.Target2Y = a.Plan.Targets[1].Y
	}

	return entry
}

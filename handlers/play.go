package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"pileup-backend/models"
)

// BallRequest - 공 위치 요청
type BallRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// PileupResponse - 플레이 활성화 응답
type PileupResponse struct {
	Success    bool               `json:"success"`
	Activation *models.Activation `json:"activation,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// HandleGetField - 필드 치수 조회
func (h *Handler) HandleGetField(c *fiber.Ctx) error {
	return c.JSON(h.Field)
}

// HandleGetBall - 공 위치 조회
func (h *Handler) HandleGetBall(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ball":        h.Ball.Ball(),
		"last_update": h.Ball.LastUpdate().Format(time.RFC3339),
	})
}

// HandleSetBall - 공 위치 갱신
func (h *Handler) HandleSetBall(c *fiber.Ctx) error {
	p, err := h.parseBall(c, true)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	h.Ball.SetBall(*p)
	h.Logger.Info("⚽ 공 위치 갱신", zap.Float64("x", p.X), zap.Float64("y", p.Y))

	return c.JSON(fiber.Map{
		"success": true,
		"ball":    p,
	})
}

// HandleActivatePileup - 파일업 플레이 활성화
//
// 본문에 x, y 가 있으면 공 위치를 갱신하고 그 위치로 계획한다.
func (h *Handler) HandleActivatePileup(c *fiber.Ctx) error {
	p, err := h.parseBall(c, false)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	var activation *models.Activation
	if p != nil {
		h.Ball.SetBall(*p)
		activation = h.Play.ActivateAt(*p)
	} else {
		activation = h.Play.Activate()
	}
	h.broadcastActivation(activation)

	return c.JSON(PileupResponse{
		Success:    true,
		Activation: activation,
		Message:    activation.Plan.Message,
	})
}

// HandleLastPileup - 마지막 활성화 결과
func (h *Handler) HandleLastPileup(c *fiber.Ctx) error {
	last := h.Play.Last()
	if last == nil {
		return errorJSON(c, fiber.StatusNotFound, "아직 활성화된 적이 없습니다")
	}
	return c.JSON(PileupResponse{Success: true, Activation: last, Message: last.Plan.Message})
}

// HandleGenerateScenario - 무작위 시나리오 생성 후 적용
func (h *Handler) HandleGenerateScenario(c *fiber.Ctx) error {
	ids := h.Registry.IDs()
	if len(ids) == 0 {
		return errorJSON(c, fiber.StatusConflict, "등록된 로봇이 없습니다")
	}

	scenario := h.Scenarios.Generate(ids)
	if err := h.Scenarios.Apply(scenario, h.Ball, h.Registry); err != nil {
		h.Logger.Error("❌ 시나리오 적용 실패", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "시나리오 적용 실패")
	}

	h.Hub.BroadcastMessage(models.WebSocketMessage{
		Type:      models.MessageTypeScenario,
		Data:      scenario,
		Timestamp: time.Now().UnixMilli(),
	})

	return c.JSON(fiber.Map{
		"success":  true,
		"scenario": scenario,
	})
}

// parseBall - 본문에서 공 위치 읽기
//
// required 가 false 이고 본문이 비어 있으면 (nil, nil).
func (h *Handler) parseBall(c *fiber.Ctx, required bool) (*models.Point, error) {
	if len(c.Body()) == 0 {
		if required {
			return nil, fiber.NewError(fiber.StatusBadRequest, "x, y 가 필요합니다")
		}
		return nil, nil
	}

	var req BallRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "잘못된 요청 형식입니다")
	}
	if req.X == nil || req.Y == nil {
		if required {
			return nil, fiber.NewError(fiber.StatusBadRequest, "x, y 가 필요합니다")
		}
		return nil, nil
	}

	p := models.Point{X: *req.X, Y: *req.Y}
	if !h.Field.Contains(p) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "공 위치가 필드 밖입니다")
	}
	return &p, nil
}

func (h *Handler) broadcastActivation(a *models.Activation) {
	h.Hub.BroadcastMessage(models.WebSocketMessage{
		Type:      models.MessageTypePlayResult,
		Data:      a,
		Timestamp: time.Now().UnixMilli(),
	})
}

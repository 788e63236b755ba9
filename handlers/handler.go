package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"pileup-backend/models"
	"pileup-backend/services"
)

// Handler - HTTP/WebSocket 핸들러 의존성
type Handler struct {
	Field     models.FieldGeometry
	Play      *services.PileupPlay
	Ball      *services.BallTracker
	Registry  *services.RobotRegistry
	Scenarios *services.ScenarioGenerator
	Store     *services.PlayLogStore // nil 이면 로그 API는 503
	Hub       *ClientManager
	Logger    *zap.Logger
	StartedAt time.Time
}

// Register - 라우트 등록
func (h *Handler) Register(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Pileup 서버가 실행 중입니다.")
	})

	api := app.Group("/api")
	api.Get("/health", h.HandleHealth)

	api.Get("/field", h.HandleGetField)
	api.Get("/ball", h.HandleGetBall)
	api.Post("/ball", h.HandleSetBall)
	api.Post("/plays/pileup", h.HandleActivatePileup)
	api.Get("/plays/pileup", h.HandleLastPileup)

	api.Get("/robots", h.HandleListRobots)
	api.Get("/robots/stats", h.HandleRobotStats)
	api.Get("/robots/:id", h.HandleGetRobot)
	api.Delete("/robots/:id", h.HandleRemoveRobot)

	api.Post("/scenario", h.HandleGenerateScenario)

	logsAPI := api.Group("/logs")
	logsAPI.Get("/recent", h.HandleGetRecentLogs)
	logsAPI.Get("/range", h.HandleGetLogsByTimeRange)
	logsAPI.Get("/region", h.HandleGetLogsByRegion)
	logsAPI.Get("/stats", h.HandleGetLogStats)

	// WebSocket
	app.Use("/websocket", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/websocket/robot", websocket.New(h.HandleRobotWebSocket))
	app.Get("/websocket/web", websocket.New(h.HandleWebClientWebSocket))
}

// HandleHealth - 상태 확인
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "OK",
		"clients": h.Hub.GetClientCount(),
		"robots":  h.Registry.Count(),
		"uptime":  int64(time.Since(h.StartedAt).Seconds()),
		"time":    time.Now().Format(time.RFC3339),
	})
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

package handlers

import (
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pileup-backend/models"
	"pileup-backend/services"
)

type testEnv struct {
	app      *fiber.App
	handler  *Handler
	registry *services.RobotRegistry
	logs     *services.LogBuffer
}

func newTestEnv(t *testing.T, withStore bool) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	cfg := &services.Config{
		Field:        models.DefaultField(),
		RobotSpeed:   1.5,
		GridCellSize: 0.1,
		TickInterval: 100 * time.Millisecond,
	}

	hub := NewClientManager(logger)
	registry := services.NewRobotRegistry(logger)
	_, _ = registry.Register("robot-1", models.Point{X: -2, Y: 6})
	_, _ = registry.Register("robot-2", models.Point{X: 2, Y: 3})

	var store *services.PlayLogStore
	if withStore {
		db, err := services.OpenDatabase(services.DBConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(t.TempDir(), "plays.db"),
		}, logger)
		require.NoError(t, err)
		store = services.NewPlayLogStore(db)
	}
	logs := services.NewLogBuffer(store, 100, time.Hour, logger)

	ball := services.NewBallTracker(models.Point{X: 0, Y: 4.5})
	sim := services.NewMotionSimulator(cfg, registry, hub.BroadcastMessage, logger)
	play := services.NewPileupPlay(cfg.Field, ball, sim, services.ZapOutput{Logger: logger}, logs, rand.New(rand.NewSource(1)))

	h := &Handler{
		Field:     cfg.Field,
		Play:      play,
		Ball:      ball,
		Registry:  registry,
		Scenarios: services.NewScenarioGenerator(cfg.Field, rand.New(rand.NewSource(2))),
		Store:     store,
		Hub:       hub,
		Logger:    logger,
		StartedAt: time.Now(),
	}

	app := fiber.New()
	h.Register(app)
	return &testEnv{app: app, handler: h, registry: registry, logs: logs}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)

	status, body := env.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, float64(2), body["robots"])
}

func TestActivatePileup_Corner(t *testing.T) {
	env := newTestEnv(t, false)

	status, body := env.do(t, http.MethodPost, "/api/plays/pileup", `{"x": -2, "y": 8}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pileup in attacking left corner", body["message"])

	activation := body["activation"].(map[string]interface{})
	plan := activation["plan"].(map[string]interface{})
	assert.Equal(t, "attacking_left_corner", plan["region"])
	assert.Equal(t, map[string]interface{}{"x": float64(-2), "y": float64(8)}, plan["ball"])
	assert.Len(t, plan["targets"], 1)
	assert.Equal(t, "robot-1", activation["standby_bot1"])
	assert.Equal(t, true, activation["complete"])

	assert.Equal(t, models.Point{X: -2, Y: 8}, env.handler.Ball.Ball())
	bot1, _ := env.handler.Play.Standby()
	assert.Equal(t, "robot-1", bot1)
}

func TestActivatePileup_IllegalZone(t *testing.T) {
	env := newTestEnv(t, false)

	status, body := env.do(t, http.MethodPost, "/api/plays/pileup", `{"x": 0, "y": 0.5}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pileup in illegal zone. this should never occur.", body["message"])

	activation := body["activation"].(map[string]interface{})
	assert.Empty(t, activation["plan"].(map[string]interface{})["targets"])
	assert.NotContains(t, activation, "standby_bot1")

	for _, r := range env.registry.List() {
		assert.Equal(t, models.StateIdle, r.State)
	}
}

func TestActivatePileup_UsesTrackedBall(t *testing.T) {
	env := newTestEnv(t, false)

	status, _ := env.do(t, http.MethodPost, "/api/ball", `{"x": 2, "y": 4}`)
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodPost, "/api/plays/pileup", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pileup in right flank", body["message"])

	activation := body["activation"].(map[string]interface{})
	assert.NotEmpty(t, activation["standby_bot1"])
	assert.NotEmpty(t, activation["standby_bot2"])

	status, last := env.do(t, http.MethodGet, "/api/plays/pileup", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, activation["id"], last["activation"].(map[string]interface{})["id"])
}

func TestSetBall_Validation(t *testing.T) {
	env := newTestEnv(t, false)

	status, _ := env.do(t, http.MethodPost, "/api/ball", `{"x": 10, "y": 4}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/ball", `{"x": 1}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/ball", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/plays/pileup", `{"x": 0, "y": -1}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLastPileup_NotActivated(t *testing.T) {
	env := newTestEnv(t, false)

	status, _ := env.do(t, http.MethodGet, "/api/plays/pileup", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRobotsEndpoints(t *testing.T) {
	env := newTestEnv(t, false)

	status, body := env.do(t, http.MethodGet, "/api/robots", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, body = env.do(t, http.MethodGet, "/api/robots/robot-2", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "robot-2", body["id"])

	status, _ = env.do(t, http.MethodGet, "/api/robots/ghost", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodGet, "/api/robots/stats", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["stats"].(map[string]interface{})["idle"])

	status, _ = env.do(t, http.MethodDelete, "/api/robots/robot-2", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, env.registry.Count())
}

func TestGenerateScenario(t *testing.T) {
	env := newTestEnv(t, false)

	status, body := env.do(t, http.MethodPost, "/api/scenario", "")
	require.Equal(t, http.StatusOK, status)

	scenario := body["scenario"].(map[string]interface{})
	assert.NotEmpty(t, scenario["id"])
	assert.Len(t, scenario["robots"], 2)

	ball := scenario["ball"].(map[string]interface{})
	assert.Equal(t, models.Point{X: ball["x"].(float64), Y: ball["y"].(float64)}, env.handler.Ball.Ball())
}

func TestLogs_StoreDisabled(t *testing.T) {
	env := newTestEnv(t, false)

	status, _ := env.do(t, http.MethodGet, "/api/logs/recent", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestLogs_AfterActivation(t *testing.T) {
	env := newTestEnv(t, true)

	env.do(t, http.MethodPost, "/api/plays/pileup", `{"x": -2, "y": 4}`)
	env.do(t, http.MethodPost, "/api/plays/pileup", `{"x": 0, "y": 8.5}`)
	env.logs.Flush()

	status, body := env.do(t, http.MethodGet, "/api/logs/recent?limit=10", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, body = env.do(t, http.MethodGet, "/api/logs/region?region=left_flank", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	status, _ = env.do(t, http.MethodGet, "/api/logs/region?region=nowhere", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodGet, "/api/logs/range?start=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, "/api/logs/stats?hours=1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["stats"].(map[string]interface{})["total"])
}

func TestWebSocketRouteRequiresUpgrade(t *testing.T) {
	env := newTestEnv(t, false)

	status, _ := env.do(t, http.MethodGet, "/websocket/web", "")
	assert.Equal(t, http.StatusUpgradeRequired, status)
}

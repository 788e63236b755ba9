package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pileup-backend/algorithms"
	"pileup-backend/handlers"
	"pileup-backend/models"
	"pileup-backend/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pileup-backend",
		Short:        "로봇 축구 파일업 대기 위치 서버",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env 파일 로드 (없어도 진행)
			if err := godotenv.Load(); err != nil {
				fmt.Fprintln(os.Stderr, "⚠️  .env 파일을 찾을 수 없습니다.")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "HTTP/WebSocket 서버 실행",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})
	root.AddCommand(newPlanCmd())

	return root
}

// newPlanCmd - 공 위치 하나에 대한 계획을 JSON으로 출력
func newPlanCmd() *cobra.Command {
	var x, y float64
	var seed int64

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "공 위치를 분류하고 대기 지점을 출력",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := services.LoadConfig()
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			plan := algorithms.ComputePileupPlan(models.Point{X: x, Y: y}, cfg.Field, rand.New(rand.NewSource(seed)))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Boundaries algorithms.Boundaries `json:"boundaries"`
				Plan       models.PileupPlan     `json:"plan"`
			}{algorithms.NewBoundaries(cfg.Field), plan})
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "공 X 좌표 (m)")
	cmd.Flags().Float64Var(&y, "y", 0, "공 Y 좌표 (m)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "center_field 분기용 난수 시드 (0 = 현재 시각)")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")

	return cmd
}

func runServe() error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := services.LoadConfig()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// DB 연결
	db, err := services.OpenDatabase(cfg.DB, log)
	if err != nil {
		log.Fatal("❌ DB 초기화 실패", zap.Error(err))
	}
	var store *services.PlayLogStore
	if db != nil {
		store = services.NewPlayLogStore(db)
	}

	// 로깅 시스템 (flushSize 개마다 또는 flushInterval 마다 일괄 저장)
	logBuffer := services.NewLogBuffer(store, cfg.LogFlushSize, cfg.LogFlushInterval, log)
	logBuffer.Start()
	defer logBuffer.Stop()

	hub := handlers.NewClientManager(log)
	go hub.Start()
	defer hub.Stop()

	registry := services.NewRobotRegistry(log)
	ball := services.NewBallTracker(models.Point{X: 0, Y: cfg.Field.Length / 2})
	scenarios := services.NewScenarioGenerator(cfg.Field, rand.New(rand.NewSource(seed)))

	// 초기 배치
	scenario := scenarios.Generate(services.DefaultRobotIDs(cfg.RobotCount))
	if err := scenarios.Apply(scenario, ball, registry); err != nil {
		return err
	}

	sim := services.NewMotionSimulator(cfg, registry, hub.BroadcastMessage, log)
	sim.Start()
	defer sim.Stop()

	output := services.MultiOutput{
		services.ZapOutput{Logger: log},
		services.BroadcastOutput{Broadcast: hub.BroadcastMessage},
	}
	play := services.NewPileupPlay(cfg.Field, ball, sim, output, logBuffer, rand.New(rand.NewSource(seed+1)))

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:5173, http://localhost:3000",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	h := &handlers.Handler{
		Field:     cfg.Field,
		Play:      play,
		Ball:      ball,
		Registry:  registry,
		Scenarios: scenarios,
		Store:     store,
		Hub:       hub,
		Logger:    log,
		StartedAt: time.Now(),
	}
	h.Register(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("🛑 종료 신호 수신")
		_ = app.Shutdown()
	}()

	log.Info("🚀 서버 시작",
		zap.String("addr", cfg.Addr),
		zap.Float64("field_length", cfg.Field.Length),
		zap.Float64("field_width", cfg.Field.Width),
		zap.Int("robots", cfg.RobotCount))
	log.Info("📡 WebSocket: /websocket/web, /websocket/robot")
	log.Info("⚽ 플레이 API: POST /api/plays/pileup")

	return app.Listen(cfg.Addr)
}

package services

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pileup-backend/models"
)

// Config - 서버 설정 (환경 변수 + 필드 YAML)
type Config struct {
	Addr       string
	RobotCount int
	Seed       int64 // 0이면 현재 시각 사용

	Field models.FieldGeometry
	DB    DBConfig

	LogFlushSize     int
	LogFlushInterval time.Duration

	TickInterval time.Duration
	RobotSpeed   float64 // m/s
	GridCellSize float64 // m
	RobotTimeout time.Duration // 이 시간 동안 위치 보고가 없으면 레지스트리에서 제거
}

// DBConfig - 데이터베이스 설정
type DBConfig struct {
	Driver     string // "sqlite" | "mysql" | "none"
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SQLitePath string
}

// ErrInvalidConfig - 범위를 벗어난 설정 값
var ErrInvalidConfig = errors.New("invalid config")

// fieldFile - 필드 YAML 파일 형식
type fieldFile struct {
	Field models.FieldGeometry `yaml:"field"`
}

// LoadConfig - 환경 변수에서 설정 읽기
//
// godotenv.Load 는 호출 전에 끝나 있어야 한다.
func LoadConfig() (*Config, error) {
	field := models.DefaultField()

	fieldPath := envString("FIELD_CONFIG", "field.yaml")
	if f, err := LoadFieldFile(fieldPath); err == nil {
		field = f
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("필드 설정 읽기 실패 (%s): %w", fieldPath, err)
	}

	var err error
	if field.Length, err = envFloat("FIELD_LENGTH", field.Length); err != nil {
		return nil, err
	}
	if field.Width, err = envFloat("FIELD_WIDTH", field.Width); err != nil {
		return nil, err
	}
	if field.RobotRadius, err = envFloat("ROBOT_RADIUS", field.RobotRadius); err != nil {
		return nil, err
	}
	if field.BallRadius, err = envFloat("BALL_RADIUS", field.BallRadius); err != nil {
		return nil, err
	}
	if err := field.Validate(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:             envString("SERVER_ADDR", ":3000"),
		Field:            field,
		LogFlushInterval: 10 * time.Second,
		TickInterval:     100 * time.Millisecond, // 10Hz
		DB: DBConfig{
			Driver:     strings.ToLower(envString("DB_DRIVER", "sqlite")),
			Host:       os.Getenv("MYSQL_HOST"),
			User:       os.Getenv("MYSQL_USER"),
			Password:   os.Getenv("MYSQL_PASSWORD"),
			Name:       os.Getenv("MYSQL_DATABASE"),
			SQLitePath: envString("SQLITE_PATH", "pileup.db"),
		},
	}

	if cfg.RobotCount, err = envInt("ROBOT_COUNT", 6); err != nil {
		return nil, err
	}
	if cfg.DB.Port, err = envInt("MYSQL_PORT", 3306); err != nil {
		return nil, err
	}
	if cfg.LogFlushSize, err = envInt("LOG_FLUSH_SIZE", 50); err != nil {
		return nil, err
	}
	if cfg.RobotSpeed, err = envFloat("ROBOT_SPEED", 1.5); err != nil {
		return nil, err
	}
	if cfg.GridCellSize, err = envFloat("GRID_CELL_SIZE", 0.1); err != nil {
		return nil, err
	}
	if cfg.RobotTimeout, err = envDuration("ROBOT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	seed, err := envInt("RANDOM_SEED", 0)
	if err != nil {
		return nil, err
	}
	cfg.Seed = int64(seed)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate - 시뮬레이터와 버퍼가 그대로 쓸 수 있는 값인지 확인
func (c *Config) validate() error {
	switch {
	case c.RobotCount < 0:
		return fmt.Errorf("%w: ROBOT_COUNT=%d", ErrInvalidConfig, c.RobotCount)
	case c.LogFlushSize <= 0:
		return fmt.Errorf("%w: LOG_FLUSH_SIZE=%d", ErrInvalidConfig, c.LogFlushSize)
	case !(c.RobotSpeed > 0) || math.IsInf(c.RobotSpeed, 1):
		return fmt.Errorf("%w: ROBOT_SPEED=%v", ErrInvalidConfig, c.RobotSpeed)
	case !(c.GridCellSize > 0) || math.IsInf(c.GridCellSize, 1):
		return fmt.Errorf("%w: GRID_CELL_SIZE=%v", ErrInvalidConfig, c.GridCellSize)
	case c.RobotTimeout <= 0:
		return fmt.Errorf("%w: ROBOT_TIMEOUT=%s", ErrInvalidConfig, c.RobotTimeout)
	}
	return nil
}

// LoadFieldFile - YAML 파일에서 필드 치수 읽기
func LoadFieldFile(path string) (models.FieldGeometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.FieldGeometry{}, err
	}

	file := fieldFile{Field: models.DefaultField()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return models.FieldGeometry{}, fmt.Errorf("YAML 파싱 실패: %w", err)
	}
	if err := file.Field.Validate(); err != nil {
		return models.FieldGeometry{}, err
	}
	return file.Field, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: 정수가 아닙니다: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: 실수가 아닙니다: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: 시간 형식이 아닙니다: %w", key, err)
	}
	return d, nil
}

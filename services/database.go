package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pileup-backend/models"
)

// OpenDatabase - 설정된 드라이버로 DB 연결 후 마이그레이션
//
// Driver 가 "none" 이면 (nil, nil)을 반환하고 로그는 저장되지 않는다.
func OpenDatabase(cfg DBConfig, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "none":
		logger.Warn("⚠️ DB 비활성화: 플레이 로그가 저장되지 않습니다")
		return nil, nil
	case "mysql":
		if cfg.Host == "" || cfg.User == "" || cfg.Password == "" || cfg.Name == "" {
			return nil, fmt.Errorf("MySQL 환경 변수가 모두 설정되지 않았습니다: MYSQL_HOST, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE")
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("지원하지 않는 DB 드라이버: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("DB 연결 실패: %w", err)
	}

	// AutoMigrate - 테이블 자동 생성
	if err := db.AutoMigrate(&models.PlayLog{}); err != nil {
		return nil, fmt.Errorf("마이그레이션 실패: %w", err)
	}

	logger.Info("✅ DB 연결 및 마이그레이션 완료", zap.String("driver", dialector.Name()))
	return db, nil
}

// PlayLogStore - 플레이 로그 저장/조회
type PlayLogStore struct {
	db *gorm.DB
}

// NewPlayLogStore - 저장소 생성
func NewPlayLogStore(db *gorm.DB) *PlayLogStore {
	return &PlayLogStore{db: db}
}

// Save - 로그 일괄 저장
func (s *PlayLogStore) Save(logs []models.PlayLog) error {
	if len(logs) == 0 {
		return nil
	}
	return s.db.CreateInBatches(logs, 100).Error
}

// Recent - 최근 로그 조회
func (s *PlayLogStore) Recent(limit int) ([]models.PlayLog, error) {
	var logs []models.PlayLog
	err := s.db.Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// ByRegion - 영역별 로그 조회
func (s *PlayLogStore) ByRegion(region models.Region, limit int) ([]models.PlayLog, error) {
	var logs []models.PlayLog
	err := s.db.Where("region = ?", string(region)).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// ByTimeRange - 시간 범위로 로그 조회
func (s *PlayLogStore) ByTimeRange(start, end time.Time, limit int) ([]models.PlayLog, error) {
	var logs []models.PlayLog
	query := s.db.Where("created_at BETWEEN ? AND ?", start, end)

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Order("created_at DESC").Find(&logs).Error
	return logs, err
}

// PlayStats - 로그 통계
type PlayStats struct {
	Total      int64                `json:"total"`
	Incomplete int64                `json:"incomplete"`
	Regions    []models.RegionCount `json:"regions"`
	Since      time.Time            `json:"since"`
}

// Stats - 최근 hours 시간 동안의 영역별 통계
func (s *PlayLogStore) Stats(hours int) (*PlayStats, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	stats := &PlayStats{Since: since, Regions: []models.RegionCount{}}

	base := s.db.Model(&models.PlayLog{}).Where("created_at >= ?", since)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("complete = ?", false).Count(&stats.Incomplete).Error; err != nil {
		return nil, err
	}

	err := base.Session(&gorm.Session{}).
		Select("region, COUNT(*) as count").
		Group("region").
		Order("region").
		Scan(&stats.Regions).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

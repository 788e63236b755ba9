package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"pileup-backend/models"
)

func queryLimit(c *fiber.Ctx) int {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	return limit
}

// HandleGetRecentLogs - 최근 로그 조회
func (h *Handler) HandleGetRecentLogs(c *fiber.Ctx) error {
	if h.Store == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "로그 저장소가 비활성화되어 있습니다")
	}

	logs, err := h.Store.Recent(queryLimit(c))
	if err != nil {
		h.Logger.Error("❌ 로그 조회 실패", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch logs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"logs":    logs,
	})
}

// HandleGetLogsByTimeRange - 시간 범위로 로그 조회
func (h *Handler) HandleGetLogsByTimeRange(c *fiber.Ctx) error {
	if h.Store == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "로그 저장소가 비활성화되어 있습니다")
	}

	// 기본: 최근 24시간
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now()

	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid start time format (use RFC3339)")
		}
		start = parsed
	}
	if e := c.Query("end"); e != "" {
		parsed, err := time.Parse(time.RFC3339, e)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid end time format (use RFC3339)")
		}
		end = parsed
	}

	logs, err := h.Store.ByTimeRange(start, end, queryLimit(c))
	if err != nil {
		h.Logger.Error("❌ 로그 조회 실패", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch logs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"time_range": fiber.Map{
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
		},
		"logs": logs,
	})
}

// HandleGetLogsByRegion - 영역별 로그 조회
func (h *Handler) HandleGetLogsByRegion(c *fiber.Ctx) error {
	if h.Store == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "로그 저장소가 비활성화되어 있습니다")
	}

	region := models.Region(c.Query("region"))
	if !region.IsValid() {
		return errorJSON(c, fiber.StatusBadRequest, "region parameter is required")
	}

	logs, err := h.Store.ByRegion(region, queryLimit(c))
	if err != nil {
		h.Logger.Error("❌ 로그 조회 실패", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch logs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(logs),
		"region":  region,
		"logs":    logs,
	})
}

// HandleGetLogStats - 로그 통계 조회
func (h *Handler) HandleGetLogStats(c *fiber.Ctx) error {
	if h.Store == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "로그 저장소가 비활성화되어 있습니다")
	}

	hours, err := strconv.Atoi(c.Query("hours", "24"))
	if err != nil || hours <= 0 {
		hours = 24
	}

	stats, err := h.Store.Stats(hours)
	if err != nil {
		h.Logger.Error("❌ 통계 조회 실패", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to fetch stats")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}

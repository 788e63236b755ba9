package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pileup-backend/services"
)

// HandleListRobots - 모든 로봇 상태
func (h *Handler) HandleListRobots(c *fiber.Ctx) error {
	robots := h.Registry.List()
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(robots),
		"robots":  robots,
	})
}

// HandleGetRobot - 로봇 하나 조회
func (h *Handler) HandleGetRobot(c *fiber.Ctx) error {
	status, err := h.Registry.Get(c.Params("id"))
	if errors.Is(err, services.ErrRobotNotFound) {
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(status)
}

// HandleRemoveRobot - 로봇 등록 해제
func (h *Handler) HandleRemoveRobot(c *fiber.Ctx) error {
	err := h.Registry.Remove(c.Params("id"))
	if errors.Is(err, services.ErrRobotNotFound) {
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleRobotStats - 상태별 로봇 수
func (h *Handler) HandleRobotStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"stats":   h.Registry.Statistics(),
	})
}

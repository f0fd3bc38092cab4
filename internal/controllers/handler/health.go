package handler

import (
	"community/internal/application/entity"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck godoc
// @Summary     Агрегированное состояние сервиса
// @Description Возвращает последний снапшот проверок зависимостей (PostgreSQL, Kafka, конфигурация, downstream API) со сводкой по статусам. Параметр refresh=true запускает проверки синхронно, grouped=true группирует проверки по подсистемам.
// @Produce     json
// @Param       refresh  query    bool false "Выполнить проверки сейчас, не дожидаясь фонового опроса"
// @Param       grouped  query    bool false "Сгруппировать проверки по подсистемам"
// @Success     200   {object} entity.HealthCheckResponse "Все критические проверки healthy"
// @Failure     503   {object} entity.HealthCheckResponse "Есть критическая unhealthy проверка"
// @tags        Health
// @Router      /health [get]
func (h *HandlerImpl) HealthCheck(c *fiber.Ctx) error {
	var snapshot *entity.HealthCheckResponse
	var lastErr string

	if c.QueryBool("refresh") {
		snapshot = h.usecase.RefreshHealth(c.Context())
	} else {
		snapshot, lastErr = h.usecase.HealthSnapshot()
		if snapshot == nil {
			// фоновый опрос ещё не успел собрать первый снапшот
			snapshot = h.usecase.RefreshHealth(c.Context())
		}
	}

	status := fiber.StatusOK
	if snapshot.Status == entity.StatusUnhealthy {
		status = fiber.StatusServiceUnavailable
	}

	if c.QueryBool("grouped") {
		return c.Status(status).JSON(fiber.Map{
			"status":       snapshot.Status,
			"statusLabel":  entity.DisplayFor(snapshot.Status).Label,
			"responseTime": snapshot.ResponseTime,
			"summary":      snapshot.Summary,
			"groups":       entity.GroupByService(snapshot.Checks),
			"lastError":    lastErr,
		})
	}

	if lastErr != "" {
		return c.Status(status).JSON(fiber.Map{
			"status":       snapshot.Status,
			"responseTime": snapshot.ResponseTime,
			"summary":      snapshot.Summary,
			"checks":       snapshot.Checks,
			"lastError":    lastErr,
		})
	}

	return c.Status(status).JSON(snapshot)
}

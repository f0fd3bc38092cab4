package handler

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"community/internal/appers"
	"community/internal/application/entity"
	"community/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
)

// CreateEvent godoc
// @Summary     Создание события сообщества
// @Description Создаёт новое событие и записывает его в БД (только администратор)
// @Accept      json
// @Produce     json
// @Param       body  body     entity.Event  true  "Данные события"
// @Success     200
// @Failure     400
// @Failure     401
// @Failure     403
// @Failure     409
// @Failure     500
// @tags        Events
// @Router      /api/v1/events [post]
func (h *HandlerImpl) CreateEvent(c *fiber.Ctx) error {
	var event entity.Event
	err := c.BodyParser(&event)
	if err != nil {
		h.logger.Errorf("error parsing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	// Валидация структуры
	if err = validator.Validate.Struct(&event); err != nil {
		h.logger.Warnf("validation error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(formatValidationErrors(err))
	}

	// Логическая валидация дат
	if err = validateEventDates(&event); err != nil {
		h.logger.Warnf("date validation error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if event.CreatedBy == "" {
		event.CreatedBy = sessionFrom(c).UserID
	}

	err = h.usecase.CreateEvent(c.Context(), event)
	switch {
	case errors.Is(err, appers.ErrEventAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"description": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"description": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"description": "ok"})
}

// GetEventsByPeriod godoc
// @Summary     События за период
// @Description Возвращает события за период, заданный query-параметрами start и end, в порядке начала
// @Produce     json
// @Param       start  query    string true "Начало периода (например, 2026-09-01T00:00:00Z)"
// @Param       end    query    string true "Конец периода (например, 2026-09-30T23:59:59Z)"
// @Success     200    {array}  entity.EventResponse
// @Failure     400
// @Failure     500
// @tags        Events
// @Router      /api/v1/events [get]
func (h *HandlerImpl) GetEventsByPeriod(c *fiber.Ctx) error {
	startStr := c.Query("start")
	endStr := c.Query("end")

	if startStr == "" || endStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "start and end are required",
		})
	}

	// Декодируем URL-encoded параметры
	var err error
	startStr, err = url.QueryUnescape(startStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid start parameter encoding",
		})
	}
	endStr, err = url.QueryUnescape(endStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid end parameter encoding",
		})
	}

	// Убираем кавычки, если они есть
	startStr = strings.Trim(startStr, `"`)
	endStr = strings.Trim(endStr, `"`)

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid start format, expected RFC3339 (e.g., 2026-09-01T00:00:00Z)",
		})
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid end format, expected RFC3339 (e.g., 2026-09-30T23:59:59Z)",
		})
	}
	start = start.UTC()
	end = end.UTC()

	events, err := h.usecase.GetEvents(c.Context(), start, end)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(events)
}

// UpdateEvent godoc
// @Summary     Обновление события
// @Description Обновляет существующее событие по данным из тела запроса (только администратор)
// @Accept      json
// @Produce     json
// @Param       body  body     entity.Event  true  "Данные события для обновления"
// @Success     200
// @Failure     400
// @Failure     401
// @Failure     403
// @Failure     404
// @Failure     500
// @tags        Events
// @Router      /api/v1/events [patch]
func (h *HandlerImpl) UpdateEvent(c *fiber.Ctx) error {
	var event entity.Event
	err := c.BodyParser(&event)
	if err != nil {
		h.logger.Errorf("error parsing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err = validator.Validate.Struct(&event); err != nil {
		h.logger.Warnf("validation error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(formatValidationErrors(err))
	}

	if err = validateEventDates(&event); err != nil {
		h.logger.Warnf("date validation error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err = h.usecase.UpdateEvent(c.Context(), event)
	switch {
	case errors.Is(err, appers.ErrEventNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"description": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"description": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"description": "ok"})
}

// DeleteEvent godoc
// @Summary     Удаление события
// @Description Удаляет событие по идентификатору (только администратор)
// @Produce     json
// @Param       id   path     string  true  "ID события"
// @Success     200
// @Failure     401
// @Failure     403
// @Failure     404
// @Failure     500
// @tags        Events
// @Router      /api/v1/events/{id} [delete]
func (h *HandlerImpl) DeleteEvent(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.FromString(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid event id",
		})
	}
	err := h.usecase.DeleteEvent(c.Context(), id)
	switch {
	case errors.Is(err, appers.ErrEventNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"description": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"description": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"description": "ok"})
}

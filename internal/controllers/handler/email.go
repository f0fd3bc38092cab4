package handler

import (
	"community/internal/appers"
	"community/internal/application/entity"

	"github.com/gofiber/fiber/v2"
)

// GetEmailPreferences godoc
// @Summary     Текущие подписки по токену из письма
// @Produce     json
// @Param       token path string true "Opaque-токен управления подпиской"
// @Success     200 {object} entity.EmailPreferences
// @Failure     404 "Токен не найден"
// @Failure     410 "Срок действия токена истёк"
// @tags        Email
// @Router      /api/email/manage/{token} [get]
func (h *HandlerImpl) GetEmailPreferences(c *fiber.Ctx) error {
	prefs, err := h.usecase.GetPreferences(c.Context(), c.Params("token"))
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(prefs)
}

// UpdateEmailPreferences godoc
// @Summary     Обновление подписок
// @Description Либо unsubscribeAll:true (сбрасывает все три категории), либо subscriptions с точечными флагами newsletters/events/announcements
// @Accept      json
// @Produce     json
// @Param       token path string true "Opaque-токен управления подпиской"
// @Param       body  body  entity.ManagePreferencesRequest true "Запрошенные изменения"
// @Success     200 {object} entity.EmailPreferences
// @Failure     400
// @Failure     404 "Токен не найден"
// @Failure     410 "Срок действия токена истёк"
// @tags        Email
// @Router      /api/email/manage/{token} [post]
func (h *HandlerImpl) UpdateEmailPreferences(c *fiber.Ctx) error {
	var req entity.ManagePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Errorf("error parsing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if !req.UnsubscribeAll && req.Subscriptions == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "either subscriptions or unsubscribeAll is required",
		})
	}

	prefs, err := h.usecase.ManagePreferences(c.Context(), c.Params("token"), req)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(prefs)
}

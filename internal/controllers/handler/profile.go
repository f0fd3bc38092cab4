package handler

import (
	"community/internal/appers"
	"community/internal/application/entity"
	"community/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile godoc
// @Summary     Профиль текущего участника
// @Produce     json
// @Success     200 {object} entity.Profile
// @Failure     401
// @Failure     404
// @tags        Profile
// @Router      /api/users/me [get]
func (h *HandlerImpl) GetMyProfile(c *fiber.Ctx) error {
	s := sessionFrom(c)

	profile, err := h.usecase.GetProfile(c.Context(), s.UserID)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(profile)
}

// UpdateMyProfile godoc
// @Summary     Частичное обновление профиля
// @Description Обновляет только переданные поля: displayName, bio, location, website, profilePicture
// @Accept      json
// @Produce     json
// @Param       body  body  entity.ProfilePatch true "Поля профиля"
// @Success     200
// @Failure     400
// @Failure     401
// @Failure     404
// @tags        Profile
// @Router      /api/users/me [patch]
func (h *HandlerImpl) UpdateMyProfile(c *fiber.Ctx) error {
	s := sessionFrom(c)

	var patch entity.ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		h.logger.Errorf("error parsing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := validator.Validate.Struct(&patch); err != nil {
		h.logger.Warnf("validation error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(formatValidationErrors(err))
	}

	if err := h.usecase.UpdateProfile(c.Context(), s.UserID, &patch); err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"description": "ok"})
}

// DeleteMyAccount godoc
// @Summary     Удаление аккаунта
// @Description Удаляет профиль и подписки. Выполняется только при точном совпадении confirmation с литеральной строкой DELETE.
// @Accept      json
// @Produce     json
// @Param       body  body  entity.DeleteAccountRequest true "Фраза подтверждения"
// @Success     200
// @Failure     400
// @Failure     401
// @Failure     404
// @tags        Profile
// @Router      /api/users/me [delete]
func (h *HandlerImpl) DeleteMyAccount(c *fiber.Ctx) error {
	s := sessionFrom(c)

	var req entity.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Errorf("error parsing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := validator.Validate.Struct(&req); err != nil {
		h.logger.Warnf("validation error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(formatValidationErrors(err))
	}

	if err := h.usecase.DeleteAccount(c.Context(), s.UserID, req.Confirmation); err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"description": "ok"})
}

// ListMembers godoc
// @Summary     Каталог участников
// @Description Список участников с фильтром по имени/локации и сортировкой name|joined
// @Produce     json
// @Param       search query string false "Подстрока для поиска"
// @Param       sort   query string false "name (по умолчанию) или joined"
// @Success     200 {array} entity.MemberSummary
// @tags        Members
// @Router      /api/members [get]
func (h *HandlerImpl) ListMembers(c *fiber.Ctx) error {
	members, err := h.usecase.ListMembers(c.Context(), c.Query("search"), c.Query("sort"))
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(members)
}

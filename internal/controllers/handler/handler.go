package handler

import (
	"fmt"
	"time"

	use_cases "community/internal/application/use-cases"
	"community/internal/application/entity"
	"community/pkg/config"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler interface {
	HealthCheck(c *fiber.Ctx) error

	AuthBootstrap(c *fiber.Ctx) error

	GetMyProfile(c *fiber.Ctx) error
	UpdateMyProfile(c *fiber.Ctx) error
	DeleteMyAccount(c *fiber.Ctx) error
	ListMembers(c *fiber.Ctx) error

	GetEmailPreferences(c *fiber.Ctx) error
	UpdateEmailPreferences(c *fiber.Ctx) error

	CreateEvent(c *fiber.Ctx) error
	GetEventsByPeriod(c *fiber.Ctx) error
	UpdateEvent(c *fiber.Ctx) error
	DeleteEvent(c *fiber.Ctx) error
}

type HandlerImpl struct {
	usecase use_cases.UseCaser
	conf    *config.Config
	logger  *zap.SugaredLogger
}

func NewHandler(usecase use_cases.UseCaser, conf *config.Config, logger *zap.SugaredLogger) *HandlerImpl {
	return &HandlerImpl{
		usecase: usecase,
		conf:    conf,
		logger:  logger,
	}
}

// formatValidationErrors форматирует ошибки валидации в понятный формат для клиента
func formatValidationErrors(err error) fiber.Map {
	var errors []string
	if validationErrors, ok := err.(playgroundvalidator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			tag := e.Tag()
			var message string
			switch tag {
			case "required":
				message = fmt.Sprintf("поле '%s' обязательно для заполнения", field)
			case "min":
				message = fmt.Sprintf("поле '%s' должно содержать минимум %s символов", field, e.Param())
			case "max":
				message = fmt.Sprintf("поле '%s' должно содержать максимум %s символов", field, e.Param())
			case "url":
				message = fmt.Sprintf("поле '%s' должно быть валидным URL", field)
			case "rfc3339", "rfc3339_optional":
				message = fmt.Sprintf("поле '%s' должно быть в формате RFC3339 (например, 2026-01-20T15:00:00Z)", field)
			default:
				message = fmt.Sprintf("поле '%s' не прошло валидацию: %s", field, tag)
			}
			errors = append(errors, message)
		}
	} else {
		errors = append(errors, err.Error())
	}
	return fiber.Map{
		"error":   "validation failed",
		"details": errors,
	}
}

// validateEventDates выполняет логическую валидацию дат события
func validateEventDates(event *entity.Event) error {
	startsAt, err := time.Parse(time.RFC3339, event.StartsAt)
	if err != nil {
		return fmt.Errorf("неверный формат startsAt: %w", err)
	}

	endsAt, err := time.Parse(time.RFC3339, event.EndsAt)
	if err != nil {
		return fmt.Errorf("неверный формат endsAt: %w", err)
	}

	if !endsAt.After(startsAt) {
		return fmt.Errorf("дата окончания события должна быть после даты начала")
	}

	return nil
}

package appers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

type ErrorResp struct {
	StatusCode int    `json:"statusCode,omitempty"`
	StatusDesc string `json:"statusDesc,omitempty"`
}

func (e ErrorResp) Error() string {
	return e.StatusDesc
}

var (
	ErrProfileNotFound = ErrorResp{
		http.StatusNotFound,
		"профиль не найден",
	}
	ErrEventNotFound = ErrorResp{
		http.StatusNotFound,
		"событие не найдено",
	}
	ErrEventAlreadyExists = ErrorResp{
		http.StatusConflict,
		"событие уже создано",
	}
	// Неизвестный unsubscribe-токен: блокирующая ошибка вместо формы
	ErrTokenNotFound = ErrorResp{
		http.StatusNotFound,
		"токен управления подпиской не найден",
	}
	// Токен найден, но срок действия истёк
	ErrTokenExpired = ErrorResp{
		http.StatusGone,
		"срок действия токена истёк",
	}
	ErrUnauthenticated = ErrorResp{
		http.StatusUnauthorized,
		"требуется аутентификация",
	}
	ErrForbidden = ErrorResp{
		http.StatusForbidden,
		"недостаточно прав",
	}
	// Фраза подтверждения удаления аккаунта не совпала с "DELETE"
	ErrConfirmationMismatch = ErrorResp{
		http.StatusBadRequest,
		"фраза подтверждения не совпадает",
	}
)

func SanitizeError(c *fiber.Ctx, err error) error {
	var errResp ErrorResp

	if ok := errors.As(err, &errResp); ok {
		return c.Status(errResp.StatusCode).JSON(fiber.Map{
			"message": errResp.StatusDesc,
		})
	} else {
		return NewErr(c, http.StatusInternalServerError, err)
	}
}

func NewErr(ctx *fiber.Ctx, status int, err error) error {
	return ctx.Status(status).JSON(fiber.Map{
		"message": err.Error(),
	})
}

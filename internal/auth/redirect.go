package auth

import (
	"net/url"
	"strings"
)

// BootstrapState - состояние страницы после загрузки сессии.
// checking -> redirecting, когда посетитель уже аутентифицирован;
// checking -> idle, когда нет (рендерим варианты входа).
type BootstrapState string

const (
	StateChecking    BootstrapState = "checking"
	StateRedirecting BootstrapState = "redirecting"
	StateIdle        BootstrapState = "idle"
)

// RedirectPolicy - пути назначения по умолчанию
type RedirectPolicy struct {
	AdminPath  string
	MemberPath string
}

// Resolution - итог bootstrap-а: куда отправить посетителя
type Resolution struct {
	State    BootstrapState
	Location string // пустая строка при State != redirecting
}

// Resolve выбирает цель редиректа:
// админ -> AdminPath; не-админ -> returnURL вызывающего либо MemberPath;
// неаутентифицированный -> остаёмся на месте (idle).
func (p RedirectPolicy) Resolve(s Session, returnURL string) Resolution {
	if !s.IsAuthenticated {
		return Resolution{State: StateIdle}
	}

	if s.IsAdmin {
		return Resolution{State: StateRedirecting, Location: p.AdminPath}
	}

	target := returnURL
	if target == "" {
		target = p.MemberPath
	}
	return Resolution{State: StateRedirecting, Location: target}
}

// BuildAbsoluteRedirect строит строго закодированный абсолютный URL.
// Относительную цель дополняем origin-ом: механизм редиректа хостинга
// молча подставляет дефолтный хост, если дать ему голый относительный путь.
// Контракт побитовый: на выходе ровно один URL-encoded абсолютный URL.
func BuildAbsoluteRedirect(origin, target string) string {
	abs := target
	if !isAbsolute(target) {
		abs = strings.TrimSuffix(origin, "/") + ensureLeadingSlash(target)
	}
	return url.QueryEscape(abs)
}

// BuildLoginURL - адрес начала login-flow у identity-слоя.
// postLoginRedirect должен быть уже абсолютным (см. BuildAbsoluteRedirect).
func BuildLoginURL(provider IdentityProvider, origin, postLoginRedirect string) string {
	return "/.auth/login/" + string(provider) +
		"?post_login_redirect_uri=" + BuildAbsoluteRedirect(origin, postLoginRedirect)
}

// BuildLogoutURL - адрес logout-flow
func BuildLogoutURL(origin, postLogoutRedirect string) string {
	return "/.auth/logout?post_logout_redirect_uri=" + BuildAbsoluteRedirect(origin, postLogoutRedirect)
}

func isAbsolute(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

func ensureLeadingSlash(target string) string {
	if strings.HasPrefix(target, "/") {
		return target
	}
	return "/" + target
}

package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// PrincipalHeader - заголовок, в котором хостинг передаёт client principal
// после прохождения /.auth/login/<provider> (содержимое /.auth/me в base64 JSON)
const PrincipalHeader = "x-ms-client-principal"

// IdentityProvider - внешний провайдер аутентификации
type IdentityProvider string

const (
	ProviderAAD        IdentityProvider = "aad"
	ProviderAuth0      IdentityProvider = "auth0"
	ProviderMember     IdentityProvider = "member"
	ProviderGoogle     IdentityProvider = "google"
	ProviderExternalID IdentityProvider = "externalId"
)

// clientPrincipal - формат заголовка identity-слоя
type clientPrincipal struct {
	IdentityProvider string   `json:"identityProvider"`
	UserID           string   `json:"userId"`
	UserDetails      string   `json:"userDetails"`
	UserRoles        []string `json:"userRoles"`
}

// Session - read-only состояние сессии. Создаётся на login-редиректе
// identity-слоем, здесь только читается, никогда не мутируется.
type Session struct {
	IsAuthenticated  bool
	IsAdmin          bool
	IdentityProvider IdentityProvider
	UserID           string
	UserDetails      string // email
	Roles            []string
}

// Anonymous - сессия неаутентифицированного посетителя
func Anonymous() Session {
	return Session{}
}

// ParsePrincipal разбирает base64 JSON из заголовка identity-слоя.
// Любая ошибка разбора трактуется как отсутствие сессии (anonymous),
// а не как отказ: "session fetch failed" эквивалентен unauthenticated.
//
// adminRole - имя роли, дающей права администратора. Политика по провайдерам
// расходится в исходной системе, поэтому она явная: роль админа признаётся
// только за провайдером aad; auth0/member/google/externalId админами не бывают.
func ParsePrincipal(headerValue, adminRole string) Session {
	if headerValue == "" {
		return Anonymous()
	}

	raw, err := base64.StdEncoding.DecodeString(headerValue)
	if err != nil {
		return Anonymous()
	}

	var p clientPrincipal
	if err := json.Unmarshal(raw, &p); err != nil {
		return Anonymous()
	}
	if p.UserID == "" && p.UserDetails == "" {
		return Anonymous()
	}

	s := Session{
		IsAuthenticated:  true,
		IdentityProvider: IdentityProvider(p.IdentityProvider),
		UserID:           p.UserID,
		UserDetails:      p.UserDetails,
		Roles:            p.UserRoles,
	}

	if s.IdentityProvider == ProviderAAD {
		for _, r := range p.UserRoles {
			if strings.EqualFold(r, adminRole) {
				s.IsAdmin = true
				break
			}
		}
	}

	return s
}

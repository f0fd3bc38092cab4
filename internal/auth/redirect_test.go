package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var policy = RedirectPolicy{AdminPath: "/admin", MemberPath: "/member"}

func TestResolveUnauthenticatedStaysIdle(t *testing.T) {
	res := policy.Resolve(Anonymous(), "/groups/42")

	assert.Equal(t, StateIdle, res.State)
	assert.Empty(t, res.Location)
}

func TestResolveAdminIgnoresReturnURL(t *testing.T) {
	s := Session{IsAuthenticated: true, IsAdmin: true, IdentityProvider: ProviderAAD}

	res := policy.Resolve(s, "/events/7")

	assert.Equal(t, StateRedirecting, res.State)
	assert.Equal(t, "/admin", res.Location)
}

func TestResolveMemberDefaultsWithoutReturnURL(t *testing.T) {
	s := Session{IsAuthenticated: true, IdentityProvider: ProviderAuth0}

	res := policy.Resolve(s, "")

	assert.Equal(t, StateRedirecting, res.State)
	assert.Equal(t, "/member", res.Location)
}

func TestResolveMemberUsesCallerReturnURL(t *testing.T) {
	s := Session{IsAuthenticated: true, IdentityProvider: ProviderGoogle}

	res := policy.Resolve(s, "/groups/42")

	assert.Equal(t, "/groups/42", res.Location)
}

func TestBuildAbsoluteRedirectPrefixesOrigin(t *testing.T) {
	got := BuildAbsoluteRedirect("https://x.test", "/member")

	assert.Equal(t, "https%3A%2F%2Fx.test%2Fmember", got)
}

func TestBuildAbsoluteRedirectKeepsAbsoluteTarget(t *testing.T) {
	got := BuildAbsoluteRedirect("https://x.test", "https://y.test/z")

	assert.Equal(t, "https%3A%2F%2Fy.test%2Fz", got)
}

func TestBuildAbsoluteRedirectTrailingSlashOrigin(t *testing.T) {
	got := BuildAbsoluteRedirect("https://x.test/", "member")

	assert.Equal(t, "https%3A%2F%2Fx.test%2Fmember", got)
}

func TestBuildLoginURL(t *testing.T) {
	got := BuildLoginURL(ProviderAAD, "https://x.test", "/member")

	assert.Equal(t, "/.auth/login/aad?post_login_redirect_uri=https%3A%2F%2Fx.test%2Fmember", got)
}

func TestBuildLogoutURL(t *testing.T) {
	got := BuildLogoutURL("https://x.test", "/")

	assert.Equal(t, "/.auth/logout?post_logout_redirect_uri=https%3A%2F%2Fx.test%2F", got)
}

func encodePrincipal(t *testing.T, raw string) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

func TestParsePrincipalAADAdminRole(t *testing.T) {
	h := encodePrincipal(t, `{"identityProvider":"aad","userId":"u1","userDetails":"admin@x.test","userRoles":["authenticated","administrator"]}`)

	s := ParsePrincipal(h, "administrator")

	require.True(t, s.IsAuthenticated)
	assert.True(t, s.IsAdmin)
	assert.Equal(t, ProviderAAD, s.IdentityProvider)
	assert.Equal(t, "admin@x.test", s.UserDetails)
}

func TestParsePrincipalAuth0NeverAdmin(t *testing.T) {
	// Политика auth0: роль administrator не даёт админских прав
	h := encodePrincipal(t, `{"identityProvider":"auth0","userId":"u2","userDetails":"m@x.test","userRoles":["administrator"]}`)

	s := ParsePrincipal(h, "administrator")

	require.True(t, s.IsAuthenticated)
	assert.False(t, s.IsAdmin)
}

func TestParsePrincipalGarbageIsAnonymous(t *testing.T) {
	for _, h := range []string{"", "not-base64!!", encodePrincipal(t, `{"broken`)} {
		s := ParsePrincipal(h, "administrator")
		assert.False(t, s.IsAuthenticated)
		assert.False(t, s.IsAdmin)
	}
}

func TestParsePrincipalEmptyIdentityIsAnonymous(t *testing.T) {
	h := encodePrincipal(t, `{"identityProvider":"aad","userRoles":["anonymous"]}`)

	s := ParsePrincipal(h, "administrator")

	assert.False(t, s.IsAuthenticated)
}

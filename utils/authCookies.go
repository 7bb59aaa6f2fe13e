package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cookie names mirror the query parameter the session middleware accepts.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SetAuthCookies stores both session tokens as HTTP-only cookies.
func SetAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	writeCookie(c, AccessTokenCookie, accessToken, AccessTokenExpiry)
	writeCookie(c, RefreshTokenCookie, refreshToken, RefreshTokenExpiry)
}

// SetAccessCookie replaces the access token after a refresh.
func SetAccessCookie(c *gin.Context, accessToken string) {
	writeCookie(c, AccessTokenCookie, accessToken, AccessTokenExpiry)
}

// ClearAuthCookies expires both session cookies.
func ClearAuthCookies(c *gin.Context) {
	writeCookie(c, AccessTokenCookie, "", -time.Second)
	writeCookie(c, RefreshTokenCookie, "", -time.Second)
}

// writeCookie sets a cookie usable by the booking front end on another
// origin. Outside debug mode cookies are Secure, which SameSite=None requires.
func writeCookie(c *gin.Context, name, value string, ttl time.Duration) {
	secure := gin.Mode() != gin.DebugMode
	sameSite := http.SameSiteNoneMode
	if !secure {
		sameSite = http.SameSiteLaxMode
	}
	c.SetSameSite(sameSite)

	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	c.SetCookie(name, value, maxAge, "/", "", secure, true)
}

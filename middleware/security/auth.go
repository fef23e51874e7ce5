package security

import (
	"net/http"
	"strings"

	"SnapTalk/global/config"
	userservice "SnapTalk/module/user/service"
	"SnapTalk/tools/errs"
	"SnapTalk/tools/security"

	"github.com/gin-gonic/gin"
)

// context keys shared with the handler layer
const (
	CtxUserIDKey   = "userId"
	CtxUsernameKey = "username"
	CtxUserKey     = "user"
)

type Options struct {
	HeaderToken               string // default "Authorization"
	EnableAuthorizationBearer bool   // default true
}

func DefaultOptions() *Options {
	return &Options{
		HeaderToken:               "Authorization",
		EnableAuthorizationBearer: true,
	}
}

// Middleware authenticates the request with a bearer access token and loads
// the account into the gin context. The presented token must still be the
// one stored on the user document (logout invalidates it).
func Middleware(opts *Options) gin.HandlerFunc {
	if opts == nil {
		opts = DefaultOptions()
	}
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))
		if opts.EnableAuthorizationBearer && strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = strings.TrimSpace(token[len("bearer "):])
		}
		if token == "" {
			abort(c, errs.ErrTokenRequired)
			return
		}

		claims, err := security.Verify(security.DefaultOptions(config.GetJwtSecret()), token)
		if err != nil {
			abort(c, errs.ErrTokenInvalid)
			return
		}

		u, err := userservice.FindByID(c.Request.Context(), claims.UserID)
		if err != nil || u.AccessToken != token {
			abort(c, errs.ErrTokenInvalid)
			return
		}

		c.Set(CtxUserIDKey, u.ID.Hex())
		c.Set(CtxUsernameKey, u.Username)
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

func abort(c *gin.Context, ce *errs.CodeError) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ce)
}

// UserID reads the authenticated user ID from the context.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

// Username reads the authenticated display handle from the context.
func Username(c *gin.Context) string {
	return c.GetString(CtxUsernameKey)
}

package auth

import (
	"net/http"

	mid "SnapTalk/middleware"
	midsec "SnapTalk/middleware/security"
	usermodel "SnapTalk/module/user/model"
	"SnapTalk/tools/errs"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the auth endpoints under /api/auth.
func RegisterRoutes(r gin.IRoutes) {
	mid.POST(r, "/api/auth/register", HandlerRegister, mid.RouteOpt{})
	mid.POST(r, "/api/auth/login", HandlerLogin, mid.RouteOpt{})
	mid.POST(r, "/api/auth/refresh", HandlerRefresh, mid.RouteOpt{})
	mid.POST(r, "/api/auth/logout", HandlerLogout, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/auth/current", HandlerCurrent, mid.RouteOpt{IsAuth: true})
}

func HandlerRegister(c *gin.Context) {
	var p RegisterPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		mid.JSONError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	u, err := Register(c.Request.Context(), &p)
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func HandlerLogin(c *gin.Context) {
	var p LoginPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		mid.JSONError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	res, err := Login(c.Request.Context(), &p)
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func HandlerRefresh(c *gin.Context) {
	var p RefreshPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		mid.JSONError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	res, err := Refresh(c.Request.Context(), &p)
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func HandlerLogout(c *gin.Context) {
	if err := Logout(c.Request.Context(), midsec.UserID(c)); err != nil {
		mid.JSONError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func HandlerCurrent(c *gin.Context) {
	v, _ := c.Get(midsec.CtxUserKey)
	u, ok := v.(*usermodel.User)
	if !ok {
		mid.JSONError(c, errs.ErrTokenInvalid)
		return
	}
	c.JSON(http.StatusOK, u)
}

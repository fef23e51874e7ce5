package follow

import (
	"net/http"

	mid "SnapTalk/middleware"
	midsec "SnapTalk/middleware/security"
	"SnapTalk/module/follow/service"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the follow endpoints under /api/follows.
func RegisterRoutes(r gin.IRoutes) {
	mid.POST(r, "/api/follows/:username", HandlerFollow, mid.RouteOpt{IsAuth: true})
	mid.DELETE(r, "/api/follows/:username", HandlerUnfollow, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/follows/:username/followers", HandlerFollowers, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/follows/:username/following", HandlerFollowing, mid.RouteOpt{IsAuth: true})
}

func HandlerFollow(c *gin.Context) {
	if err := service.Follow(c.Request.Context(), midsec.UserID(c), c.Param("username")); err != nil {
		mid.JSONError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func HandlerUnfollow(c *gin.Context) {
	if err := service.Unfollow(c.Request.Context(), midsec.UserID(c), c.Param("username")); err != nil {
		mid.JSONError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func HandlerFollowers(c *gin.Context) {
	users, err := service.Followers(c.Request.Context(), c.Param("username"))
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func HandlerFollowing(c *gin.Context) {
	users, err := service.Following(c.Request.Context(), c.Param("username"))
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

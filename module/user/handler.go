package user

import (
	"net/http"

	mid "SnapTalk/middleware"
	midsec "SnapTalk/middleware/security"
	"SnapTalk/module/user/service"
	storage "SnapTalk/service/storage"
	"SnapTalk/tools/errs"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// RegisterRoutes mounts the user endpoints under /api/users.
func RegisterRoutes(r gin.IRoutes) {
	mid.GET(r, "/api/users/me", HandlerMyProfile, mid.RouteOpt{IsAuth: true})
	mid.PATCH(r, "/api/users/me", HandlerUpdateProfile, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/users/search", HandlerSearch, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/users/recent-searches", HandlerRecentSearches, mid.RouteOpt{IsAuth: true})
	mid.POST(r, "/api/users/recent-searches", HandlerAddRecentSearch, mid.RouteOpt{IsAuth: true})
	mid.DELETE(r, "/api/users/recent-searches", HandlerClearRecentSearches, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/users/:username", HandlerProfile, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/users/:username/online", HandlerOnline, mid.RouteOpt{IsAuth: true})
}

func HandlerProfile(c *gin.Context) {
	p, err := service.ProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func HandlerMyProfile(c *gin.Context) {
	p, err := service.ProfileByID(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type updatePayload struct {
	FullName *string `json:"fullName"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

func HandlerUpdateProfile(c *gin.Context) {
	var p updatePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		mid.JSONError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	fields := bson.M{}
	if p.FullName != nil {
		if l := len(*p.FullName); l < 3 || l > 50 {
			mid.JSONError(c, errs.ErrArgs.WithDetail("fullName must be 3-50 chars"))
			return
		}
		fields["full_name"] = *p.FullName
	}
	if p.Bio != nil {
		if len(*p.Bio) > 200 {
			mid.JSONError(c, errs.ErrArgs.WithDetail("bio must be at most 200 chars"))
			return
		}
		fields["bio"] = *p.Bio
	}
	if p.Avatar != nil {
		fields["avatar"] = *p.Avatar
	}
	if len(fields) == 0 {
		mid.JSONError(c, errs.ErrArgs.WithDetail("nothing to update"))
		return
	}
	u, err := service.UpdateProfile(c.Request.Context(), midsec.UserID(c), fields)
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// HandlerSearch lists users whose username contains the q parameter.
func HandlerSearch(c *gin.Context) {
	res, err := service.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func HandlerRecentSearches(c *gin.Context) {
	res, err := service.RecentSearches(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type recentSearchPayload struct {
	Username string `json:"username" binding:"required"`
}

func HandlerAddRecentSearch(c *gin.Context) {
	var p recentSearchPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		mid.JSONError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	target, err := service.FindByUsername(c.Request.Context(), p.Username)
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	if err := service.AddRecentSearch(c.Request.Context(), midsec.UserID(c), target.ID); err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recent search added"})
}

func HandlerClearRecentSearches(c *gin.Context) {
	if err := service.ClearRecentSearches(c.Request.Context(), midsec.UserID(c)); err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recent searches cleared"})
}

// HandlerOnline reports gateway reachability from the presence mirror.
func HandlerOnline(c *gin.Context) {
	u, err := service.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	_, online, err := storage.PresenceLookup(c.Request.Context(), u.ID.Hex())
	if err != nil {
		// presence is advisory; treat mirror failure as offline
		online = false
	}
	c.JSON(http.StatusOK, gin.H{"username": u.Username, "online": online})
}

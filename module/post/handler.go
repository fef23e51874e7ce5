package post

import (
	"net/http"
	"strings"

	mid "SnapTalk/middleware"
	midsec "SnapTalk/middleware/security"
	"SnapTalk/module/post/service"
	"SnapTalk/tools/errs"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the post, like and comment endpoints under /api.
func RegisterRoutes(r gin.IRoutes) {
	mid.POST(r, "/api/posts", HandlerCreate, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/posts", HandlerList, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/posts/:id", HandlerGet, mid.RouteOpt{IsAuth: true})
	mid.DELETE(r, "/api/posts/:id", HandlerDelete, mid.RouteOpt{IsAuth: true})

	mid.POST(r, "/api/posts/:id/like", HandlerLike, mid.RouteOpt{IsAuth: true})
	mid.DELETE(r, "/api/posts/:id/like", HandlerUnlike, mid.RouteOpt{IsAuth: true})

	mid.POST(r, "/api/posts/:id/comments", HandlerAddComment, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/posts/:id/comments", HandlerListComments, mid.RouteOpt{IsAuth: true})
	mid.DELETE(r, "/api/comments/:id", HandlerDeleteComment, mid.RouteOpt{IsAuth: true})
}

type createPayload struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

// HandlerCreate accepts either a JSON body with an imageUrl, or a
// multipart/form-data body carrying a text field and an image file that is
// stored under the upload dir.
func HandlerCreate(c *gin.Context) {
	var p createPayload
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		p.Text = c.PostForm("text")
		if file, err := c.FormFile("image"); err == nil {
			url, uerr := savePostImage(c, file)
			if uerr != nil {
				mid.JSONError(c, uerr)
				return
			}
			p.ImageURL = url
		}
	} else if err := c.ShouldBindJSON(&p); err != nil {
		mid.JSONError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	post, err := service.CreatePost(c.Request.Context(), midsec.UserID(c), p.Text, p.ImageURL)
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func HandlerList(c *gin.Context) {
	if author := c.Query("author"); author != "" {
		posts, err := service.ListByAuthor(c.Request.Context(), author)
		if err != nil {
			mid.JSONError(c, err)
			return
		}
		c.JSON(http.StatusOK, posts)
		return
	}
	posts, err := service.ListAll(c.Request.Context())
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func HandlerGet(c *gin.Context) {
	post, err := service.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	likes, err := service.CountLikes(c.Request.Context(), c.Param("id"))
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post, "likesCount": likes})
}

func HandlerDelete(c *gin.Context) {
	if err := service.DeletePost(c.Request.Context(), c.Param("id"), midsec.UserID(c)); err != nil {
		mid.JSONError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func HandlerLike(c *gin.Context) {
	if err := service.LikePost(c.Request.Context(), c.Param("id"), midsec.UserID(c)); err != nil {
		mid.JSONError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func HandlerUnlike(c *gin.Context) {
	if err := service.UnlikePost(c.Request.Context(), c.Param("id"), midsec.UserID(c)); err != nil {
		mid.JSONError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type commentPayload struct {
	Text string `json:"text" binding:"required"`
}

func HandlerAddComment(c *gin.Context) {
	var p commentPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		mid.JSONError(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	cm, err := service.AddComment(c.Request.Context(), c.Param("id"), midsec.UserID(c), p.Text)
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

func HandlerListComments(c *gin.Context) {
	cms, err := service.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, cms)
}

func HandlerDeleteComment(c *gin.Context) {
	if err := service.DeleteComment(c.Request.Context(), c.Param("id"), midsec.UserID(c)); err != nil {
		mid.JSONError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

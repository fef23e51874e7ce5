package chat

import (
	"net/http"

	mid "SnapTalk/middleware"
	midsec "SnapTalk/middleware/security"
	chatmodel "SnapTalk/module/chat/model"
	"SnapTalk/module/chat/service"
	userservice "SnapTalk/module/user/service"
	"SnapTalk/tools/errs"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the message history endpoints under /api/messages.
// These share the message store with the realtime gateway.
func RegisterRoutes(r gin.IRoutes) {
	mid.GET(r, "/api/messages/conversation/:username", HandlerConversation, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/messages/chats", HandlerChats, mid.RouteOpt{IsAuth: true})
}

func HandlerConversation(c *gin.Context) {
	other, err := userservice.FindByUsername(c.Request.Context(), c.Param("username"))
	if errs.ErrUserNotFound.Is(err) {
		// unknown counterpart reads as an empty conversation
		c.JSON(http.StatusOK, []chatmodel.MessageView{})
		return
	}
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	msgs, err := service.FindConversation(c.Request.Context(), midsec.UserID(c), other.ID.Hex())
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func HandlerChats(c *gin.Context) {
	chats, err := service.ListChats(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		mid.JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

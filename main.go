package main

import (
	"context"
	"fmt"
	"time"

	"SnapTalk/global/config"
	"SnapTalk/logger"
	authmod "SnapTalk/module/auth"
	chatmod "SnapTalk/module/chat"
	chatmodel "SnapTalk/module/chat/model"
	chatservice "SnapTalk/module/chat/service"
	followmod "SnapTalk/module/follow"
	postmod "SnapTalk/module/post"
	usermod "SnapTalk/module/user"
	userservice "SnapTalk/module/user/service"
	gw "SnapTalk/service/chat"
	mgosrv "SnapTalk/service/mgo"
	storage "SnapTalk/service/storage"

	"github.com/gin-gonic/gin"
)

// userDirectory adapts the user service to the gateway's directory contract.
type userDirectory struct{}

func (userDirectory) FindByUsername(ctx context.Context, username string) (*gw.DirectoryUser, error) {
	u, err := userservice.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &gw.DirectoryUser{ID: u.ID.Hex(), Username: u.Username, Avatar: u.Avatar}, nil
}

// messageStore adapts the chat service to the gateway's store contract.
type messageStore struct{}

func (messageStore) Create(ctx context.Context, senderID, recipientID, text string) (*chatmodel.MessageView, error) {
	return chatservice.Create(ctx, senderID, recipientID, text)
}

func (messageStore) FindConversation(ctx context.Context, a, b string) ([]chatmodel.MessageView, error) {
	return chatservice.FindConversation(ctx, a, b)
}

// redisPresence mirrors gateway reachability into redis for the REST layer.
type redisPresence struct {
	nodeID string
	ttl    time.Duration
}

func (p *redisPresence) Online(ctx context.Context, userID string) error {
	return storage.PresenceOnline(ctx, userID, p.nodeID, p.ttl)
}

func (p *redisPresence) Offline(ctx context.Context, userID string) error {
	return storage.PresenceOffline(ctx, userID)
}

func main() {
	if err := config.Load(); err != nil {
		logger.Errorf("config load failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	config.ConfigAll(ctx)

	waitCtx, waitCancel := context.WithTimeout(ctx, 30*time.Second)
	err := mgosrv.WaitReady(waitCtx)
	waitCancel()
	if err != nil {
		logger.Errorf("mongo not ready: %v", err)
		return
	}

	reg := gw.NewRegistry()
	fanout := gw.NewFanout(reg)
	router := gw.NewRouter(userDirectory{}, messageStore{}, fanout)
	server := gw.NewServer(
		gw.Config{SendQueueSize: 256},
		gw.NewJWTVerifier(config.GetJwtSecret()),
		router,
		reg,
		&redisPresence{
			nodeID: fmt.Sprint(config.Global.NodeID),
			ttl:    config.Global.PresenceTTL,
		},
	)

	r := gin.Default()
	authmod.RegisterRoutes(r)
	usermod.RegisterRoutes(r)
	postmod.RegisterRoutes(r)
	followmod.RegisterRoutes(r)
	chatmod.RegisterRoutes(r)
	r.GET("/ws", server.HandleWS)
	r.Static("/uploads", config.Global.UploadDir)

	addr := fmt.Sprintf(":%d", config.Global.Port)
	logger.Infof("server successfully running on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Errorf("http server failed: %v", err)
	}
}

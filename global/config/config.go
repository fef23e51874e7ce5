package config

import (
	"context"
	"os"
	"strings"
	"time"

	"SnapTalk/data/database/mgo/mongoutil"
	"SnapTalk/logger"
	mgosrv "SnapTalk/service/mgo"
	redissrv "SnapTalk/service/storage/redis"
	"SnapTalk/tools/ids"

	"github.com/mitchellh/mapstructure"
)

// AppConfig is populated from environment variables over the defaults below.
type AppConfig struct {
	NodeID int64 `mapstructure:"NODE_ID"`
	Port   int   `mapstructure:"PORT"`

	JwtSecret  string        `mapstructure:"JWT_SECRET"`
	AccessTTL  time.Duration `mapstructure:"ACCESS_TTL"`
	RefreshTTL time.Duration `mapstructure:"REFRESH_TTL"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DB"`
	MongoUser     string `mapstructure:"MONGO_USER"`
	MongoPassword string `mapstructure:"MONGO_PASSWORD"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	PresenceTTL time.Duration `mapstructure:"PRESENCE_TTL"`

	UploadDir string `mapstructure:"UPLOAD_DIR"`
}

var Global = AppConfig{
	NodeID:        100,
	Port:          3000,
	JwtSecret:     "mN9b1f8zPq+W2xjX/45sKcVd0TfyoG+3Hp5Z8q9Rj1o=",
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    15 * 24 * time.Hour,
	MongoURI:      "mongodb://localhost:27017",
	MongoDatabase: "snaptalk",
	RedisAddr:     "127.0.0.1:6379",
	RedisDB:       0,
	PresenceTTL:   2 * time.Minute,
	UploadDir:     "uploads",
}

// Load overlays environment variables onto Global. Values are decoded
// weakly typed so PORT=8080 and ACCESS_TTL=15m both work.
func Load() error {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &Global,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(env)
}

func GetJwtSecret() []byte {
	return []byte(Global.JwtSecret)
}

func ConfigAll(ctx context.Context) {
	ConfigIds()
	ConfigRedis()
	ConfigMgo(ctx)
}

func ConfigIds() {
	ids.SetNodeID(Global.NodeID)
}

func ConfigRedis() {
	err := redissrv.InitRedis(redissrv.Config{
		Addr:     Global.RedisAddr,
		Password: Global.RedisPassword,
		DB:       Global.RedisDB,
	})
	if err != nil {
		logger.Warnf("redis not reachable at %s: %v", Global.RedisAddr, err)
	}
}

func ConfigMgo(ctx context.Context) {
	cfg := &mongoutil.Config{
		Uri:         Global.MongoURI,
		Database:    Global.MongoDatabase,
		Username:    Global.MongoUser,
		Password:    Global.MongoPassword,
		MaxPoolSize: 20,
		MaxRetry:    3,
	}
	mgosrv.StartAsync(ctx, cfg)
}

// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"
	"vidtube/api/auth"
	"vidtube/api/cloudflare"
	"vidtube/api/db"
	"vidtube/api/middleware"
	"vidtube/api/security"
	"vidtube/api/service"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Argon    *security.ArgonHash
	Tokens   *auth.TokenService
	Profiles *service.Profiles
	Uploader service.MediaUploader
	R2       *cloudflare.R2Client

	secureCookies bool
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewRouter() (*API, error) {
	a := &API{
		secureCookies: viper.GetBool("host.ssl.enabled"),
		accessTTL:     viper.GetDuration("jwt.access_ttl"),
		refreshTTL:    viper.GetDuration("jwt.refresh_ttl"),
	}

	d, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = d

	makeLogger()

	refreshSecret := []byte(viper.GetString("jwt.refresh_secret"))

	a.Tokens = auth.NewTokenService(d, auth.Config{
		AccessSecret:  []byte(viper.GetString("jwt.access_secret")),
		RefreshSecret: refreshSecret,
		AccessTTL:     a.accessTTL,
		RefreshTTL:    a.refreshTTL,
	})
	a.Argon = security.New()
	a.Profiles = service.NewProfiles(d)

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	authGate := middleware.NewAuthMiddleware(d, a.Tokens)
	loginLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 2,
		Burst:             5,
	})
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates an access token
		main.HEAD("/validate", authGate, a.Validate)
	}

	users := main.Group("/users")
	{
		// POST /api/users 		-> Registers a new user (multipart, avatar required)
		users.POST("", loginLimiter, middleware.BodySizeLimiter(maxUploadSize), a.UserRegister)

		// POST /api/users/login 	-> Logs in a user and issues a token pair
		users.POST("/login", loginLimiter, middleware.BodySizeLimiter(1<<20), a.UserLogin)

		// POST /api/users/logout	-> Revokes the caller's session
		users.POST("/logout", authGate, a.UserLogout)

		// POST /api/users/refresh	-> Rotates a refresh token into a new pair
		users.POST("/refresh", loginLimiter, middleware.BodySizeLimiter(1<<20), a.UserRefresh)

		// GET /api/users/me		-> Returns the calling user
		users.GET("/me", authGate, a.UserCurrent)

		// PATCH /api/users/me		-> Updates full name and/or email
		users.PATCH("/me", authGate, middleware.BodySizeLimiter(1<<20), a.UserUpdate)

		// POST /api/users/password	-> Changes the caller's password
		users.POST("/password", authGate, middleware.BodySizeLimiter(1<<20), a.UserChangePassword)

		// PATCH /api/users/me/avatar	-> Replaces the caller's avatar
		users.PATCH("/me/avatar", authGate, middleware.BodySizeLimiter(maxUploadSize), a.UserUpdateAvatar)

		// PATCH /api/users/me/cover	-> Replaces the caller's cover image
		users.PATCH("/me/cover", authGate, middleware.BodySizeLimiter(maxUploadSize), a.UserUpdateCover)

		// GET /api/users/history	-> Returns the caller's watch history in stored order
		users.GET("/history", authGate, a.WatchHistory)
	}

	channels := main.Group("/channels", authGate)
	{
		// GET /api/channels/:username	-> Channel profile with subscriber counts
		channels.GET("/:username", a.ChannelProfile)

		// POST /api/channels/:username/subscribe	-> Subscribes the caller to a channel
		channels.POST("/:username/subscribe", a.ChannelSubscribe)

		// DELETE /api/channels/:username/subscribe	-> Removes the subscription again
		channels.DELETE("/:username/subscribe", a.ChannelUnsubscribe)
	}

	videos := main.Group("/videos")
	{
		// GET /api/videos/:id		-> Fetches a single video
		videos.GET("/:id", cacheFor(30), a.VideoFetch)

		// POST /api/videos/:id/view	-> Records a view and appends to watch history
		videos.POST("/:id/view", authGate, a.VideoView)
	}

	r2, err := cloudflare.NewR2()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media host client, %w", err)
	}

	a.R2 = r2
	a.Uploader = service.NewUploader(r2)

	service.SessionCleanup(time.Hour, d, refreshSecret)

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}

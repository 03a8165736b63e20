package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"coldroom/chat"
	"coldroom/config"
	"coldroom/crypto"
	"coldroom/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}); err != nil {
		log.Fatal().Err(err).Msg("configuring trusted proxies")
	}
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	if len(allowedOrigins) == 0 {
		return r
	}

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	jwtKey := cfg.JWTKey
	if jwtKey == "" {
		jwtKey = uuid.NewString()
	}

	tokenAge := time.Hour * 24 * 7 // 7 days
	passwordHasher := crypto.NewArgon2idHasher(3, 1024*64, 32, 16, 1)
	tokenManager := crypto.NewJWTManager(jwtKey, tokenAge)

	st := store.New(cfg.DataFile, logger)
	if err := st.Load(); err != nil {
		logger.Fatal().Err(err).Msg("loading data file")
	}
	if err := st.EnsureDefaults(passwordHasher); err != nil {
		logger.Fatal().Err(err).Msg("bootstrapping defaults")
	}
	if err := st.Save(); err != nil {
		logger.Fatal().Err(err).Msg("writing initial snapshot")
	}

	hub := chat.NewHub(st, passwordHasher, tokenManager, logger)

	ctx, cancel := context.WithCancel(context.Background())
	hubStarted := make(chan struct{})
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx, hubStarted)
	}()
	<-hubStarted

	r := CreateServer(cfg.AllowedOrigins)
	r.GET("/settings", hub.SettingsHandler)
	r.GET("/ws", hub.ServeWS)

	go r.Run(":" + cfg.Port)
	logger.Info().Str("port", cfg.Port).Msg("server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	<-sigCh
	logger.Info().Msg("shutdown signal received, flushing snapshot")

	cancel()
	<-hubDone
}

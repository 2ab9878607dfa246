package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"punchme/utils"
	"punchme/web/auth"
	"punchme/web/config"
	"punchme/web/controllers"
	"punchme/web/db"
	"punchme/web/email"
	"punchme/web/logs"
	"punchme/web/middleware"
	"punchme/web/rewards"
	"punchme/web/sms"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	cfg.AddAllowHeaders("Authorization", "X-Requested-With")
	return cfg
}

func main() {
	if err := utils.LoadEnv(); err != nil {
		logs.Log.WithError(err).Warn("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		logs.Log.WithError(err).Fatal("load config")
	}
	logs.Init(cfg.LogLevel, cfg.LogFormat)

	conn, err := db.Connect(cfg.DBDriver, cfg.DSN)
	if err != nil {
		logs.Log.WithError(err).Fatal("connect database")
	}
	if err := db.Sync(conn); err != nil {
		logs.Log.WithError(err).Fatal("migrate database")
	}
	store := db.NewGormStore(conn)

	tokens := auth.NewTokens(cfg.Secret, cfg.TokenTTL)
	svc := rewards.New(store, sms.NewTwilio(cfg.Twilio), email.NewSender(cfg.SMTP), tokens, rewards.Options{
		CodeTTL:         cfg.CodeTTL,
		BackdoorCode:    cfg.BackdoorCode,
		TestIdentifiers: cfg.TestIdentifiers,
		AppLink:         cfg.AppLink,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc.StartCodeSweeper(ctx, cfg.CodeSweepInterval)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	limiter.StartCleanup(ctx, 10*time.Minute)

	r := gin.New()
	r.Use(logs.RequestLogger(), gin.Recovery(), cors.New(corsConfig(cfg.CORSOrigins)))
	controllers.Register(r, controllers.New(svc), middleware.RequireAuth(tokens, store), limiter.Middleware())

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logs.Log.WithField("port", cfg.Port).Info("web service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logs.Log.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	logs.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logs.Log.WithError(err).Error("shutdown")
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/habitquest/server/api/rest"
	"github.com/habitquest/server/audit"
	"github.com/habitquest/server/cache"
	"github.com/habitquest/server/config"
	dbadapter "github.com/habitquest/server/db"
	"github.com/habitquest/server/game/achievement"
	"github.com/habitquest/server/game/guild"
	"github.com/habitquest/server/game/nutrition"
	"github.com/habitquest/server/game/progression"
	"github.com/habitquest/server/game/quest"
	mw "github.com/habitquest/server/middleware"
	"github.com/habitquest/server/model"
	"github.com/habitquest/server/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// Warn loudly if admin endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache ----
	c, err := cache.New(cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	// ---- Progression Curves ----
	charCurve := progression.Curve{
		GrowthBase:         cfg.Game.CharGrowthBase,
		GrowthExponent:     cfg.Game.CharGrowthExponent,
		StatPointsPerLevel: cfg.Game.StatPointsPerLevel,
	}
	guildCurve := progression.Curve{
		GrowthBase:     cfg.Game.GuildGrowthBase,
		GrowthExponent: cfg.Game.GuildGrowthExponent,
	}

	// ---- Services ----
	achievementSvc := achievement.NewService(charCurve, logger)
	questSvc := quest.NewService(db, charCurve, guildCurve, achievementSvc, logger)
	guildSvc := guild.NewService(db, charCurve, guildCurve,
		cfg.Game.GuildMinMembers, cfg.Game.GuildMaxMembers, logger)
	nutritionSvc := nutrition.NewService(db, logger)

	// ---- Handlers ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security, auditSvc)
	charH := apirest.NewCharacterHandler(db)
	questH := apirest.NewQuestHandler(db, questSvc, auditSvc)
	guildH := apirest.NewGuildHandler(guildSvc, auditSvc)
	nutritionH := apirest.NewNutritionHandler(nutritionSvc)
	rankH := apirest.NewRankingHandler(db, c, logger)
	adminH := apirest.NewAdminHandler(db, sched, logger)

	// ---- Periodic Scheduler Tasks ----
	sched.AddTicker("quest_expiration", cfg.Game.ExpireSweepInterval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := questSvc.ExpireOverdue(ctx, time.Now()); err != nil {
			logger.Error("quest expiration sweep failed", zap.Error(err))
		}
		if _, err := guildSvc.ExpireQuests(ctx, time.Now()); err != nil {
			logger.Error("guild quest expiration sweep failed", zap.Error(err))
		}
	})
	sched.AddTicker("ranking_refresh", cfg.Game.RankingRefreshInterval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		rankH.Refresh(ctx)
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/register", authH.Register)
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)
		authG.POST("/refresh", mw.Auth(cfg.Security, c), authH.Refresh)

		charG := api.Group("/character")
		charG.Use(mw.Auth(cfg.Security, c))
		charG.GET("", charH.Get)
		charG.PUT("", charH.Update)
		charG.GET("/stats", charH.Stats)
		charG.GET("/history", charH.History)
		charG.GET("/achievements", charH.Achievements)

		questsG := api.Group("/quests")
		questsG.Use(mw.Auth(cfg.Security, c))
		questsG.GET("", questH.List)
		questsG.POST("", questH.Assign)
		questsG.POST("/daily", questH.Daily)
		questsG.GET("/streak", questH.Streak)
		questsG.GET("/completions", questH.Completions)
		questsG.POST("/:id/start", questH.Start)
		questsG.POST("/:id/complete", questH.Complete)
		questsG.POST("/:id/fail", questH.Fail)

		guildsG := api.Group("/guilds")
		guildsG.Use(mw.Auth(cfg.Security, c))
		guildsG.GET("", guildH.List)
		guildsG.POST("", guildH.Create)
		guildsG.GET("/mine", guildH.Mine)
		guildsG.POST("/leave", guildH.Leave)
		guildsG.POST("/quests", guildH.CreateQuest)
		guildsG.POST("/quests/:id/progress", guildH.Progress)
		guildsG.GET("/messages", guildH.ListMessages)
		guildsG.POST("/messages", guildH.PostMessage)
		guildsG.GET("/:id", guildH.Detail)
		guildsG.POST("/:id/join", guildH.Join)
		guildsG.GET("/:id/members", guildH.Members)
		guildsG.GET("/:id/quests", guildH.ListQuests)

		nutritionG := api.Group("/nutrition")
		nutritionG.Use(mw.Auth(cfg.Security, c))
		nutritionG.POST("/logs", nutritionH.Create)
		nutritionG.GET("/logs", nutritionH.List)
		nutritionG.GET("/stats", nutritionH.Stats)

		supplementsG := api.Group("/supplements")
		supplementsG.Use(mw.Auth(cfg.Security, c))
		supplementsG.GET("", nutritionH.ListSupplements)
		supplementsG.GET("/mine", nutritionH.ListRegimens)
		supplementsG.POST("/mine", nutritionH.AddRegimen)
		supplementsG.DELETE("/mine/:id", nutritionH.StopRegimen)
		supplementsG.GET("/logs", nutritionH.ListIntakes)
		supplementsG.POST("/logs", nutritionH.LogIntake)

		rankG := api.Group("/ranking")
		rankG.GET("/exp", rankH.TopExp)

		adminG := api.Group("/admin")
		adminG.Use(apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/templates", adminH.ListTemplates)
		adminG.POST("/templates", adminH.CreateTemplate)
		adminG.PUT("/templates/:id/active", adminH.SetTemplateActive)
		adminG.POST("/achievements", adminH.CreateAchievement)
		adminG.POST("/supplements", adminH.CreateSupplement)
		adminG.POST("/users/:id/ban", adminH.BanUser)
		adminG.POST("/ranking/refresh", rankH.RefreshRanking)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

package router

import (
	"net/http"

	"NWord_Counter/internal/handler"
	"NWord_Counter/internal/middleware"
	"NWord_Counter/internal/ranking"
	"NWord_Counter/internal/service"

	"github.com/gin-gonic/gin"
)

// Deps 路由依赖，由 cmd/api 组装
type Deps struct {
	Tokens   middleware.TokenParser
	Counter  *service.CounterService
	Commands *service.CommandService
	Votes    *service.VoteService
	Settings *service.SettingsService
	Pool     *service.WorkerPool
	Sessions *ranking.SessionManager
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	message := handler.NewMessageHandler(d.Counter, d.Pool)
	guild := handler.NewGuildHandler(d.Commands)
	vote := handler.NewVoteHandler(d.Votes)
	settings := handler.NewSettingsHandler(d.Settings)
	stats := handler.NewStatsHandler(d.Commands)
	session := handler.NewSessionHandler(d.Commands, d.Sessions)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"msg": "ok"}) })

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(d.Tokens))

	// 消息接入
	messageGroup := api.Group("/messages")
	{
		messageGroup.POST("", message.Handle)
		messageGroup.POST("/batch", message.Batch)
	}

	// guild 内命令
	guildGroup := api.Group("/guilds/:guild_id")
	{
		guildGroup.GET("/count", guild.Count)
		guildGroup.GET("/total", guild.Total)
		guildGroup.GET("/rankings", guild.Rankings)
		guildGroup.GET("/verified", guild.Verified)
		guildGroup.GET("/passes", guild.Passes)
		guildGroup.POST("/passes", guild.GrantPasses)
		guildGroup.GET("/pass-holders", guild.PassHolders)
		guildGroup.POST("/votes", vote.Cast)
		guildGroup.GET("/settings", settings.List)
		guildGroup.PUT("/settings", settings.Update)
	}

	// 全局统计
	statsGroup := api.Group("/stats")
	{
		statsGroup.GET("/total", stats.Total)
		statsGroup.GET("/records", stats.Records)
	}
	leaderboardGroup := api.Group("/leaderboard")
	{
		leaderboardGroup.GET("/communities", stats.TopCommunities)
		leaderboardGroup.GET("/members", stats.TopMembers)
	}

	// 排行翻页会话
	sessionGroup := api.Group("/sessions")
	{
		sessionGroup.POST("", session.Open)
		sessionGroup.GET("/:id", session.Get)
		sessionGroup.POST("/:id/navigate", session.Navigate)
	}

	return r
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"slices"

	"adedonha/config"
	"adedonha/game"
	"adedonha/logger"
	"adedonha/storage"
	"adedonha/users"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// registry is everything main wires: the game core's slice plus the query
// endpoints' slice of the user store.
type registry interface {
	game.UserRegistry
	users.Registry
}

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	if len(allowedOrigins) > 0 {
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
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
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
	}

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger.SetDebug(cfg.Debug)
	gin.SetMode(cfg.GinMode)

	var repo registry
	if cfg.PostgresURL != "" {
		pgRepo, err := storage.NewPostgresRepo(context.Background(), cfg.PostgresURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pgRepo.Close()
		repo = pgRepo
		logger.Info("user registry: postgres")
	} else {
		repo = storage.NewMemoryRepo()
		logger.Info("user registry: in-memory")
	}

	lobby := game.NewLobby(repo, game.NewTickerGen())
	lobbyStarted := make(chan struct{})
	go lobby.Run(lobbyStarted)
	<-lobbyStarted

	gameHandler := game.NewHandler(lobby, repo)
	usersHandler := users.NewHandler(repo)

	r := CreateServer(cfg.AllowedOrigins)

	r.GET("/ws", gameHandler.ServeWS)

	{
		api := r.Group("/api")
		api.GET("/ranking", usersHandler.RankingHandler)
		api.GET("/ranking/friends/:userId", usersHandler.FriendRankingHandler)
		api.GET("/user/:id", usersHandler.ProfileHandler)
		api.POST("/user", usersHandler.UpsertHandler)
		api.POST("/friends/add", usersHandler.AddFriendHandler)
		api.GET("/rooms", gameHandler.PublicRoomsHandler)
	}

	logger.Infof("adedonha server listening on :%d", cfg.Port)
	if err := r.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Fatalf("couldn't start server: %v", err)
	}
}

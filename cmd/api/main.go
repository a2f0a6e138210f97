package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"mango-roulette-backend/internal/config"
	"mango-roulette-backend/internal/handlers"
	"mango-roulette-backend/internal/middleware"
	"mango-roulette-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisService.Close()

	jwtService := services.NewJWTService(cfg)
	ledger := services.NewLedger(redisService)
	houseFund := services.NewHouseFundService(redisService)
	converter := services.NewConverter(ledger, cfg)
	rewards := services.NewRewardScheduler(redisService, ledger, cfg)

	paramsService := services.NewParamsService(redisService, cfg)
	if err := paramsService.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load game params: %v", err)
	}

	engine := services.NewRoundEngine(redisService, ledger, houseFund, paramsService)

	wsHandler := handlers.NewWebSocketHandler(redisService)
	engine.SetBroadcaster(wsHandler)

	if _, err := engine.EnsureRound(context.Background()); err != nil {
		log.Fatalf("Failed to open initial round: %v", err)
	}

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()

		for now := range ticker.C {
			if err := engine.Tick(context.Background(), now); err != nil {
				log.Printf("Round tick failed: %v", err)
			}
		}
	}()

	authHandler := handlers.NewAuthHandler(redisService, jwtService, cfg)
	userHandler := handlers.NewUserHandler(redisService, rewards)
	gameHandler := handlers.NewGameHandler(engine, redisService)
	walletHandler := handlers.NewWalletHandler(ledger, converter, redisService, cfg)
	rewardsHandler := handlers.NewRewardsHandler(rewards, redisService)
	adminHandler := handlers.NewAdminHandler(paramsService, houseFund)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/me", userHandler.GetCurrentUser)
		protected.POST("/logout", userHandler.Logout)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		games := protected.Group("/games")
		{
			games.GET("/round", gameHandler.GetRound)
			games.POST("/bet", gameHandler.PlaceBet)
			games.GET("/rounds", gameHandler.GetRecentRounds)
			games.GET("/history", gameHandler.GetMyBets)

			games.GET("/verification", gameHandler.GetVerificationData)
			games.POST("/verify", gameHandler.VerifyOutcome)
		}

		wallet := protected.Group("/wallet")
		{
			wallet.GET("/balance", walletHandler.GetBalance)
			wallet.POST("/convert/expired", walletHandler.ConvertExpired)
			wallet.POST("/convert/juice", walletHandler.ConvertJuice)
			wallet.POST("/topup", walletHandler.TopUp)
			wallet.POST("/withdraw", walletHandler.Withdraw)
			wallet.GET("/transactions", walletHandler.GetTransactions)
			wallet.GET("/packages", walletHandler.GetPackages)
		}

		rewardRoutes := protected.Group("/rewards")
		{
			rewardRoutes.GET("/daily", rewardsHandler.GetDailyStatus)
			rewardRoutes.POST("/daily/claim", rewardsHandler.ClaimDaily)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/params", adminHandler.GetParams)
			admin.PUT("/params", adminHandler.UpdateParams)
			admin.POST("/params/reload", adminHandler.ReloadParams)

			admin.GET("/house", adminHandler.GetHouseFund)
			admin.POST("/house/deposit", adminHandler.DepositHouseFund)
			admin.POST("/house/withdraw", adminHandler.WithdrawHouseFund)
			admin.GET("/house/transactions", adminHandler.GetHouseTransactions)
		}
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/character-quiz/backend/internal/auth"
	"github.com/character-quiz/backend/internal/config"
	"github.com/character-quiz/backend/internal/database"
	"github.com/character-quiz/backend/internal/middleware"
	"github.com/character-quiz/backend/internal/persona"
	"github.com/character-quiz/backend/internal/profiles"
	"github.com/character-quiz/backend/internal/quiz"
	"github.com/character-quiz/backend/internal/rewards"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg := config.FromEnv()

	// Initialize database
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Reward events
	var publisher rewards.Publisher = rewards.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := rewards.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("Failed to connect to message broker: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Printf("Publishing quiz events to exchange %q", cfg.AMQPExchange)
	}

	var minter rewards.Issuer = rewards.NewSimulatedIssuer()
	if cfg.RewardIssuerURL != "" {
		minter = rewards.NewHTTPIssuer(cfg.RewardIssuerURL, cfg.RewardIssuerKey)
		log.Printf("Minting rewards through %s", cfg.RewardIssuerURL)
	} else {
		log.Println("REWARD_ISSUER_URL not set, rewards will be simulated")
	}
	rewardStore := rewards.NewStore(db)
	issuer := rewards.NewLedgerIssuer(minter, rewardStore, publisher)

	// Character profiles: files first, then the database
	profileSource := profiles.ChainSource{
		profiles.NewFileSource(cfg.ProfilesDir),
		profiles.NewStore(db),
	}

	// Quiz sessions
	registry := quiz.NewRegistry(cfg.SessionTTL)
	quizService := quiz.NewService(profileSource, quiz.NewStore(db), registry, issuer, publisher, quiz.Options{
		QuestionCount:   cfg.QuestionCount,
		RewardThreshold: cfg.RewardThreshold,
		RewardTimeout:   cfg.RewardTimeout,
		Generator: quiz.GeneratorConfig{
			IncludeTopics: cfg.IncludeTopics,
			IncludeLore:   cfg.IncludeLore,
		},
	})

	llm, _ := persona.NewClient(cfg.LLM)
	chatHandler := persona.NewHandler(quizService, llm, cfg.SessionTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go registry.StartSweeper(ctx, time.Minute)
	go chatHandler.StartSweeper(ctx, time.Minute)

	// Initialize handlers
	authHandler := auth.NewHandler(db, []byte(cfg.JWTSecret))
	quizHandler := quiz.NewHandler(quizService)
	rewardHandler := rewards.NewHandler(rewardStore)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth([]byte(cfg.JWTSecret)))
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	quizHandler.RegisterRoutes(protected)
	chatHandler.RegisterRoutes(protected)
	rewardHandler.RegisterRoutes(protected)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	log.Printf("Server starting on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"skillbuilder-assessment/internal/app"
	"skillbuilder-assessment/internal/config"
	"skillbuilder-assessment/internal/domain"
	"skillbuilder-assessment/internal/infra/memory"
	pgloader "skillbuilder-assessment/internal/infra/postgres"
	redisinfra "skillbuilder-assessment/internal/infra/redis"
	transport "skillbuilder-assessment/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).WithField("path", configPath).Warn("config not loaded, using defaults")
		cfg = config.Config{}
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var sessions app.SessionRepository
	var states app.StateStore
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
		states = redisinfra.NewStateStore(redisClient, config.TTLDuration(cfg.State.TTL, 0))
	} else {
		sessions = memory.NewSessionStore()
		states = memory.NewStateStore()
	}

	service := app.NewAssessmentService(quizRepo, sessions, states, app.Components{Logger: log})
	if err := service.RestoreBanditState(ctx); err != nil {
		log.WithError(err).Warn("bandit state restore failed, starting fresh")
	}
	wsHandler := transport.NewWSHandler(service, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting assessment service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides demo quiz data for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "Backend Fundamentals",
			Questions: []domain.Question{
				{
					ID:            "q1",
					Text:          "Which SQL clause filters rows after aggregation?",
					Options:       []string{"WHERE", "HAVING", "GROUP BY", "ORDER BY"},
					CorrectAnswer: "HAVING",
					Difficulty:    0.4,
				},
				{
					ID:            "q2",
					Text:          "Explain what database indexing is and why it speeds up queries.",
					CorrectAnswer: "An index is a data structure that lets the database find rows without scanning the whole table, trading extra storage and slower writes for faster reads.",
					Difficulty:    0.6,
				},
				{
					ID:            "q3",
					Text:          "What is the difference between a process and a thread?",
					CorrectAnswer: "A process has its own memory space while threads share the memory of their parent process, making threads lighter to create and switch between.",
					Difficulty:    0.5,
				},
			},
		},
	}
}

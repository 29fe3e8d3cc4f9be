package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Seljaki2/bingo/internal/app"
	"github.com/Seljaki2/bingo/internal/config"
	"github.com/Seljaki2/bingo/internal/domain"
	"github.com/Seljaki2/bingo/internal/infra/memory"
	pgstore "github.com/Seljaki2/bingo/internal/infra/postgres"
	rediscache "github.com/Seljaki2/bingo/internal/infra/redis"
	transport "github.com/Seljaki2/bingo/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz-bingo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
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

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var (
		questions   app.QuestionStore
		leaderboard app.LeaderboardStore
	)
	if pool != nil {
		store := pgstore.NewStore(pool)
		questions = store
		leaderboard = store
	} else {
		questions = sampleQuestionBank()
		leaderboard = memory.NewLeaderboardStore()
	}

	answerTTL := config.TTLDuration(cfg.Answers.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		questions = rediscache.NewAnswerCache(client, questions, answerTTL)
	} else {
		questions = memory.NewAnswerCache(questions, answerTTL)
	}

	engine := app.NewGameEngine(questions, leaderboard)
	wsHandler := transport.NewWSHandler(engine)

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
		log.Printf("starting quiz-bingo service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestionBank provides a minimal content set so the service runs
// without Postgres; swap in the real store for production.
func sampleQuestionBank() *memory.QuestionStore {
	store := memory.NewQuestionStore(
		[]domain.AgeGroup{
			{ID: 1, Name: "6-8 years"},
			{ID: 2, Name: "9-11 years"},
		},
		[]domain.Category{
			{ID: 1, Name: "Animals"},
			{ID: 2, Name: "Space"},
		},
	)
	ctx := context.Background()
	seed := []struct {
		q       domain.Question
		correct int
	}{
		{
			q: domain.Question{
				Prompt:     "Which animal is the tallest?",
				Options:    []string{"Elephant", "Giraffe", "Horse", "Lion"},
				CategoryID: 1,
				AgeGroupID: 1,
			},
			correct: 1,
		},
		{
			q: domain.Question{
				Prompt:     "How many legs does a spider have?",
				Options:    []string{"Six", "Eight", "Ten", "Four"},
				CategoryID: 1,
				AgeGroupID: 1,
			},
			correct: 1,
		},
		{
			q: domain.Question{
				Prompt:     "Which planet is known as the Red Planet?",
				Options:    []string{"Venus", "Jupiter", "Mars", "Saturn"},
				CategoryID: 2,
				AgeGroupID: 2,
			},
			correct: 2,
		},
	}
	for _, entry := range seed {
		if _, err := store.InsertQuestion(ctx, entry.q, entry.correct); err != nil {
			log.Printf("seed question: %v", err)
		}
	}
	return store
}

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/julz808/educoach-prep-portal-sub001/config"
	"github.com/julz808/educoach-prep-portal-sub001/database"
	_ "github.com/julz808/educoach-prep-portal-sub001/docs" // Swagger docs
	"github.com/julz808/educoach-prep-portal-sub001/internal/autosave"
	"github.com/julz808/educoach-prep-portal-sub001/internal/catalog"
	"github.com/julz808/educoach-prep-portal-sub001/internal/clock"
	sessionctrl "github.com/julz808/educoach-prep-portal-sub001/internal/controller/session"
	"github.com/julz808/educoach-prep-portal-sub001/internal/logger"
	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"github.com/julz808/educoach-prep-portal-sub001/internal/repository"
	"github.com/julz808/educoach-prep-portal-sub001/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

// @title Test-Prep Attempt Session API
// @version 1.0
// @description Attempt sessions for diagnostic, practice and drill tests: autosave, resume, timed submission, writing assessment and review.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func runServer() error {
	app := fx.New(
		// Core
		fx.Provide(
			loadConfig,
			loadCatalog,
			NewRepositories,
			NewGinEngine,
			clock.NewReal,
		),

		// Services
		fx.Provide(
			service.NewWritingGrader,
			service.NewWritingAssessmentService,
			service.NewScoringService,
			service.NewQuestionProvider,
			attemptConfig,
			service.NewAttemptManager,
		),

		// Controllers
		fx.Provide(
			sessionctrl.NewSessionController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to start application")
		return err
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return app.Stop(stopCtx)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.Log.Level, cfg.Log.Pretty)
	return cfg, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		log.Error().Err(err).Str("file", cfg.CatalogFile).Msg("loadCatalog: invalid product catalog")
		return nil, err
	}
	log.Info().Int("products", len(cat.Products())).Msg("loadCatalog: product catalog loaded")
	return cat, nil
}

func attemptConfig(cfg *config.Config) service.AttemptConfig {
	ac := service.DefaultAttemptConfig()
	if cfg.Autosave.Debounce > 0 {
		ac.Autosave.Debounce = cfg.Autosave.Debounce
	}
	if cfg.Autosave.PeriodicInterval > 0 {
		ac.Autosave.PeriodicInterval = cfg.Autosave.PeriodicInterval
	}
	if cfg.Autosave.UnloadTimeout > 0 {
		ac.UnloadTimeout = cfg.Autosave.UnloadTimeout
	}
	if cfg.Autosave.ExpireRetry > 0 {
		ac.ExpireRetry = cfg.Autosave.ExpireRetry
	}
	if ac.Autosave.MaxIdle < ac.Autosave.PeriodicInterval {
		ac.Autosave.MaxIdle = ac.Autosave.PeriodicInterval + autosave.DefaultConfig().MinIdle
	}
	return ac
}

// Repositories selects the storage backend named by DATABASE_DRIVER.
type Repositories struct {
	fx.Out

	DB        *gorm.DB
	Sessions  repository.SessionRepository
	Questions repository.QuestionRepository
	Grades    repository.WritingGradeRepository
}

func NewRepositories(cfg *config.Config) (Repositories, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn().Msg("NewRepositories: using in-memory storage, data is lost on restart")
		var questions []model.Question
		if cfg.QuestionsFile != "" {
			var err error
			if questions, err = repository.LoadQuestionsFile(cfg.QuestionsFile); err != nil {
				return Repositories{}, err
			}
			log.Info().Int("questions", len(questions)).Str("file", cfg.QuestionsFile).Msg("NewRepositories: question bank seeded")
		}
		return Repositories{
			Sessions:  repository.NewMemorySessionRepository(),
			Questions: repository.NewMemoryQuestionRepository(questions),
			Grades:    repository.NewMemoryWritingGradeRepository(),
		}, nil
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		return Repositories{}, err
	}
	return Repositories{
		DB:        db,
		Sessions:  repository.NewSessionRepository(db),
		Questions: repository.NewQuestionRepository(db),
		Grades:    repository.NewWritingGradeRepository(db),
	}, nil
}

func AutoMigrateDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return database.AutoMigrate(db)
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer mounts the session API and ties the HTTP
// server and live attempts to the application lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	sessionCtrl *sessionctrl.SessionController,
	manager service.AttemptManager,
) {
	sessionCtrl.RegisterRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Session API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return manager.Shutdown(shutdownCtx)
		},
	})
}

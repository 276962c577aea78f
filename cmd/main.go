package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hsalhab/mustawa/config"
	"github.com/hsalhab/mustawa/database"
	_ "github.com/hsalhab/mustawa/docs" // Swagger docs - auto-generated
	adminctrl "github.com/hsalhab/mustawa/internal/controller/admin"
	studentctrl "github.com/hsalhab/mustawa/internal/controller/student"
	"github.com/hsalhab/mustawa/internal/logger"
	"github.com/hsalhab/mustawa/internal/model"
	"github.com/hsalhab/mustawa/internal/repository"
	"github.com/hsalhab/mustawa/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Mustawa Arabic Placement API
// @version 1.0
// @description Adaptive Arabic placement testing: question banks, graded attempts, level routing through a test graph, and class enrollment.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
			func(cfg *config.Config) config.Placement { return cfg.Placement },
		),

		// Repositories Layer
		fx.Provide(
			repository.NewTestRepository,
			repository.NewQuestionRepository,
			repository.NewTestResultRepository,
			repository.NewUserRepository,
			repository.NewCourseRepository,
			repository.NewClassRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewAdminTestService,
			service.NewStudentTestService,
			service.NewClassMatcher,
			service.NewPlacementRouter,
			service.NewAttemptService,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewAdminTestController,
			studentctrl.NewStudentTestController,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.DebugMode)

	r := gin.New()

	// Gin request logging through Zerolog
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
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminTestCtrl *adminctrl.AdminTestController,
	studentTestCtrl *studentctrl.StudentTestController,
) {
	// Admin Routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		adminAPIGroup.POST("/courses", adminTestCtrl.CreateCourse)
		adminAPIGroup.POST("/classes", adminTestCtrl.CreateClass)
		adminAPIGroup.POST("/tests", adminTestCtrl.CreateTest)
		adminAPIGroup.GET("/tests", adminTestCtrl.GetAllTests)
		adminAPIGroup.GET("/tests/:test_id", adminTestCtrl.GetTestDetail)
		adminAPIGroup.DELETE("/questions/:question_id", adminTestCtrl.DeleteQuestion)
	}

	// Student Routes (prefixed with /api/v1)
	studentAPIGroup := router.Group("/api/v1")
	{
		studentAPIGroup.GET("/tests", studentTestCtrl.GetAvailableTests)
		studentAPIGroup.POST("/tests/:test_id/start", studentTestCtrl.StartTest)
		studentAPIGroup.POST("/test-results/:result_id/submit", studentTestCtrl.SubmitAnswers)
		studentAPIGroup.GET("/test-results/:result_id", studentTestCtrl.GetResultDetail)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Mustawa placement API server starting on port %s", cfg.Server.Port)
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
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Class{},
		&model.Test{},
		&model.Question{},
		&model.Option{},
		&model.TestResult{},
		&model.StudentAnswer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}

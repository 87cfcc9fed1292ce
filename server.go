package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/agridata-gh/maizeyield/preprocess"
	"github.com/agridata-gh/maizeyield/serving"
	"github.com/agridata-gh/maizeyield/training"
	"github.com/agridata-gh/maizeyield/utils"
)

// Server is the maize yield prediction HTTP server
type Server struct {
	router       *mux.Router
	config       *utils.ConfigManager
	modelService *serving.ModelService
	authManager  *utils.AuthManager
	history      *training.RunHistory
	scheduler    *utils.RetrainScheduler
	startedAt    time.Time
}

// NewServer wires configuration, logging, the model service, auth and
// the optional retraining scheduler.
func NewServer() (*Server, error) {
	if err := utils.LoadGlobalConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	configManager := utils.GetConfigManager()
	config := configManager.GetConfig()

	if err := utils.InitLogger(config.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := utils.GetLogger()

	s := &Server{
		router:    mux.NewRouter(),
		config:    configManager,
		startedAt: time.Now(),
	}

	s.modelService = serving.NewModelService(config.Paths.ModelDir)

	s.authManager = utils.NewAuthManager(
		config.Security.JWTSecret,
		time.Duration(config.Security.TokenExpiry)*time.Hour,
		utils.NewInMemoryUserStore())

	history, err := training.OpenRunHistory(config.Paths.HistoryDB)
	if err != nil {
		logger.Warn("Training run history unavailable",
			utils.Component("server"),
			utils.String("reason", err.Error()))
	} else {
		s.history = history
	}

	if config.Retrain.Enabled {
		s.scheduler = utils.NewRetrainScheduler(s.retrain)
		if err := s.scheduler.Start(config.Retrain.CronExpr); err != nil {
			logger.Error("Failed to start retraining scheduler", err,
				utils.Component("server"))
		}
	}

	s.setupRoutes()
	return s, nil
}

// retrain runs the full pipeline and hot-swaps the loaded model.
func (s *Server) retrain() error {
	config := s.config.GetConfig()

	result, err := preprocess.Run(preprocess.PipelineConfig{
		RawPath:       config.Paths.RawData,
		ProcessedDir:  config.Paths.ProcessedDir,
		ModelDir:      config.Paths.ModelDir,
		OutlierMethod: config.Training.OutlierMethod,
		Split: preprocess.SplitConfig{
			TrainSize:  config.Training.TrainSize,
			ValSize:    config.Training.ValSize,
			TestSize:   config.Training.TestSize,
			RandomSeed: config.Training.RandomSeed,
		},
	})
	if err != nil {
		return fmt.Errorf("preprocessing failed: %w", err)
	}

	trainer := training.NewTrainer(training.TrainerConfig{
		Seed:       config.Training.RandomSeed,
		Tune:       config.Training.Tune,
		TuneIter:   config.Training.TuneIter,
		Oversample: config.Training.Oversample,
		Stacking:   config.Training.Stacking,
	})
	report, err := trainer.TrainAll(result.Train, result.Val, result.Test, result.Scaler)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	if err := training.SaveReport(report, config.Paths.ModelDir); err != nil {
		return fmt.Errorf("saving model artifacts failed: %w", err)
	}

	if s.history != nil {
		if err := s.history.Record(report); err != nil {
			utils.GetLogger().Warn("Failed to record training run",
				utils.Component("server"),
				utils.String("reason", err.Error()))
		}
	}

	return s.modelService.Reload()
}

// Start starts the HTTP server
func (s *Server) Start() error {
	config := s.config.GetConfig()
	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	var handler http.Handler = s.router
	if config.Server.EnableCORS {
		c := cors.New(cors.Options{
			AllowedOrigins: config.Security.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		})
		handler = c.Handler(s.router)
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.Server.WriteTimeout) * time.Second,
	}

	utils.GetLogger().Info("Starting maize yield prediction server",
		utils.Component("server"),
		utils.String("addr", addr),
		utils.Bool("auth", config.Security.EnableAuth),
		utils.Bool("model_loaded", s.modelService.Available()))
	return srv.ListenAndServe()
}

// Shutdown stops background components.
func (s *Server) Shutdown() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.history != nil {
		s.history.Close()
	}
}

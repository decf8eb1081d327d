package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"esquad-go/internal/activity"
	"esquad-go/internal/awsx"
	"esquad-go/internal/config"
	"esquad-go/internal/files"
	"esquad-go/internal/identity"
	"esquad-go/internal/storage"
)

// Server represents the HTTP server and its dependencies
type Server struct {
	config          *config.Config
	aws             *awsx.Clients
	geoIP           *identity.GeoIPService
	tokenAuth       *jwtauth.JWTAuth
	filesHandler    *files.Handler
	activityHandler *activity.Handler
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, clients *awsx.Clients) (*Server, error) {
	// Initialize repositories
	filesRepo := files.NewDynamoRepository(clients.DynamoDB, cfg.FilesTable)
	activityRepo := activity.NewDynamoRepository(clients.DynamoDB, cfg.LogsTable)

	// Initialize services
	geoIP := identity.NewGeoIPService(cfg.GeoIPDBPath)
	presigner := storage.NewPresigner(clients.Presign, cfg.S3Bucket, cfg.PresignExpiry)
	activityService := activity.NewService(activityRepo, geoIP)
	filesService := files.NewService(filesRepo, presigner, activityService, cfg.DefaultPageSize, cfg.MaxPageSize)

	return &Server{
		config:          cfg,
		aws:             clients,
		geoIP:           geoIP,
		tokenAuth:       jwtauth.New("HS256", []byte(cfg.Secret), nil),
		filesHandler:    files.NewHandler(filesService),
		activityHandler: activity.NewHandler(activityService),
	}, nil
}

// Start initializes the HTTP server
func (s *Server) Start() (*http.Server, error) {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info().
		Int("port", s.config.Port).
		Str("env", s.config.Env).
		Msg("starting server")

	return srv, nil
}

// Close releases server-held resources.
func (s *Server) Close() error {
	return s.geoIP.Close()
}

// sendJSON sends a JSON response with consistent formatting
func (s *Server) sendJSON(w http.ResponseWriter, status int, success bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: success,
		Message: message,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("error encoding JSON response")
	}
}

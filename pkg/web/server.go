// Package web serves the NAS live-tail dashboard: username+password login,
// a websocket broadcasting every decoded message as it is produced, a REST
// endpoint over recently stored messages, and read/patch access to the
// running configuration.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/protei/nasdecode/pkg/nas"
	"github.com/protei/nasdecode/pkg/storage"
)

// AuthService is the subset of pkg/auth.Service the web layer depends on.
// It is expressed against Session rather than pkg/auth.Session directly so
// this package stays testable with a fake implementation.
type AuthService interface {
	Authenticate(username, password, ip string) (*Session, error)
	ValidateToken(token string) (*Session, error)
	Logout(token string)
}

// Session mirrors the fields of pkg/auth.Session the web layer needs.
type Session struct {
	Token    string
	Username string
	Role     string
}

// ConfigManager is the subset of pkg/config.Manager the configuration
// endpoints depend on.
type ConfigManager interface {
	GetConfig() (map[string]interface{}, error)
	UpdateConfig(updates map[string]interface{}) error
}

// MessageStore is the subset of pkg/storage.DB the recent-messages endpoint
// depends on.
type MessageStore interface {
	RecentMessages(limit int) ([]storage.StoredMessage, error)
}

// liveMessage is the payload pushed to websocket clients as soon as the
// capture pipeline decodes a packet, distinct from the database-backed
// history rows MessageStore returns.
type liveMessage struct {
	SourceFile  string       `json:"source_file"`
	PacketIndex int          `json:"packet_index"`
	DecodedAt   time.Time    `json:"decoded_at"`
	Message     *nas.Message `json:"message"`
}

// Config configures a new Server.
type Config struct {
	Port          int
	AuthService   AuthService
	ConfigManager ConfigManager
	Store         MessageStore
	Logger        zerolog.Logger
}

// Server is the NAS live-tail HTTP/websocket server.
type Server struct {
	port          int
	server        *http.Server
	logger        zerolog.Logger
	authService   AuthService
	configManager ConfigManager
	store         MessageStore
	wsClients     map[*websocket.Conn]bool
	wsClientsMux  sync.RWMutex
	upgrader      websocket.Upgrader
}

// New constructs a Server from cfg.
func New(cfg Config) *Server {
	return &Server{
		port:          cfg.Port,
		logger:        cfg.Logger,
		authService:   cfg.AuthService,
		configManager: cfg.ConfigManager,
		store:         cfg.Store,
		wsClients:     make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Start registers routes and begins serving. It returns once the listener
// stops (normally via Stop).
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", s.handleLogin)
	mux.HandleFunc("/api/auth/logout", s.requireAuth(s.handleLogout))
	mux.HandleFunc("/api/messages", s.requireAuth(s.handleMessages))
	mux.HandleFunc("/api/config", s.requireAuth(s.handleConfig))
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.corsMiddleware(mux),
	}

	s.logger.Info().Int("port", s.port).Msg("starting web server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web: listen: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type contextKey string

const contextKeySession contextKey = "session"

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.sendError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.sendError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		session, err := s.authService.ValidateToken(parts[1])
		if err != nil {
			s.sendError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeySession, session)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.authService.Authenticate(req.Username, req.Password, r.RemoteAddr)
	if err != nil {
		s.sendError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"token": session.Token,
		"role":  session.Role,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.authService.Logout(token)
	s.sendJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.sendError(w, http.StatusServiceUnavailable, "no message store configured")
		return
	}
	limit := 100
	msgs, err := s.store.RecentMessages(limit)
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}
	s.sendJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := s.configManager.GetConfig()
		if err != nil {
			s.sendError(w, http.StatusInternalServerError, "failed to read configuration")
			return
		}
		s.sendJSON(w, http.StatusOK, cfg)
	case http.MethodPut:
		var updates map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			s.sendError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.configManager.UpdateConfig(updates); err != nil {
			s.sendError(w, http.StatusInternalServerError, "failed to update configuration")
			return
		}
		s.sendJSON(w, http.StatusOK, map[string]string{"message": "configuration updated"})
	default:
		s.sendError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if _, err := s.authService.ValidateToken(token); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	s.wsClientsMux.Lock()
	s.wsClients[conn] = true
	s.wsClientsMux.Unlock()

	s.logger.Info().Msg("live-tail client connected")

	defer func() {
		s.wsClientsMux.Lock()
		delete(s.wsClients, conn)
		s.wsClientsMux.Unlock()
		conn.Close()
		s.logger.Info().Msg("live-tail client disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// BroadcastMessage fans a decoded NAS message out to every connected
// live-tail client as soon as the capture pipeline produces it.
func (s *Server) BroadcastMessage(sourceFile string, packetIndex int, msg *nas.Message) {
	s.broadcast("nas_message", liveMessage{
		SourceFile:  sourceFile,
		PacketIndex: packetIndex,
		DecodedAt:   time.Now(),
		Message:     msg,
	})
}

func (s *Server) broadcast(messageType string, payload interface{}) {
	envelope := map[string]interface{}{
		"type":      messageType,
		"payload":   payload,
		"timestamp": time.Now().Unix(),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal websocket message")
		return
	}

	s.wsClientsMux.RLock()
	defer s.wsClientsMux.RUnlock()
	for client := range s.wsClients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Warn().Err(err).Msg("failed to send websocket message")
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"go_version": runtime.Version(),
		"hostname":   getHostname(),
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode json response")
	}
}

func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]string{"error": message})
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dreamteams/go/internal/catalog"
	"github.com/mcdev12/dreamteams/go/internal/models"
	"github.com/mcdev12/dreamteams/go/internal/roster"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// SessionGate defines what the gateway needs from the session layer
type SessionGate interface {
	Login(ctx context.Context, identity, secret string) (*models.Session, error)
	Signup(ctx context.Context, identity, secret string) (*models.Session, error)
	Logout(ctx context.Context) error
	Current() (models.Session, error)
}

// Catalog defines what the gateway needs from the character catalog
type Catalog interface {
	Search(ctx context.Context, term string) error
	LoadMore(ctx context.Context) error
	FetchByID(ctx context.Context, id int) (*models.Character, error)
	Snapshot() catalog.Snapshot
	Subscribe() (<-chan catalog.Snapshot, func())
}

// Roster defines what the gateway needs from the roster store
type Roster interface {
	LoadTeams(ctx context.Context) (*roster.Hydration, error)
	CreateTeam(ctx context.Context, req roster.CreateTeamRequest) (*models.DreamTeam, error)
	AddMember(ctx context.Context, teamID uuid.UUID, character models.Character) (*models.DreamTeam, error)
	RemoveMember(ctx context.Context, teamID uuid.UUID, characterID int) (*models.DreamTeam, error)
	DeleteTeam(ctx context.Context, teamID uuid.UUID) error
	Snapshot() roster.Snapshot
	Subscribe() (<-chan roster.Snapshot, func())
}

// Config holds gateway settings
type Config struct {
	Addr             string
	AllowedOrigins   []string
	ConnectionConfig ConnectionConfig
	Clock            clockwork.Clock
	// Connections is created from ConnectionConfig when nil
	Connections      *ConnectionManager
}

// Service serves the HTTP API and pushes catalog and roster snapshots over websockets
type Service struct {
	config      Config
	sessions    SessionGate
	catalog     Catalog
	roster      Roster
	connections *ConnectionManager
	clock       clockwork.Clock

	// lifetime outlives single requests; background roster hydration runs under it
	lifetime context.Context
	stop     context.CancelFunc
}

// NewService creates a new gateway service
func NewService(config Config, sessions SessionGate, cat Catalog, rost Roster) *Service {
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	if config.ConnectionConfig.PingInterval == 0 {
		config.ConnectionConfig = DefaultConnectionConfig()
	}
	if config.Connections == nil {
		config.Connections = NewConnectionManager(config.ConnectionConfig, config.Clock)
	}
	lifetime, stop := context.WithCancel(context.Background())
	return &Service{
		config:      config,
		sessions:    sessions,
		catalog:     cat,
		roster:      rost,
		connections: config.Connections,
		clock:       config.Clock,
		lifetime:    lifetime,
		stop:        stop,
	}
}

// Connections exposes the websocket connection manager
func (s *Service) Connections() *ConnectionManager {
	return s.connections
}

// Start runs the connection manager and snapshot forwarding until ctx is done
func (s *Service) Start(ctx context.Context) {
	catalogCh, stopCatalog := s.catalog.Subscribe()
	rosterCh, stopRoster := s.roster.Subscribe()
	defer stopCatalog()
	defer stopRoster()

	go s.connections.Start(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-catalogCh:
			if !ok {
				catalogCh = nil
				continue
			}
			s.broadcast(CatalogSnapshot, snap)
		case snap, ok := <-rosterCh:
			if !ok {
				rosterCh = nil
				continue
			}
			s.broadcast(RosterSnapshot, snap)
		}
	}
}

func (s *Service) broadcast(t MessageType, data any) {
	msg, err := newMessage(t, data, s.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("type", string(t)).Msg("failed to build message")
		return
	}
	s.connections.Broadcast(msg)
}

// Handler builds the routed, CORS-wrapped handler
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}

// NewHTTPServer wraps the handler for cleartext HTTP/2
func (s *Service) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.config.Addr,
		Handler:           h2c.NewHandler(s.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// RegisterRoutes registers the API, websocket and health routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/session/login", s.handleLogin)
	mux.HandleFunc("POST /api/session/signup", s.handleSignup)
	mux.HandleFunc("POST /api/session/logout", s.handleLogout)
	mux.HandleFunc("GET /api/session", s.handleCurrentSession)

	mux.HandleFunc("GET /api/characters", s.handleListCharacters)
	mux.HandleFunc("POST /api/characters/more", s.handleLoadMore)
	mux.HandleFunc("GET /api/characters/{id}", s.handleGetCharacter)

	mux.HandleFunc("GET /api/teams", s.handleListTeams)
	mux.HandleFunc("POST /api/teams", s.handleCreateTeam)
	mux.HandleFunc("POST /api/teams/load", s.handleLoadTeams)
	mux.HandleFunc("DELETE /api/teams/{id}", s.handleDeleteTeam)
	mux.HandleFunc("POST /api/teams/{id}/members", s.handleAddMember)
	mux.HandleFunc("DELETE /api/teams/{id}/members/{characterID}", s.handleRemoveMember)

	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
}

// Shutdown stops background work started on behalf of requests
func (s *Service) Shutdown() {
	s.stop()
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Error().Err(err).Msg("failed to write health check response")
	}
}

func (s *Service) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := "anonymous"
	if sess, err := s.sessions.Current(); err == nil {
		userID = sess.UserID
	}

	var initial []Message
	now := s.clock.Now()
	if msg, err := newMessage(CatalogSnapshot, s.catalog.Snapshot(), now); err == nil {
		initial = append(initial, msg)
	}
	if msg, err := newMessage(RosterSnapshot, s.roster.Snapshot(), now); err == nil {
		initial = append(initial, msg)
	}

	if err := s.connections.UpgradeConnection(w, r, userID, initial...); err != nil {
		// the upgrader has already written an error response
		log.Error().Err(err).Str("user_id", userID).Msg("failed to upgrade websocket connection")
	}
}

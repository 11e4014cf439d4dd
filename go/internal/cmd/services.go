package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	marvel "github.com/mcdev12/dreamteams/go/clients/marvel_client"
	parse "github.com/mcdev12/dreamteams/go/clients/parse_client"
	"github.com/mcdev12/dreamteams/go/internal/catalog"
	"github.com/mcdev12/dreamteams/go/internal/config"
	"github.com/mcdev12/dreamteams/go/internal/events"
	"github.com/mcdev12/dreamteams/go/internal/gateway"
	"github.com/mcdev12/dreamteams/go/internal/roster"
	"github.com/mcdev12/dreamteams/go/internal/session"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Sessions *session.App
	Catalog  *catalog.App
	Roster   *roster.App
	Gateway  *gateway.Service

	closers []func()
}

// Close releases pools, broker connections and subscriber channels in reverse order.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func newCatalog(cfg *config.Config, clock clockwork.Clock) *catalog.App {
	client := marvel.NewMarvelClient(cfg.Marvel.BaseURL, cfg.Marvel.PublicKey, cfg.Marvel.PrivateKey, clock)
	if cfg.Marvel.Timeout > 0 {
		client.SetTimeout(cfg.Marvel.Timeout)
	}
	return catalog.NewApp(client, cfg.Marvel.PageSize)
}

func setupServices(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (*Services, error) {
	// Wire up dependency injection chain
	// Clients → App layer → Gateway
	s := &Services{}

	parseClient := parse.NewParseClient(cfg.Parse.ServerURL, cfg.Parse.ApplicationID, cfg.Parse.RESTAPIKey)
	s.Sessions = session.NewApp(parseClient, clock)

	s.Catalog = newCatalog(cfg, clock)
	s.closers = append(s.closers, s.Catalog.Close)

	repo, err := setupTeamRepository(ctx, cfg, parseClient, s)
	if err != nil {
		s.Close()
		return nil, err
	}

	publisher, err := setupPublisher(ctx, cfg, s)
	if err != nil {
		s.Close()
		return nil, err
	}

	connConfig := gateway.DefaultConnectionConfig()
	if cfg.Server.PingInterval > 0 {
		connConfig.PingInterval = cfg.Server.PingInterval
	}
	connections := gateway.NewConnectionManager(connConfig, clock)

	s.Roster = roster.NewApp(
		repo,
		s.Catalog,
		s.Sessions,
		gateway.NewEventFanout(connections, clock, publisher),
		roster.WithClock(clock),
	)
	s.closers = append(s.closers, s.Roster.Close)
	s.Sessions.OnLogin(s.Roster.Reset)
	s.Sessions.OnLogout(s.Roster.Reset)

	s.Gateway = gateway.NewService(gateway.Config{
		Addr:             cfg.Addr(),
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		ConnectionConfig: connConfig,
		Clock:            clock,
		Connections:      connections,
	}, s.Sessions, s.Catalog, s.Roster)
	s.closers = append(s.closers, s.Gateway.Shutdown)

	return s, nil
}

func setupTeamRepository(ctx context.Context, cfg *config.Config, parseClient *parse.ParseClient, s *Services) (roster.TeamRepository, error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		pool, err := setupDatabase(ctx, cfg.Store.Database)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)

		repo := roster.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	case config.StoreParse:
		return roster.NewParseRepository(parseClient, s.Sessions), nil
	default:
		return nil, fmt.Errorf("unknown team store %q", cfg.Store.Backend)
	}
}

func setupPublisher(ctx context.Context, cfg *config.Config, s *Services) (events.Publisher, error) {
	if cfg.Events.NATSURL == "" {
		log.Info().Msg("no NATS_URL configured, roster events go to the log")
		return events.NewLogPublisher(), nil
	}

	jsConfig := events.DefaultJetStreamConfig()
	jsConfig.URL = cfg.Events.NATSURL
	if cfg.Events.Stream != "" {
		jsConfig.StreamName = cfg.Events.Stream
	}
	if cfg.Events.SubjectPrefix != "" {
		jsConfig.SubjectPrefix = cfg.Events.SubjectPrefix
	}

	publisher, err := events.NewJetStreamPublisher(ctx, jsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}
	s.closers = append(s.closers, func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close event publisher")
		}
	})
	return publisher, nil
}

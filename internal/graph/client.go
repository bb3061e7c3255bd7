// Package graph is the ArangoDB persistence layer: schema management, the
// owner-scoped contact repository, and the identity store.
package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
)

// Config holds the ArangoDB connection settings.
type Config struct {
	URL      string
	Username string
	Password string
	Database string
}

// Validate checks the required connection fields.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("arangodb URL is required")
	}
	if c.Database == "" {
		return fmt.Errorf("arangodb database name is required")
	}
	return nil
}

// Client wraps the driver connection and the application database handle.
type Client struct {
	conn   connection.Connection
	arango arangodb.Client
	db     arangodb.Database
	cfg    Config
	logger *slog.Logger
}

// New connects to ArangoDB. EnsureSchema must run before the database handle
// is used.
func New(log *slog.Logger, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("arangodb config: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL})
	conn := connection.NewHttp2Connection(connection.DefaultHTTP2ConfigurationWrapper(endpoint, true))

	auth := connection.NewBasicAuth(cfg.Username, cfg.Password)
	if err := conn.SetAuthentication(auth); err != nil {
		return nil, fmt.Errorf("arangodb auth: %w", err)
	}

	return &Client{
		conn:   conn,
		arango: arangodb.NewClient(conn),
		cfg:    cfg,
		logger: log.With(slog.String("component", "graph")),
	}, nil
}

// Database returns the application database handle. Valid after EnsureSchema.
func (c *Client) Database() arangodb.Database {
	return c.db
}

// EnsureSchema creates the database, collections, graph, and indexes if they
// do not exist. Idempotent; runs at startup.
func (c *Client) EnsureSchema(ctx context.Context) error {
	if err := c.ensureDatabase(ctx); err != nil {
		return err
	}
	if err := c.ensureCollection(ctx, CollectionPersons, false); err != nil {
		return err
	}
	if err := c.ensureCollection(ctx, CollectionKnows, true); err != nil {
		return err
	}
	if err := c.ensureGraph(ctx); err != nil {
		return err
	}
	return c.ensureIndexes(ctx)
}

func (c *Client) ensureDatabase(ctx context.Context) error {
	exists, err := c.arango.DatabaseExists(ctx, c.cfg.Database)
	if err != nil {
		return fmt.Errorf("check database exists: %w", err)
	}
	if !exists {
		if _, err := c.arango.CreateDatabase(ctx, c.cfg.Database, nil); err != nil {
			return fmt.Errorf("create database: %w", err)
		}
		c.logger.Info("database created", slog.String("database", c.cfg.Database))
	}

	db, err := c.arango.GetDatabase(ctx, c.cfg.Database, nil)
	if err != nil {
		return fmt.Errorf("get database: %w", err)
	}
	c.db = db
	return nil
}

func (c *Client) ensureCollection(ctx context.Context, name string, isEdge bool) error {
	exists, err := c.db.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s exists: %w", name, err)
	}
	if exists {
		return nil
	}

	colType := arangodb.CollectionTypeDocument
	if isEdge {
		colType = arangodb.CollectionTypeEdge
	}
	props := &arangodb.CreateCollectionPropertiesV2{Type: &colType}
	if _, err := c.db.CreateCollectionV2(ctx, name, props); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	c.logger.Info("collection created", slog.String("collection", name), slog.Bool("is_edge", isEdge))
	return nil
}

func (c *Client) ensureGraph(ctx context.Context) error {
	exists, err := c.db.GraphExists(ctx, GraphName)
	if err != nil {
		return fmt.Errorf("check graph exists: %w", err)
	}
	if exists {
		return nil
	}

	def := &arangodb.GraphDefinition{
		Name: GraphName,
		EdgeDefinitions: []arangodb.EdgeDefinition{
			{Collection: CollectionKnows, From: []string{CollectionPersons}, To: []string{CollectionPersons}},
		},
	}
	if _, err := c.db.CreateGraph(ctx, GraphName, def, nil); err != nil {
		return fmt.Errorf("create graph: %w", err)
	}
	c.logger.Info("graph created", slog.String("graph", GraphName))
	return nil
}

// ensureIndexes creates the unique sparse index on channel_key. The index is
// what makes identity resolution race-safe: the second concurrent insert of
// the same channel user fails with a conflict instead of creating a twin node.
func (c *Client) ensureIndexes(ctx context.Context) error {
	col, err := c.db.GetCollection(ctx, CollectionPersons, nil)
	if err != nil {
		return fmt.Errorf("get collection %s: %w", CollectionPersons, err)
	}

	unique := true
	sparse := true
	_, _, err = col.EnsurePersistentIndex(ctx, []string{"channel_key"}, &arangodb.CreatePersistentIndexOptions{
		Name:   "uniq_channel_key",
		Unique: &unique,
		Sparse: &sparse,
	})
	if err != nil {
		return fmt.Errorf("ensure channel_key index: %w", err)
	}
	return nil
}

// Close releases the connection. The HTTP/2 connection has no explicit close;
// kept for lifecycle symmetry.
func (c *Client) Close() error {
	return nil
}

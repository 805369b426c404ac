// Package config handles process configuration: defaults, environment
// overlay, then command-line flags. The result is constructed once at
// startup and read-only afterwards.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// Storage backends.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Password hashers.
const (
	HasherBcrypt = "bcrypt"
	HasherArgon2 = "argon2"
)

var (
	ErrSecretMissing  = errors.New("signing secret is required (TUDU_SECRET or -secret)")
	ErrUnknownStore   = errors.New("unknown storage backend")
	ErrUnknownHasher  = errors.New("unknown password hasher")
	ErrDatabaseURLReq = errors.New("database URL is required for the postgres store")
)

// Config holds runtime settings for the server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - Store: storage backend, one of "mongo", "postgres", "memory".
//   - MongoURI / MongoDB: connection string and database name for "mongo".
//   - DatabaseURL: pgx connection string for "postgres".
//   - Secret: HMAC secret for signing session tokens (HS256). Required.
//   - Hasher: password hasher, "bcrypt" (default) or "argon2".
type Config struct {
	Addr        string
	Store       string
	MongoURI    string
	MongoDB     string
	DatabaseURL string
	Secret      string
	Hasher      string
}

func (c *Config) loadDefaults() {
	c.Addr = ":3000"
	c.Store = StoreMongo
	c.MongoURI = "mongodb://localhost:27017"
	c.MongoDB = "tudu"
	c.Hasher = HasherBcrypt
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("PORT"); ok {
		c.Addr = ":" + v
	}
	if v, ok := os.LookupEnv("TUDU_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := os.LookupEnv("TUDU_STORE"); ok {
		c.Store = v
	}
	if v, ok := os.LookupEnv("TUDU_MONGO_URI"); ok {
		c.MongoURI = v
	}
	if v, ok := os.LookupEnv("TUDU_MONGO_DB"); ok {
		c.MongoDB = v
	}
	if v, ok := os.LookupEnv("TUDU_DATABASE_URL"); ok {
		c.DatabaseURL = v
	}
	if v, ok := os.LookupEnv("TUDU_SECRET"); ok {
		c.Secret = v
	}
	if v, ok := os.LookupEnv("TUDU_HASHER"); ok {
		c.Hasher = v
	}
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("tudu", flag.ContinueOnError)

	fs.StringVar(&c.Addr, "addr", c.Addr, "address and port to run server")
	fs.StringVar(&c.Store, "store", c.Store, "storage backend: mongo, postgres or memory")
	fs.StringVar(&c.MongoURI, "mongo-uri", c.MongoURI, "MongoDB connection string")
	fs.StringVar(&c.MongoDB, "mongo-db", c.MongoDB, "MongoDB database name")
	fs.StringVar(&c.DatabaseURL, "database-url", c.DatabaseURL, "PostgreSQL connection string")
	fs.StringVar(&c.Secret, "secret", c.Secret, "token signing secret")
	fs.StringVar(&c.Hasher, "hasher", c.Hasher, "password hasher: bcrypt or argon2")

	return fs.Parse(args)
}

func (c *Config) validate() error {
	if c.Secret == "" {
		return ErrSecretMissing
	}
	switch c.Store {
	case StoreMongo, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store)
	}
	if c.Store == StorePostgres && c.DatabaseURL == "" {
		return ErrDatabaseURLReq
	}
	switch c.Hasher {
	case HasherBcrypt, HasherArgon2:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownHasher, c.Hasher)
	}
	return nil
}

// Load builds a Config by applying defaults, then the environment, then
// command-line flags.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.loadDefaults()
	cfg.applyEnv()
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

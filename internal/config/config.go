// Package config assembles the service configuration from an optional .env
// file, the environment, and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

const (
	defaultPort         = "8080"
	defaultCORSOrigins  = "http://localhost:5173,http://127.0.0.1:5173"
	defaultAMQPExchange = "nft-tickets"
	defaultTokenTTL     = 24 * time.Hour
	defaultLogFormat    = "text"
	defaultLogLevel     = "info"
)

// ErrHelp is returned by Load when --help was requested.
var ErrHelp = pflag.ErrHelp

type Config struct {
	Port         string
	DatabaseURL  string
	AMQPURL      string
	AMQPExchange string
	CORSOrigins  []string
	JWTSecret    string
	TokenTTL     time.Duration
	LogFormat    string
	LogLevel     string
	SeedFile     string
	// FaucetLimit caps a single development mint; zero disables the cap.
	FaucetLimit domain.Amount
	// FactoryOwner administers the event registry.
	FactoryOwner domain.Address

	// IssueToken, when set, makes the binary print a caller token for
	// the address and exit.
	IssueToken string
}

// Load reads configuration. args are the command-line arguments without the
// program name. Warnings about defaults go to logger.
func Load(args []string, logger *slog.Logger) (Config, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	loadEnvFile(logger)

	cfg := Config{
		Port:         envOr(logger, "PORT", defaultPort),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: envOr(logger, "AMQP_EXCHANGE", defaultAMQPExchange),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     defaultTokenTTL,
		LogFormat:    envOr(nil, "LOG_FORMAT", defaultLogFormat),
		LogLevel:     envOr(nil, "LOG_LEVEL", defaultLogLevel),
		SeedFile:     os.Getenv("SEED_FILE"),
	}
	cors := envOr(logger, "CORS_ORIGINS", defaultCORSOrigins)
	faucet := os.Getenv("FAUCET_LIMIT")
	factoryOwner := os.Getenv("FACTORY_OWNER")
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = d
	}

	flags := pflag.NewFlagSet("nft-tickets", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	flags.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "Postgres DSN for the record store (empty disables it)")
	flags.StringVar(&cfg.AMQPURL, "amqp-url", cfg.AMQPURL, "RabbitMQ URL for record publishing (empty disables it)")
	flags.StringVar(&cfg.AMQPExchange, "amqp-exchange", cfg.AMQPExchange, "topic exchange records are published to")
	flags.StringVar(&cors, "cors-origins", cors, "comma separated allowed origins")
	flags.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "lifetime of issued caller tokens")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "YAML file with events and balances created at startup")
	flags.StringVar(&faucet, "faucet-limit", faucet, "largest single faucet mint in token units")
	flags.StringVar(&factoryOwner, "factory-owner", factoryOwner, "address that owns the event registry")
	flags.StringVar(&cfg.IssueToken, "issue-token", "", "print a caller token for this address and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Usage of nft-tickets:\n%s", flags.FlagUsages())
		}
		return Config{}, err
	}
	if rest := flags.Args(); len(rest) > 0 {
		return Config{}, fmt.Errorf("unexpected argument: %s", rest[0])
	}

	cfg.CORSOrigins = parseCSV(cors)
	if faucet != "" {
		limit, err := domain.ParseAmount(faucet)
		if err != nil {
			return Config{}, fmt.Errorf("faucet limit: %w", err)
		}
		cfg.FaucetLimit = limit
	}
	if factoryOwner != "" {
		owner, err := domain.ParseAddress(factoryOwner)
		if err != nil {
			return Config{}, fmt.Errorf("factory owner: %w", err)
		}
		cfg.FactoryOwner = owner
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return cfg, nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

// Logger builds the process logger writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := c.Level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func envOr(logger *slog.Logger, key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if logger != nil {
		logger.Warn("env not set, using default", "key", key, "default", def)
	}
	return def
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// loadEnvFile loads the nearest .env in the working directory or its
// parents. Variables already set in the environment win.
func loadEnvFile(logger *slog.Logger) {
	path, err := findEnvFile()
	if err != nil {
		logger.Warn("failed to locate .env", "err", err)
		return
	}
	if path == "" {
		logger.Debug(".env not found in current or parent directories")
		return
	}
	if err := godotenv.Load(path); err != nil {
		logger.Warn("failed to load .env", "path", path, "err", err)
		return
	}
	logger.Info("loaded env", "path", path)
}

func findEnvFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for i := 0; i < 6; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the bot process needs from the environment so
// main stays lean.
type Config struct {
	// BotToken authenticates against the chat platform.
	BotToken string
	// AdminIDs is the static privileged set. Membership is a pure
	// set-containment test, no dynamic elevation.
	AdminIDs []int64
	// GroupID identifies the managed group invitations are scoped to.
	GroupID int64

	// DatabaseURL points at the Postgres instance holding applications.
	DatabaseURL string
	// RedisURL, when set, backs conversation state with Redis instead of
	// process memory.
	RedisURL string
	// KafkaBrokers, when set, enables lifecycle event publishing.
	KafkaBrokers []string
	// EventsTopic is the Kafka topic lifecycle events are produced to.
	EventsTopic string

	// OpsAddr is the listen address for the health/metrics endpoint.
	OpsAddr string
	// PollTimeout bounds a single long-poll request to the platform.
	PollTimeout time.Duration
}

// FromEnv builds a Config from environment variables. It returns an error
// rather than panicking so main can report misconfiguration cleanly.
func FromEnv() (Config, error) {
	cfg := Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		EventsTopic: os.Getenv("EVENTS_TOPIC"),
		OpsAddr:     os.Getenv("OPS_ADDR"),
		PollTimeout: 30 * time.Second,
	}
	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.EventsTopic == "" {
		cfg.EventsTopic = "village-gate.applications"
	}
	if cfg.OpsAddr == "" {
		cfg.OpsAddr = ":9090"
	}

	admins, err := parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return Config{}, err
	}
	if len(admins) == 0 {
		return Config{}, fmt.Errorf("ADMIN_IDS is required (comma-separated identities)")
	}
	cfg.AdminIDs = admins

	rawGroup := os.Getenv("GROUP_ID")
	if rawGroup == "" {
		return Config{}, fmt.Errorf("GROUP_ID is required")
	}
	groupID, err := strconv.ParseInt(rawGroup, 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse GROUP_ID: %w", err)
	}
	cfg.GroupID = groupID

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg, nil
}

// IsAdmin reports whether the identity belongs to the configured privileged set.
func (c Config) IsAdmin(id int64) bool {
	for _, admin := range c.AdminIDs {
		if admin == id {
			return true
		}
	}
	return false
}

func parseAdminIDs(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ADMIN_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

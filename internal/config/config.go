package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/SkillGG/bossDungeon/internal/room"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Room      room.Config
	Transport TransportConfig
	Journal   JournalConfig
	Log       LogConfig
}

type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type TransportConfig struct {
	// OutboxSize is how many encoded events a client may lag behind before
	// it is dropped.
	OutboxSize     int
	AllowedOrigins []string
	KeepAlive      time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type JournalConfig struct {
	// DSN enables the postgres journal; empty keeps it off.
	DSN       string
	QueueSize int
}

type LogConfig struct {
	Level       string
	Development bool
}

// Load reads an optional .env file, then environment variables over the
// defaults below.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Addr:            v.GetString("SERVER_ADDR"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Room: room.Config{
			Size:                 v.GetInt("ROOM_SIZE"),
			TickInterval:         v.GetDuration("ROOM_TICK_INTERVAL"),
			GameLaunchSeconds:    v.GetInt("ROOM_GAME_LAUNCH_SECONDS"),
			PickBossSeconds:      v.GetInt("ROOM_PICK_BOSS_SECONDS"),
			DeckSelectionSeconds: v.GetInt("ROOM_DECK_SELECTION_SECONDS"),
			InboxSize:            v.GetInt("ROOM_INBOX_SIZE"),
		},
		Transport: TransportConfig{
			OutboxSize:     v.GetInt("TRANSPORT_OUTBOX_SIZE"),
			AllowedOrigins: splitList(v.GetString("TRANSPORT_ALLOWED_ORIGINS")),
			KeepAlive:      v.GetDuration("TRANSPORT_KEEPALIVE"),
			ReadTimeout:    v.GetDuration("TRANSPORT_READ_TIMEOUT"),
			WriteTimeout:   v.GetDuration("TRANSPORT_WRITE_TIMEOUT"),
		},
		Journal: JournalConfig{
			DSN:       v.GetString("JOURNAL_DSN"),
			QueueSize: v.GetInt("JOURNAL_QUEUE_SIZE"),
		},
		Log: LogConfig{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := room.DefaultConfig()

	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	// SSE and websocket responses stay open, so no write deadline by default.
	v.SetDefault("SERVER_WRITE_TIMEOUT", "0s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "60s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "15s")

	v.SetDefault("ROOM_SIZE", d.Size)
	v.SetDefault("ROOM_TICK_INTERVAL", d.TickInterval.String())
	v.SetDefault("ROOM_GAME_LAUNCH_SECONDS", d.GameLaunchSeconds)
	v.SetDefault("ROOM_PICK_BOSS_SECONDS", d.PickBossSeconds)
	v.SetDefault("ROOM_DECK_SELECTION_SECONDS", d.DeckSelectionSeconds)
	v.SetDefault("ROOM_INBOX_SIZE", d.InboxSize)

	v.SetDefault("TRANSPORT_OUTBOX_SIZE", 64)
	v.SetDefault("TRANSPORT_ALLOWED_ORIGINS", "*")
	v.SetDefault("TRANSPORT_KEEPALIVE", "15s")
	v.SetDefault("TRANSPORT_READ_TIMEOUT", "60s")
	v.SetDefault("TRANSPORT_WRITE_TIMEOUT", "3s")

	v.SetDefault("JOURNAL_DSN", "")
	v.SetDefault("JOURNAL_QUEUE_SIZE", 128)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)
}

func (c *Config) validate() error {
	switch {
	case c.Room.Size < 1:
		return fmt.Errorf("ROOM_SIZE must be at least 1, got %d", c.Room.Size)
	case c.Room.TickInterval <= 0:
		return fmt.Errorf("ROOM_TICK_INTERVAL must be positive, got %s", c.Room.TickInterval)
	case c.Room.GameLaunchSeconds < 0 || c.Room.PickBossSeconds < 0 || c.Room.DeckSelectionSeconds < 0:
		return fmt.Errorf("phase durations must not be negative")
	case c.Transport.OutboxSize < 1:
		return fmt.Errorf("TRANSPORT_OUTBOX_SIZE must be at least 1, got %d", c.Transport.OutboxSize)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

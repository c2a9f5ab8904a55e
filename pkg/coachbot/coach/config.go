// Package coach implements the CoachBot orchestrator: configuration, the
// dialog router that turns inbound Discord messages into check-in entries,
// and the slash-command table.
package coach

import (
	"fmt"
	"time"

	"github.com/jholhewres/coachbot/pkg/coachbot/scheduler"
)

// Config holds all bot configuration.
type Config struct {
	// Name is the bot name used in /help output.
	Name string `yaml:"name"`

	// Timezone is the IANA zone the check-in schedule runs in
	// (e.g. "America/Denver").
	Timezone string `yaml:"timezone"`

	// Discord configures the chat transport and the single authorized user.
	Discord DiscordConfig `yaml:"discord"`

	// Craft configures the note store.
	Craft CraftConfig `yaml:"craft"`

	// Schedule configures the daily check-in times.
	Schedule ScheduleConfig `yaml:"schedule"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// DiscordConfig holds the Discord credential and the authorized recipient.
type DiscordConfig struct {
	// Token is the Discord bot token. May be left empty in the file and
	// resolved from the environment or the OS keyring.
	Token string `yaml:"token"`

	// UserID is the snowflake ID of the only user the bot talks to.
	UserID string `yaml:"user_id"`
}

// CraftConfig holds the note store endpoint.
type CraftConfig struct {
	// APIURL is the note store base URL; entries go to POST {APIURL}/blocks.
	APIURL string `yaml:"api_url"`
}

// ScheduleConfig holds the daily check-in times as "HH:MM" local wall-clock.
type ScheduleConfig struct {
	Morning string `yaml:"morning"`
	Evening string `yaml:"evening"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration defaults: check-ins at 07:00 and
// 17:30 in America/Denver.
func DefaultConfig() *Config {
	return &Config{
		Name:     "CoachBot",
		Timezone: "America/Denver",
		Schedule: ScheduleConfig{
			Morning: "07:00",
			Evening: "17:30",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks that every required setting is present and well-formed.
// A failure here is fatal at startup: the daemon refuses to run half
// configured rather than silently dropping check-ins later.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required (set DISCORD_BOT_TOKEN or run setup)")
	}
	if c.Discord.UserID == "" {
		return fmt.Errorf("discord.user_id is required (set DISCORD_USER_ID)")
	}
	for _, r := range c.Discord.UserID {
		if r < '0' || r > '9' {
			return fmt.Errorf("discord.user_id must be a numeric snowflake ID, got %q", c.Discord.UserID)
		}
	}
	if c.Craft.APIURL == "" {
		return fmt.Errorf("craft.api_url is required (set CRAFT_API_URL)")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if _, err := scheduler.ParseClockTime(c.Schedule.Morning); err != nil {
		return fmt.Errorf("schedule.morning: %w", err)
	}
	if _, err := scheduler.ParseClockTime(c.Schedule.Evening); err != nil {
		return fmt.Errorf("schedule.evening: %w", err)
	}
	return nil
}

// Location returns the configured time zone. Call Validate first; an
// invalid zone falls back to UTC here.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Package coach – keyring.go provides bot-token storage using the operating
// system's native keyring (Linux: Secret Service/GNOME Keyring, macOS:
// Keychain, Windows: Credential Manager).
//
// Priority for resolving the Discord token:
//  1. Environment variable / .env / config.yaml (already merged by the loader)
//  2. OS keyring (encrypted by the OS, requires user session)
package coach

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	// keyringService is the service name used in the OS keyring.
	keyringService = "coachbot"

	// keyringBotToken is the key name for the Discord bot token.
	keyringBotToken = "discord_bot_token"
)

// StoreKeyring saves the bot token to the OS keyring.
func StoreKeyring(value string) error {
	return keyring.Set(keyringService, keyringBotToken, value)
}

// GetKeyring retrieves the bot token from the OS keyring.
// Returns empty string if not found.
func GetKeyring() string {
	val, err := keyring.Get(keyringService, keyringBotToken)
	if err != nil {
		return ""
	}
	return val
}

// DeleteKeyring removes the bot token from the OS keyring.
func DeleteKeyring() error {
	return keyring.Delete(keyringService, keyringBotToken)
}

// KeyringAvailable checks if the OS keyring is accessible.
func KeyringAvailable() bool {
	testKey := "__coachbot_test__"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, testKey)
	return true
}

// ResolveBotToken fills in the Discord token when the environment and config
// file left it empty, falling back to the OS keyring. The config is updated
// in place.
func ResolveBotToken(cfg *Config, logger *slog.Logger) {
	if cfg.Discord.Token != "" {
		logger.Debug("bot token loaded from config/env")
		return
	}
	if val := GetKeyring(); val != "" {
		cfg.Discord.Token = val
		logger.Debug("bot token loaded from OS keyring")
		return
	}
	logger.Warn("no bot token found. Set DISCORD_BOT_TOKEN or run: coachbot setup")
}

// ReadSecret prompts for a secret on the terminal with echo disabled.
// Falls back to a plain line read when stdin is not a terminal.
func ReadSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

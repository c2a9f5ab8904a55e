package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jholhewres/coachbot/pkg/coachbot/coach"
)

// newSetupCmd creates the `coachbot setup` command for interactive
// configuration.
func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive setup wizard",
		Long: `Starts an interactive wizard to create your initial config.yaml.
Asks for the Discord bot token, your user ID, the Craft API URL, time zone
and check-in times. The bot token is stored in the OS keyring when one is
available - never in plaintext.

Examples:
  coachbot setup`,
		RunE: runSetup,
	}
}

func runSetup(cmd *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)
	cfg := coach.DefaultConfig()

	fmt.Println()
	fmt.Println("CoachBot — Setup Wizard")
	fmt.Println()

	// ── Step 1: Discord bot token ──
	token, err := coach.ReadSecret("1. Discord bot token: ")
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("a Discord bot token is required")
	}

	// ── Step 2: Authorized user ──
	fmt.Println()
	fmt.Println("   Only this user can talk to the bot; everyone else is ignored.")
	fmt.Println("   Discord user IDs are numeric (enable Developer Mode, right-click")
	fmt.Println("   your profile, Copy User ID).")
	fmt.Println()
	for {
		fmt.Print("2. Your Discord user ID: ")
		userID := readLine(reader)
		if userID == "" || !allDigits(userID) {
			fmt.Println("   [!] User ID must be a numeric snowflake ID.")
			continue
		}
		cfg.Discord.UserID = userID
		break
	}

	// ── Step 3: Craft API URL ──
	for {
		fmt.Print("3. Craft API base URL: ")
		url := readLine(reader)
		if url == "" {
			fmt.Println("   [!] The Craft API URL is required; check-ins are written there.")
			continue
		}
		cfg.Craft.APIURL = url
		break
	}

	// ── Step 4: Time zone and schedule ──
	fmt.Printf("4. Time zone [%s]: ", cfg.Timezone)
	if tz := readLine(reader); tz != "" {
		cfg.Timezone = tz
	}
	fmt.Printf("5. Morning check-in time [%s]: ", cfg.Schedule.Morning)
	if t := readLine(reader); t != "" {
		cfg.Schedule.Morning = t
	}
	fmt.Printf("6. Evening check-in time [%s]: ", cfg.Schedule.Evening)
	if t := readLine(reader); t != "" {
		cfg.Schedule.Evening = t
	}

	// Validate with the token in place before writing anything.
	cfg.Discord.Token = token
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// ── Store the token ──
	if coach.KeyringAvailable() {
		if err := coach.StoreKeyring(token); err != nil {
			fmt.Printf("   [!] Could not store token in the OS keyring: %v\n", err)
			fmt.Println("   Set DISCORD_BOT_TOKEN in your environment or .env instead.")
		} else {
			fmt.Println("   Token stored in the OS keyring.")
		}
	} else {
		fmt.Println("   [!] No OS keyring available.")
		fmt.Println("   Set DISCORD_BOT_TOKEN in your environment or .env file.")
	}

	// ── Write config.yaml (token sanitized to an env reference) ──
	path := "config.yaml"
	if flagPath, _ := cmd.Root().PersistentFlags().GetString("config"); flagPath != "" {
		path = flagPath
	}
	if err := coach.SaveConfig(cfg, path); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Config written to %s. Start the bot with: coachbot serve\n", path)
	return nil
}

// readLine reads one trimmed line from the reader.
func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// allDigits reports whether s is non-empty and numeric.
func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

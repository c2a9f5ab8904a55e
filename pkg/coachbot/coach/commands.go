// Package coach – commands.go implements the slash commands available to
// the authorized user over DM:
//
//	/morning  - trigger the morning check-in now
//	/evening  - trigger the evening check-in now
//	/status   - show pending check-in and next scheduled firing
//	/help     - show available commands
//
// Anything else starting with "/" gets the canned unknown-command reply.
package coach

import (
	"fmt"
	"strings"

	"github.com/jholhewres/coachbot/pkg/coachbot/channels"
	"github.com/jholhewres/coachbot/pkg/coachbot/checkin"
)

// CommandResult contains the result of a command execution.
type CommandResult struct {
	// Response is the text to send back.
	Response string

	// Handled is true if the message was processed as a command.
	Handled bool
}

// IsCommand returns true if the message starts with "/".
func IsCommand(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "/")
}

// HandleCommand processes a command from the authorized user. Commands
// short-circuit any pending check-in; the manual triggers re-arm it.
func (b *Bot) HandleCommand(msg *channels.IncomingMessage) CommandResult {
	content := strings.TrimSpace(msg.Content)
	if !IsCommand(content) {
		return CommandResult{Handled: false}
	}

	parts := strings.Fields(content)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "/morning":
		return CommandResult{Response: b.manualTrigger(checkin.KindMorning, morningPrompt), Handled: true}

	case "/evening":
		return CommandResult{Response: b.manualTrigger(checkin.KindEvening, eveningPrompt), Handled: true}

	case "/status":
		return CommandResult{Response: b.statusCommand(), Handled: true}

	case "/help":
		return CommandResult{Response: b.helpCommand(), Handled: true}

	default:
		return CommandResult{Response: "Unknown command. Use /help to see what I can do.", Handled: true}
	}
}

// --- Command implementations ---

// manualTrigger arms the state and returns the prompt as the command
// response. Unlike scheduled firings there is no separate delivery step:
// the response IS the prompt, so arming here matches arm-on-send.
func (b *Bot) manualTrigger(kind checkin.Kind, prompt string) string {
	promptID := b.state.Arm(kind)
	b.logger.Info("manual check-in triggered", "kind", string(kind), "prompt_id", promptID)
	return prompt
}

func (b *Bot) statusCommand() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s status*\n\n", b.cfg.Name))

	kind, armedAt, _ := b.state.Snapshot()
	if kind == checkin.KindNone {
		sb.WriteString("No check-in pending.\n")
	} else {
		sb.WriteString(fmt.Sprintf("Waiting on: %s check-in (since %s)\n",
			kind.Label(),
			armedAt.In(b.cfg.Location()).Format("03:04 PM"),
		))
	}

	if b.sched != nil {
		next, at := b.sched.NextCheckIn(b.now())
		sb.WriteString(fmt.Sprintf("\nNext: **%s** check-in\n%s",
			next.Label(),
			at.Format("Monday, January 2 at 03:04 PM MST"),
		))
	}

	return sb.String()
}

func (b *Bot) helpCommand() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s Commands*\n\n", b.cfg.Name))
	sb.WriteString("/morning - Trigger the morning check-in now\n")
	sb.WriteString("/evening - Trigger the evening check-in now\n")
	sb.WriteString("/status  - Show pending check-in and next scheduled time\n")
	sb.WriteString("/help    - Show this message\n\n")
	sb.WriteString("When a check-in is pending, your next message is saved to your daily note.")
	return sb.String()
}

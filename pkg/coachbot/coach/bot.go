package coach

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jholhewres/coachbot/pkg/coachbot/channels"
	"github.com/jholhewres/coachbot/pkg/coachbot/checkin"
	"github.com/jholhewres/coachbot/pkg/coachbot/scheduler"
)

// Prompt and reply texts sent to the user.
const (
	morningPrompt = "Good morning! 🌅\n\nDid you complete your morning routine today?\n\nPlease share how it went!"
	eveningPrompt = "Evening check-in! 💪\n\nDid you get your exercise in today?\n\nLet me know how it went!"

	replyConfirmed     = "Got it! Added to your Craft daily note ✅"
	replyPublishFailed = "Received your response, but there was an issue writing to Craft. I'll log it for troubleshooting."
	replyApology       = "Sorry, I encountered an error processing your response. Please check the logs."

	replyGreeting = "Hey! I'll check in with you at the next scheduled time. Use /status to see when."
	replyThanks   = "Anytime! Keep it up 💪"
	replyDefault  = "Not waiting on a check-in right now. Use /help to see what I can do."
)

// sendTimeout bounds a single outbound DM.
const sendTimeout = 30 * time.Second

// Publisher writes a formatted check-in entry to the note store.
type Publisher interface {
	Publish(ctx context.Context, markdown string) error
}

// Bot is the dialog router. Message flow: receive → authorization check →
// command check → pending check-in reply → casual chatter. Scheduled
// triggers enter through HandleFire.
type Bot struct {
	cfg       *Config
	logger    *slog.Logger
	channel   channels.Channel
	state     *checkin.State
	publisher Publisher
	sched     *scheduler.Scheduler

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// New creates the bot. The scheduler may be nil until SetScheduler is
// called (the scheduler's fire handler needs the bot, so wiring is two-step).
func New(cfg *Config, channel channels.Channel, publisher Publisher, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		cfg:       cfg,
		logger:    logger.With("component", "coach"),
		channel:   channel,
		state:     checkin.NewState(),
		publisher: publisher,
		now:       time.Now,
	}
}

// SetScheduler attaches the scheduler used for /status next-firing queries.
func (b *Bot) SetScheduler(s *scheduler.Scheduler) {
	b.sched = s
}

// State exposes the conversation state (used by tests and /status).
func (b *Bot) State() *checkin.State {
	return b.state
}

// Run consumes the channel's incoming message stream until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot running", "user_id", b.cfg.Discord.UserID)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-b.channel.Receive():
			if !ok {
				return nil
			}
			b.handleMessage(ctx, msg)
		}
	}
}

// HandleFire is the scheduler's fire handler: send the prompt DM and arm
// the conversation state only on confirmed send. A delivery failure is
// logged and leaves the state untouched, so the bot never waits for a reply
// to a message that was never delivered.
func (b *Bot) HandleFire(kind checkin.Kind) {
	prompt := morningPrompt
	if kind == checkin.KindEvening {
		prompt = eveningPrompt
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := b.channel.SendDM(ctx, b.cfg.Discord.UserID, &channels.OutgoingMessage{Content: prompt}); err != nil {
		b.logger.Error("cannot deliver check-in prompt",
			"kind", string(kind),
			"user_id", b.cfg.Discord.UserID,
			"error", err,
		)
		return
	}

	promptID := b.state.Arm(kind)
	b.logger.Info("check-in prompt sent", "kind", string(kind), "prompt_id", promptID)
}

// handleMessage routes one inbound message. Evaluation order is strict:
// authorization, then commands, then a pending check-in reply, then casual
// chatter.
func (b *Bot) handleMessage(ctx context.Context, msg *channels.IncomingMessage) {
	// Unauthorized or non-DM traffic is dropped with a log line and no
	// reply, so strangers get no confirmation the bot exists.
	if msg.From == b.channel.SelfID() {
		return
	}
	if !msg.IsDM {
		b.logger.Info("ignoring non-DM message", "from", msg.From, "chat_id", msg.ChatID)
		return
	}
	if msg.From != b.cfg.Discord.UserID {
		b.logger.Warn("ignoring DM from unauthorized user", "from", msg.From)
		return
	}

	// Commands short-circuit a pending check-in.
	if IsCommand(msg.Content) {
		res := b.HandleCommand(msg)
		b.reply(ctx, res.Response)
		return
	}

	if kind := b.state.Peek(); kind != checkin.KindNone {
		b.processReply(ctx, kind, msg)
		return
	}

	b.reply(ctx, classifyChatter(msg.Content))
}

// processReply treats the whole message as the answer to the pending
// check-in. The state is cleared on every path, including publish failure
// and panic: a stuck armed state would deadlock the conversation, which is
// worse than a lost entry.
func (b *Bot) processReply(ctx context.Context, kind checkin.Kind, msg *channels.IncomingMessage) {
	defer func() {
		if r := recover(); r != nil {
			b.state.Disarm()
			b.logger.Error("panic while processing check-in reply", "kind", string(kind), "panic", r)
			b.reply(ctx, replyApology)
		}
	}()

	_, _, promptID := b.state.Snapshot()
	b.logger.Info("check-in reply received", "kind", string(kind), "prompt_id", promptID)

	entry := checkin.Format(kind, msg.Content, b.now().In(b.cfg.Location()))
	err := b.publisher.Publish(ctx, entry)
	b.state.Disarm()

	if err != nil {
		b.logger.Error("failed to write check-in to note store",
			"kind", string(kind),
			"prompt_id", promptID,
			"error", err,
		)
		b.reply(ctx, replyPublishFailed)
		return
	}

	b.logger.Info("check-in recorded", "kind", string(kind), "prompt_id", promptID)
	b.reply(ctx, replyConfirmed)
}

// reply sends a DM to the authorized user. Delivery errors are logged and
// otherwise swallowed: a failed canned reply must not crash the loop or
// touch conversation state.
func (b *Bot) reply(ctx context.Context, text string) {
	if text == "" {
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := b.channel.SendDM(sendCtx, b.cfg.Discord.UserID, &channels.OutgoingMessage{Content: text}); err != nil {
		b.logger.Error("failed to send reply", "error", err)
	}
}

// classifyChatter picks a canned reply for messages that arrive with no
// pending check-in and no command: greeting, thanks, or default.
func classifyChatter(content string) string {
	lower := strings.ToLower(content)

	for _, kw := range []string{"good morning", "good evening", "hello", "hey", "hi"} {
		if strings.Contains(lower, kw) {
			return replyGreeting
		}
	}
	for _, kw := range []string{"thank you", "thanks", "thx"} {
		if strings.Contains(lower, kw) {
			return replyThanks
		}
	}
	return replyDefault
}

package coach

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jholhewres/coachbot/pkg/coachbot/channels"
	"github.com/jholhewres/coachbot/pkg/coachbot/checkin"
	"github.com/jholhewres/coachbot/pkg/coachbot/scheduler"
)

const (
	testUserID = "111222333444555666"
	testSelfID = "999888777666555444"
)

// fakeChannel records outbound DMs and lets tests inject inbound messages.
type fakeChannel struct {
	in       chan *channels.IncomingMessage
	sent     []string
	sendErr  error
	selfID   string
	sentTo   []string
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		in:     make(chan *channels.IncomingMessage, 16),
		selfID: testSelfID,
	}
}

func (f *fakeChannel) Name() string                    { return "fake" }
func (f *fakeChannel) Connect(context.Context) error   { return nil }
func (f *fakeChannel) Disconnect() error               { return nil }
func (f *fakeChannel) SelfID() string                  { return f.selfID }
func (f *fakeChannel) IsConnected() bool               { return true }
func (f *fakeChannel) Health() channels.HealthStatus   { return channels.HealthStatus{Connected: true} }
func (f *fakeChannel) Receive() <-chan *channels.IncomingMessage { return f.in }

func (f *fakeChannel) SendDM(_ context.Context, to string, msg *channels.OutgoingMessage) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg.Content)
	f.sentTo = append(f.sentTo, to)
	return nil
}

// fakePublisher returns a scripted error and records what was published.
type fakePublisher struct {
	err       error
	published []string
	panicWith any
}

func (f *fakePublisher) Publish(_ context.Context, markdown string) error {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	f.published = append(f.published, markdown)
	return f.err
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Discord.Token = "token"
	cfg.Discord.UserID = testUserID
	cfg.Craft.APIURL = "http://localhost:0"
	cfg.Timezone = "UTC"
	return cfg
}

func newTestBot(ch *fakeChannel, pub *fakePublisher) *Bot {
	cfg := testConfig()
	b := New(cfg, ch, pub, nil)
	b.now = func() time.Time { return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) }

	morning, _ := scheduler.ParseClockTime(cfg.Schedule.Morning)
	evening, _ := scheduler.ParseClockTime(cfg.Schedule.Evening)
	b.SetScheduler(scheduler.New(cfg.Location(), morning, evening, nil, nil))
	return b
}

func dm(from, content string) *channels.IncomingMessage {
	return &channels.IncomingMessage{
		ID:      "m1",
		Channel: "fake",
		From:    from,
		ChatID:  "dm1",
		IsDM:    true,
		Content: content,
	}
}

func TestRouterDropsUnauthorizedSender(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	pub := &fakePublisher{}
	b := newTestBot(ch, pub)
	b.state.Arm(checkin.KindMorning)

	b.handleMessage(context.Background(), dm("someone-else", "yes"))

	if len(ch.sent) != 0 {
		t.Errorf("unauthorized sender got %d replies, want 0", len(ch.sent))
	}
	if len(pub.published) != 0 {
		t.Errorf("unauthorized sender triggered %d publishes, want 0", len(pub.published))
	}
	if got := b.state.Peek(); got != checkin.KindMorning {
		t.Errorf("state mutated to %q by unauthorized sender", got)
	}
}

func TestRouterDropsNonDM(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	b := newTestBot(ch, &fakePublisher{})

	msg := dm(testUserID, "hello")
	msg.IsDM = false
	b.handleMessage(context.Background(), msg)

	if len(ch.sent) != 0 {
		t.Errorf("guild message got %d replies, want 0", len(ch.sent))
	}
}

func TestRouterDropsSelfMessage(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	b := newTestBot(ch, &fakePublisher{})

	b.handleMessage(context.Background(), dm(testSelfID, "echo"))

	if len(ch.sent) != 0 {
		t.Errorf("self message got %d replies, want 0", len(ch.sent))
	}
}

func TestRouterPendingReplyPublishSuccess(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	pub := &fakePublisher{}
	b := newTestBot(ch, pub)
	b.state.Arm(checkin.KindMorning)

	b.handleMessage(context.Background(), dm(testUserID, "Yes I did it"))

	if got := b.state.Peek(); got != checkin.KindNone {
		t.Errorf("state = %q after successful publish, want KindNone", got)
	}
	if len(ch.sent) != 1 || ch.sent[0] != replyConfirmed {
		t.Errorf("sent = %q, want exactly one confirmation", ch.sent)
	}
	if len(pub.published) != 1 {
		t.Fatalf("published %d entries, want 1", len(pub.published))
	}
	if !strings.Contains(pub.published[0], "## Morning Check-in") ||
		!strings.Contains(pub.published[0], "**Routine completion:** Yes") {
		t.Errorf("published entry not formatted:\n%s", pub.published[0])
	}
	if !strings.HasSuffix(pub.published[0], "Yes I did it") {
		t.Errorf("raw reply not preserved:\n%s", pub.published[0])
	}
}

func TestRouterPendingReplyPublishFailure(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	pub := &fakePublisher{err: errors.New("note store unreachable")}
	b := newTestBot(ch, pub)
	b.state.Arm(checkin.KindEvening)

	b.handleMessage(context.Background(), dm(testUserID, "no time today"))

	if got := b.state.Peek(); got != checkin.KindNone {
		t.Errorf("state = %q after publish failure, want KindNone (disarm anyway)", got)
	}
	if len(ch.sent) != 1 || ch.sent[0] != replyPublishFailed {
		t.Errorf("sent = %q, want the degraded-success notice", ch.sent)
	}
}

func TestRouterPendingReplyPanicRecovered(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	pub := &fakePublisher{panicWith: "boom"}
	b := newTestBot(ch, pub)
	b.state.Arm(checkin.KindMorning)

	b.handleMessage(context.Background(), dm(testUserID, "yes"))

	if got := b.state.Peek(); got != checkin.KindNone {
		t.Errorf("state = %q after panic, want KindNone", got)
	}
	if len(ch.sent) != 1 || ch.sent[0] != replyApology {
		t.Errorf("sent = %q, want the generic apology", ch.sent)
	}
}

func TestRouterCommandShortCircuitsPendingState(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	pub := &fakePublisher{}
	b := newTestBot(ch, pub)
	b.state.Arm(checkin.KindMorning)

	b.handleMessage(context.Background(), dm(testUserID, "/help"))

	if len(pub.published) != 0 {
		t.Errorf("command text was published as a check-in reply")
	}
	if got := b.state.Peek(); got != checkin.KindMorning {
		t.Errorf("state = %q, command must not consume the pending check-in", got)
	}
	if len(ch.sent) != 1 || !strings.Contains(ch.sent[0], "/morning") {
		t.Errorf("help response = %q", ch.sent)
	}
}

func TestRouterManualTriggerArms(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	b := newTestBot(ch, &fakePublisher{})

	b.handleMessage(context.Background(), dm(testUserID, "/evening"))

	if got := b.state.Peek(); got != checkin.KindEvening {
		t.Errorf("state = %q after /evening, want KindEvening", got)
	}
	if len(ch.sent) != 1 || ch.sent[0] != eveningPrompt {
		t.Errorf("sent = %q, want the evening prompt", ch.sent)
	}
}

func TestRouterUnknownCommand(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	b := newTestBot(ch, &fakePublisher{})

	b.handleMessage(context.Background(), dm(testUserID, "/selfdestruct now"))

	if len(ch.sent) != 1 || !strings.Contains(ch.sent[0], "Unknown command") {
		t.Errorf("sent = %q, want the unknown-command reply", ch.sent)
	}
}

func TestRouterStatusCommand(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	b := newTestBot(ch, &fakePublisher{})
	b.state.Arm(checkin.KindMorning)

	b.handleMessage(context.Background(), dm(testUserID, "/status"))

	if len(ch.sent) != 1 {
		t.Fatalf("sent %d replies, want 1", len(ch.sent))
	}
	out := ch.sent[0]
	if !strings.Contains(out, "Morning routine check-in") {
		t.Errorf("status missing pending check-in:\n%s", out)
	}
	// At 08:00 UTC with slots 07:00/17:30, the next firing is the evening.
	if !strings.Contains(out, "**Exercise** check-in") {
		t.Errorf("status missing next firing:\n%s", out)
	}
}

func TestRouterCasualChatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		content string
		want    string
	}{
		{"hey there", replyGreeting},
		{"good morning!", replyGreeting},
		{"thanks a lot", replyThanks},
		{"thx", replyThanks},
		{"what's the weather", replyDefault},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.content, func(t *testing.T) {
			t.Parallel()

			ch := newFakeChannel()
			b := newTestBot(ch, &fakePublisher{})

			b.handleMessage(context.Background(), dm(testUserID, tt.content))

			if len(ch.sent) != 1 || ch.sent[0] != tt.want {
				t.Errorf("sent = %q, want %q", ch.sent, tt.want)
			}
		})
	}
}

func TestHandleFireArmsOnConfirmedSend(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	b := newTestBot(ch, &fakePublisher{})

	b.HandleFire(checkin.KindMorning)

	if got := b.state.Peek(); got != checkin.KindMorning {
		t.Errorf("state = %q after delivered prompt, want KindMorning", got)
	}
	if len(ch.sent) != 1 || ch.sent[0] != morningPrompt {
		t.Errorf("sent = %q, want the morning prompt", ch.sent)
	}
	if ch.sentTo[0] != testUserID {
		t.Errorf("prompt sent to %q, want the configured user", ch.sentTo[0])
	}
}

func TestHandleFireDeliveryFailureDoesNotArm(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	ch.sendErr = errors.New("user has DMs disabled")
	b := newTestBot(ch, &fakePublisher{})

	b.HandleFire(checkin.KindEvening)

	if got := b.state.Peek(); got != checkin.KindNone {
		t.Errorf("state = %q after failed delivery, want KindNone (arm only on confirmed send)", got)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	b := newTestBot(ch, &fakePublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	ch.in <- dm(testUserID, "/help")
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancel")
	}
}

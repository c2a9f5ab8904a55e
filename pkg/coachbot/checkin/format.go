package checkin

import (
	"strings"
	"time"
)

// Format renders a check-in reply as the markdown block appended to the
// daily note: a heading with the check-in label and wall-clock time, an
// optional inferred status line, then the raw reply text unmodified.
//
// Unknown kinds pass the text through unchanged. That is a defined
// fallback so a caller bug never loses the user's reply.
func Format(kind Kind, raw string, now time.Time) string {
	timestamp := now.Format("03:04 PM")

	switch kind {
	case KindMorning:
		var b strings.Builder
		b.WriteString("## Morning Check-in (" + timestamp + ")\n")
		if status := morningStatus(raw); status != "" {
			b.WriteString("**Routine completion:** " + status + "\n")
		}
		b.WriteString(raw)
		return b.String()

	case KindEvening:
		var b strings.Builder
		b.WriteString("## Exercise Check-in (" + timestamp + ")\n")
		if status := eveningStatus(raw); status != "" {
			b.WriteString("**Workout:** " + status + "\n")
		}
		b.WriteString(raw)
		return b.String()

	default:
		return raw
	}
}

// morningStatus infers routine completion from the reply text. Branch order
// matters: "yes" without "no" wins, then "partial", then "no". A reply
// containing both "yes" and "no" therefore lands on "No" unless it also
// says "partial".
func morningStatus(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "yes") && !strings.Contains(lower, "no"):
		return "Yes"
	case strings.Contains(lower, "partial"):
		return "Partial"
	case strings.Contains(lower, "no"):
		return "No"
	default:
		return ""
	}
}

// eveningStatus infers workout completion. Same keyword scan as the morning
// branch but with no "partial" tier.
func eveningStatus(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "yes") && !strings.Contains(lower, "no"):
		return "Yes"
	case strings.Contains(lower, "no"):
		return "No"
	default:
		return ""
	}
}

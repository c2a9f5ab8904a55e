package discord

import (
	"context"
	"strings"
	"testing"
)

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		chunks int
	}{
		{"fits", "hello", 2000, 1},
		{"empty", "", 2000, 1},
		{"exactly at limit", strings.Repeat("a", 10), 10, 1},
		{"one over limit", strings.Repeat("a", 11), 10, 2},
		{"long text", strings.Repeat("word ", 100), 50, 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chunks := splitMessage(tt.input, tt.limit)
			if len(chunks) != tt.chunks {
				t.Errorf("got %d chunks, want %d: %q", len(chunks), tt.chunks, chunks)
			}
			for i, c := range chunks {
				if len(c) > tt.limit {
					t.Errorf("chunk %d exceeds limit: %d > %d", i, len(c), tt.limit)
				}
			}
			if got := strings.Join(chunks, ""); got != tt.input {
				t.Errorf("chunks don't reassemble to the input")
			}
		})
	}
}

func TestSplitMessagePrefersNewlines(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("x", 8) + "\n" + strings.Repeat("y", 8)
	chunks := splitMessage(input, 10)

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want a split", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], "\n") && !strings.HasPrefix(chunks[1], "y") {
		t.Errorf("split did not land on the newline boundary: %q", chunks)
	}
}

func TestConnectRequiresToken(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	d := New(Config{}, nil)
	if err := d.Connect(ctx); err == nil {
		t.Fatal("Connect accepted an empty token")
	}
}

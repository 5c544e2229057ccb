package services

import (
	"context"
	"testing"

	"github.com/yellowpin/yellowpin-backend/internal/types"
)

func newReadStateFixture() (MessageLogService, ReadStateService) {
	store := newFakeStore()
	messages := NewMessageLogService(testLogger(), store, testMeta("u1_u2"))
	readState := NewReadStateService(testLogger(), store, messages)
	return messages, readState
}

func TestMarkReadZeroesUnread(t *testing.T) {
	ctx := context.Background()
	messages, readState := newReadStateFixture()

	for _, text := range []string{"a", "b", "c"} {
		if _, err := messages.Append(ctx, "u1_u2", types.Message{SenderID: "u1", Text: text}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	count, _, err := readState.ComputeUnread(ctx, "u1_u2", "u2")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if count != 3 {
		t.Fatalf("unread before mark = %d, want 3", count)
	}

	if err := readState.MarkRead(ctx, "u1_u2", "u2"); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	count, last, err := readState.ComputeUnread(ctx, "u1_u2", "u2")
	if err != nil {
		t.Fatalf("compute after mark: %v", err)
	}
	if count != 0 || last != nil {
		t.Fatalf("unread after mark = %d (last=%v), want 0", count, last)
	}
}

func TestUnreadIncrementsOnForeignAppend(t *testing.T) {
	ctx := context.Background()
	messages, readState := newReadStateFixture()

	if _, err := messages.Append(ctx, "u1_u2", types.Message{SenderID: "u1", Text: "first"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := readState.MarkRead(ctx, "u1_u2", "u2"); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	if _, err := messages.Append(ctx, "u1_u2", types.Message{SenderID: "u1", Text: "second"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	count, last, err := readState.ComputeUnread(ctx, "u1_u2", "u2")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if count != 1 {
		t.Fatalf("unread = %d, want 1", count)
	}
	if last == nil || last.Text != "second" {
		t.Fatalf("last unread = %+v, want the second message", last)
	}
}

func TestOwnMessagesAreNeverUnread(t *testing.T) {
	ctx := context.Background()
	messages, readState := newReadStateFixture()

	if _, err := messages.Append(ctx, "u1_u2", types.Message{SenderID: "u2", Text: "mine"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	count, _, err := readState.ComputeUnread(ctx, "u1_u2", "u2")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if count != 0 {
		t.Fatalf("own message counted as unread (%d)", count)
	}
}

func TestMarkReadOnEmptyLogIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	messages := NewMessageLogService(testLogger(), store, testMeta("u1_u2"))
	readState := NewReadStateService(testLogger(), store, messages)

	if err := readState.MarkRead(ctx, "u1_u2", "u2"); err != nil {
		t.Fatalf("mark read on empty log: %v", err)
	}
	if _, ok, _ := store.GetInt64(ctx, watermarkKey("u1_u2", "u2")); ok {
		t.Fatalf("watermark written for empty log")
	}
}

func TestMarkReadCoversOwnTrailingMessage(t *testing.T) {
	ctx := context.Background()
	messages, readState := newReadStateFixture()

	// Counterpart writes, then the user replies. MarkRead pins to the last
	// message overall, the user's own included.
	if _, err := messages.Append(ctx, "u1_u2", types.Message{SenderID: "u1", Text: "ping"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := messages.Append(ctx, "u1_u2", types.Message{SenderID: "u2", Text: "pong"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := readState.MarkRead(ctx, "u1_u2", "u2"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	count, _, err := readState.ComputeUnread(ctx, "u1_u2", "u2")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if count != 0 {
		t.Fatalf("unread = %d, want 0", count)
	}
}

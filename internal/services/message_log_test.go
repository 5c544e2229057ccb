package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/yellowpin/yellowpin-backend/internal/apierr"
	"github.com/yellowpin/yellowpin-backend/internal/types"
)

func testMeta(conversationID string) *fakeMetadata {
	return &fakeMetadata{meta: &types.ConversationMetadata{
		ConversationID: conversationID,
		PartyA:         "u1",
		PartyB:         "u2",
		Mode:           types.ModeHuman,
	}}
}

func TestAppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	svc := NewMessageLogService(testLogger(), newFakeStore(), testMeta("u1_u2"))

	for i := 0; i < 5; i++ {
		_, err := svc.Append(ctx, "u1_u2", types.Message{
			SenderID: "u1",
			Text:     fmt.Sprintf("msg-%d", i),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	msgs, err := svc.Range(ctx, "u1_u2")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(msgs) != 5 {
		t.Fatalf("got %d messages, want 5", len(msgs))
	}
	for i, m := range msgs {
		if m.Text != fmt.Sprintf("msg-%d", i) {
			t.Fatalf("position %d holds %q", i, m.Text)
		}
		if i > 0 && msgs[i].Timestamp <= msgs[i-1].Timestamp {
			t.Fatalf("timestamps not strictly increasing: %d then %d", msgs[i-1].Timestamp, msgs[i].Timestamp)
		}
	}
}

func TestAppendResolvesImplicitParties(t *testing.T) {
	ctx := context.Background()
	svc := NewMessageLogService(testLogger(), newFakeStore(), testMeta("u1_u2"))

	// Sender known, role and receiver implicit.
	msg, err := svc.Append(ctx, "u1_u2", types.Message{SenderID: "u2", Text: "hello"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if msg.Role != types.RoleReceiver {
		t.Fatalf("role = %q, want %q", msg.Role, types.RoleReceiver)
	}
	if msg.ReceiverID != "u1" {
		t.Fatalf("receiver = %q, want u1", msg.ReceiverID)
	}

	// Only the role given; both ids implicit.
	msg, err = svc.Append(ctx, "u1_u2", types.Message{Role: types.RoleSender, Text: "hi"})
	if err != nil {
		t.Fatalf("append by role: %v", err)
	}
	if msg.SenderID != "u1" || msg.ReceiverID != "u2" {
		t.Fatalf("resolved %q -> %q, want u1 -> u2", msg.SenderID, msg.ReceiverID)
	}
}

func TestAppendFailsClosedWithoutMetadata(t *testing.T) {
	ctx := context.Background()
	svc := NewMessageLogService(testLogger(), newFakeStore(), &fakeMetadata{err: fmt.Errorf("cache and durable both down")})

	_, err := svc.Append(ctx, "u1_u2", types.Message{SenderID: "u1", Text: "hello"})
	if !apierr.IsCode(err, apierr.CodeMetadataUnavailable) {
		t.Fatalf("expected METADATA_UNAVAILABLE, got %v", err)
	}
}

func TestAppendUnknownSender(t *testing.T) {
	ctx := context.Background()
	svc := NewMessageLogService(testLogger(), newFakeStore(), testMeta("u1_u2"))

	_, err := svc.Append(ctx, "u1_u2", types.Message{SenderID: "intruder", Text: "hello"})
	if !apierr.IsCode(err, apierr.CodeMetadataUnavailable) {
		t.Fatalf("expected METADATA_UNAVAILABLE, got %v", err)
	}
}

func TestAppendValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewMessageLogService(testLogger(), newFakeStore(), testMeta("u1_u2"))

	if _, err := svc.Append(ctx, "", types.Message{SenderID: "u1", Text: "x"}); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("missing conversation id: got %v", err)
	}
	if _, err := svc.Append(ctx, "u1_u2", types.Message{SenderID: "u1"}); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("missing text: got %v", err)
	}
	if _, err := svc.Append(ctx, "u1_u2", types.Message{SenderID: "u1", ReceiverID: "u2", Role: "observer", Text: "x"}); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("bad role: got %v", err)
	}
}

func TestRangeOfEmptyLogIsEmpty(t *testing.T) {
	svc := NewMessageLogService(testLogger(), newFakeStore(), testMeta("u1_u2"))

	msgs, err := svc.Range(context.Background(), "u1_u2")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(msgs))
	}
}

func TestAppendResetsLogTTL(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewMessageLogService(testLogger(), store, testMeta("u1_u2"))

	if _, err := svc.Append(ctx, "u1_u2", types.Message{SenderID: "u1", Text: "hello"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got := store.ttls[logKey("u1_u2")]; got != CacheTTL {
		t.Fatalf("log ttl = %v, want %v", got, CacheTTL)
	}
}

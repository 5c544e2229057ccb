package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/yellowpin/yellowpin-backend/internal/types"
)

func newResponderFixture(bots *fakeBotRepo, assist *fakeAssist) (BotResponderService, MessageLogService) {
	log := testLogger()
	store := newFakeStore()
	meta := testMeta("u1_u2")
	messages := NewMessageLogService(log, store, meta)
	responder := NewBotResponderService(log, bots, assist, meta, messages)
	return responder, messages
}

func ownedBot(ownerID string, knowledge int64) *fakeBotRepo {
	return &fakeBotRepo{
		bot:       &types.Bot{ID: uuid.New(), OwnerID: ownerID, Name: "support"},
		knowledge: knowledge,
	}
}

func TestBotReplyIsGeneratedAndPersisted(t *testing.T) {
	ctx := context.Background()
	assist := &fakeAssist{reply: "We open at 9am."}
	responder, messages := newResponderFixture(ownedBot("u2", 3), assist)

	reply := responder.HandleIncoming(ctx, "u1_u2", "u1", "u2", "when do you open?")

	if reply.Text != "We open at 9am." {
		t.Fatalf("reply = %q", reply.Text)
	}
	if reply.SenderID != "u2" || reply.ReceiverID != "u1" {
		t.Fatalf("reply authored %q -> %q, want u2 -> u1", reply.SenderID, reply.ReceiverID)
	}
	if reply.Timestamp == 0 {
		t.Fatalf("reply has no timestamp")
	}

	log, err := messages.Range(ctx, "u1_u2")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(log) != 1 || log[0].Text != reply.Text {
		t.Fatalf("reply not persisted: %+v", log)
	}
}

func TestNoBotYieldsApology(t *testing.T) {
	responder, _ := newResponderFixture(&fakeBotRepo{}, &fakeAssist{reply: "unused"})

	reply := responder.HandleIncoming(context.Background(), "u1_u2", "u1", "u2", "hello?")
	if reply.Text != ApologyReply {
		t.Fatalf("reply = %q, want apology", reply.Text)
	}
}

func TestZeroKnowledgeYieldsApology(t *testing.T) {
	assist := &fakeAssist{reply: "unused"}
	responder, _ := newResponderFixture(ownedBot("u2", 0), assist)

	reply := responder.HandleIncoming(context.Background(), "u1_u2", "u1", "u2", "hello?")
	if reply.Text != ApologyReply {
		t.Fatalf("reply = %q, want apology", reply.Text)
	}
	if assist.calls != 0 {
		t.Fatalf("generation attempted for knowledge-less bot")
	}
}

func TestGenerationFailureDegrades(t *testing.T) {
	assist := &fakeAssist{err: fmt.Errorf("model overloaded")}
	responder, messages := newResponderFixture(ownedBot("u2", 3), assist)

	reply := responder.HandleIncoming(context.Background(), "u1_u2", "u1", "u2", "hello?")
	if reply.Text != DegradedReply {
		t.Fatalf("reply = %q, want degraded", reply.Text)
	}

	// Even the degraded reply lands in the log.
	log, err := messages.Range(context.Background(), "u1_u2")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("degraded reply not persisted")
	}
}

func TestBotLookupFailureDegrades(t *testing.T) {
	responder, _ := newResponderFixture(&fakeBotRepo{getErr: fmt.Errorf("db down")}, &fakeAssist{})

	reply := responder.HandleIncoming(context.Background(), "u1_u2", "u1", "u2", "hello?")
	if reply.Text != DegradedReply {
		t.Fatalf("reply = %q, want degraded", reply.Text)
	}
}

func TestImplicitPartiesResolvedFromMetadata(t *testing.T) {
	assist := &fakeAssist{reply: "generated"}
	responder, _ := newResponderFixture(ownedBot("u2", 1), assist)

	// Only the sender supplied; the counterpart comes from metadata.
	reply := responder.HandleIncoming(context.Background(), "u1_u2", "u1", "", "hello?")
	if reply.Text != "generated" {
		t.Fatalf("reply = %q", reply.Text)
	}
	if reply.SenderID != "u2" || reply.ReceiverID != "u1" {
		t.Fatalf("reply authored %q -> %q, want u2 -> u1", reply.SenderID, reply.ReceiverID)
	}
}

func TestPersistenceFailureStillReturnsReply(t *testing.T) {
	ctx := context.Background()
	log := testLogger()
	store := newFakeStore()
	store.pushErr = fmt.Errorf("store down")
	meta := testMeta("u1_u2")
	messages := NewMessageLogService(log, store, meta)
	responder := NewBotResponderService(log, ownedBot("u2", 1), &fakeAssist{reply: "generated"}, meta, messages)

	reply := responder.HandleIncoming(ctx, "u1_u2", "u1", "u2", "hello?")
	if reply.Text != "generated" {
		t.Fatalf("reply = %q", reply.Text)
	}
	if reply.Timestamp == 0 {
		t.Fatalf("unpersisted reply missing timestamp")
	}
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yellowpin/yellowpin-backend/internal/clients/redis"
	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/realtime"
	"github.com/yellowpin/yellowpin-backend/internal/types"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// fakeStore is an in-memory redis.Store. TTLs are recorded but never enforced;
// tests exercise eviction by deleting keys.
type fakeStore struct {
	mu      sync.Mutex
	kv      map[string][]byte
	lists   map[string][][]byte
	ttls    map[string]time.Duration
	pushErr error
	getErr  error
	setErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		kv:    make(map[string][]byte),
		lists: make(map[string][][]byte),
		ttls:  make(map[string]time.Duration),
	}
}

func (s *fakeStore) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return false, s.getErr
	}
	raw, ok := s.kv[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (s *fakeStore) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	s.kv[key] = raw
	s.ttls[key] = ttl
	return nil
}

func (s *fakeStore) PushJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pushErr != nil {
		return s.pushErr
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	s.lists[key] = append(s.lists[key], raw)
	s.ttls[key] = ttl
	return nil
}

func (s *fakeStore) RangeJSON(ctx context.Context, key string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make([][]byte, len(s.lists[key]))
	copy(out, s.lists[key])
	return out, nil
}

func (s *fakeStore) SetInt64(ctx context.Context, key string, val int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.kv[key] = []byte(fmt.Sprintf("%d", val))
	s.ttls[key] = ttl
	return nil
}

func (s *fakeStore) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return 0, false, s.getErr
	}
	raw, ok := s.kv[key]
	if !ok {
		return 0, false, nil
	}
	var v int64
	if _, err := fmt.Sscanf(string(raw), "%d", &v); err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (s *fakeStore) Del(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kv, key)
	delete(s.lists, key)
	delete(s.ttls, key)
	return nil
}

func (s *fakeStore) Close() error { return nil }

var _ redis.Store = (*fakeStore)(nil)

// fakeConversationRepo holds conversations in a map, keyed by id.
type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*types.Conversation
	createCalls   int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]*types.Conversation)}
}

func (r *fakeConversationRepo) Create(ctx context.Context, tx *gorm.DB, conversation *types.Conversation) (*types.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if _, exists := r.conversations[conversation.ID]; exists {
		return nil, fmt.Errorf("duplicate key %s", conversation.ID)
	}
	cp := *conversation
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.conversations[conversation.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, tx *gorm.DB, conversationID string) (*types.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[conversationID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConversationRepo) ListByParty(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Conversation
	for _, c := range r.conversations {
		if c.PartyA == userID || c.PartyB == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) UpdateMode(ctx context.Context, tx *gorm.DB, conversationID string, mode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[conversationID]
	if !ok {
		return 0, nil
	}
	c.Mode = mode
	return 1, nil
}

// fakeBotRepo serves a single bot with a configurable knowledge count.
type fakeBotRepo struct {
	bot          *types.Bot
	knowledge    int64
	getErr       error
	knowledgeErr error
}

func (r *fakeBotRepo) Create(ctx context.Context, tx *gorm.DB, bot *types.Bot) (*types.Bot, error) {
	r.bot = bot
	return bot, nil
}

func (r *fakeBotRepo) GetByID(ctx context.Context, tx *gorm.DB, botID uuid.UUID) (*types.Bot, error) {
	if r.bot != nil && r.bot.ID == botID {
		return r.bot, nil
	}
	return nil, nil
}

func (r *fakeBotRepo) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string) (*types.Bot, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.bot != nil && r.bot.OwnerID == ownerID {
		return r.bot, nil
	}
	return nil, nil
}

func (r *fakeBotRepo) KnowledgeCount(ctx context.Context, tx *gorm.DB, botID uuid.UUID) (int64, error) {
	if r.knowledgeErr != nil {
		return 0, r.knowledgeErr
	}
	return r.knowledge, nil
}

func (r *fakeBotRepo) AddKnowledge(ctx context.Context, tx *gorm.DB, entry *types.BotKnowledge) (*types.BotKnowledge, error) {
	r.knowledge++
	return entry, nil
}

func (r *fakeBotRepo) ListKnowledge(ctx context.Context, tx *gorm.DB, botID uuid.UUID) ([]*types.BotKnowledge, error) {
	return nil, nil
}

// fakeAssist returns a canned reply or error.
type fakeAssist struct {
	reply string
	err   error
	calls int
}

func (a *fakeAssist) GenerateReply(ctx context.Context, botID uuid.UUID, question string, conversationID string) (string, error) {
	a.calls++
	if a.err != nil {
		return "", a.err
	}
	return a.reply, nil
}

// fakeBus delivers published messages synchronously to every registered
// forwarder, the origin instance's included.
type fakeBus struct {
	mu         sync.Mutex
	forwarders []func(m realtime.SSEMessage)
	publishErr error
}

func (b *fakeBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	b.mu.Lock()
	fns := make([]func(m realtime.SSEMessage), len(b.forwarders))
	copy(fns, b.forwarders)
	err := b.publishErr
	b.mu.Unlock()
	if err != nil {
		return err
	}
	for _, fn := range fns {
		fn(msg)
	}
	return nil
}

func (b *fakeBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forwarders = append(b.forwarders, onMsg)
	return nil
}

func (b *fakeBus) Close() error { return nil }

// fakeMetadata is a MetadataProvider with a fixed answer.
type fakeMetadata struct {
	meta *types.ConversationMetadata
	err  error
}

func (f *fakeMetadata) GetMetadata(ctx context.Context, conversationID string) (*types.ConversationMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.meta, nil
}

package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yellowpin/yellowpin-backend/internal/apierr"
	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/types"
)

// PreviewLength is the display truncation applied to the most recent unread
// message in a summary, in runes.
const PreviewLength = 100

// DefaultSummarizeParallelism bounds how many conversations Summarize scans
// concurrently when no limit is configured.
const DefaultSummarizeParallelism = 8

// NotificationService computes the unread summary on demand instead of
// maintaining running counters; recomputation is cheap at this scale and
// cannot drift.
type NotificationService interface {
	Summarize(ctx context.Context, userID string) (*types.UnreadSummary, error)
}

type notificationService struct {
	log           *logger.Logger
	conversations ConversationService
	readState     ReadStateService
	parallelism   int
}

func NewNotificationService(log *logger.Logger, conversations ConversationService, readState ReadStateService, parallelism int) NotificationService {
	if parallelism <= 0 {
		parallelism = DefaultSummarizeParallelism
	}
	return &notificationService{
		log:           log.With("service", "NotificationService"),
		conversations: conversations,
		readState:     readState,
		parallelism:   parallelism,
	}
}

func (ns *notificationService) Summarize(ctx context.Context, userID string) (*types.UnreadSummary, error) {
	if userID == "" {
		return nil, apierr.Validation(fmt.Errorf("user identifier is required"))
	}

	conversations, err := ns.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		summaries []types.ConversationSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ns.parallelism)
	for _, conversation := range conversations {
		c := conversation
		g.Go(func() error {
			count, last, err := ns.readState.ComputeUnread(gctx, c.ID, userID)
			if err != nil {
				return err
			}
			if count == 0 || last == nil {
				return nil
			}

			other := c.PartyB
			if c.PartyB == userID {
				other = c.PartyA
			}

			mu.Lock()
			summaries = append(summaries, types.ConversationSummary{
				ConversationID: c.ID,
				WithUserID:     other,
				UnreadCount:    count,
				Preview:        truncate(last.Text, PreviewLength),
				Timestamp:      last.Timestamp,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Timestamp > summaries[j].Timestamp
	})

	total := 0
	for _, s := range summaries {
		total += s.UnreadCount
	}

	return &types.UnreadSummary{
		TotalUnread:   total,
		Conversations: summaries,
	}, nil
}

// Preview applies the standard notification truncation to a message text.
func Preview(s string) string {
	return truncate(s, PreviewLength)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

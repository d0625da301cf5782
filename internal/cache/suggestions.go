package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"backend/internal/domain/models"
)

const (
	suggestionPrefix = "matches:"
	suggestionTTL    = 5 * time.Minute
)

// SuggestionStore keeps recent traditional match results in Redis so a user
// refreshing their matches page does not rescan candidates. AI-enhanced
// results are never cached, the blend depends on a live model call.
// A nil Client disables the store, every method becomes a no-op.
type SuggestionStore struct {
	Client *redis.Client
}

func suggestionKey(ticketID int64) string {
	return fmt.Sprintf("%s%d", suggestionPrefix, ticketID)
}

// Get returns the cached response for a ticket, or (nil, nil) on a miss.
func (s SuggestionStore) Get(ctx context.Context, ticketID int64) (*models.MatchResponse, error) {
	if s.Client == nil {
		return nil, nil
	}
	raw, err := s.Client.Get(ctx, suggestionKey(ticketID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var resp models.MatchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s SuggestionStore) Put(ctx context.Context, ticketID int64, resp models.MatchResponse) error {
	if s.Client == nil {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, suggestionKey(ticketID), raw, suggestionTTL).Err()
}

// Invalidate drops cached suggestions, called when a ticket changes.
func (s SuggestionStore) Invalidate(ctx context.Context, ticketID int64) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Del(ctx, suggestionKey(ticketID)).Err()
}

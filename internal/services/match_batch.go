package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/metrics"
	"backend/internal/utils"
)

// fallbackQueryTimeout bounds the traditional-only pass that runs after the
// batch deadline expired, so degraded tickets still get an answer.
const fallbackQueryTimeout = 5 * time.Second

// BatchFindMatches resolves matches for several tickets in one call.
// Tickets are processed in groups to bound fan-out; a failing ticket only
// fails its own entry. When the context deadline expires mid-batch the
// remaining tickets are served traditional-only on a fresh short deadline
// instead of erroring out.
func (s MatchService) BatchFindMatches(ctx context.Context, ticketIDs []string, useAI bool) models.BatchMatchResponse {
	ids := dedupe(ticketIDs)

	resp := models.BatchMatchResponse{
		Results: make(map[string]models.BatchTicketResult, len(ids)),
	}

	groupSize := s.Cfg.BatchGroupSize
	if groupSize <= 0 {
		groupSize = 1
	}

	var mu sync.Mutex
	for start := 0; start < len(ids); start += groupSize {
		end := start + groupSize
		if end > len(ids) {
			end = len(ids)
		}

		var wg sync.WaitGroup
		for _, key := range ids[start:end] {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				result := s.processOne(ctx, key, useAI)
				mu.Lock()
				resp.Results[key] = result
				if result.AIEnhanced {
					resp.AIEnhanced = true
				}
				mu.Unlock()
			}(key)
		}
		wg.Wait()
	}

	resp.TicketsProcessed = len(resp.Results)
	metrics.BatchTicketsTotal.Add(float64(len(resp.Results)))
	utils.LogEvent(s.RequestID, "match", "batch_find_matches",
		"tickets="+strconv.Itoa(resp.TicketsProcessed))
	return resp
}

func (s MatchService) processOne(ctx context.Context, key string, useAI bool) models.BatchTicketResult {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil || id <= 0 {
		return models.BatchTicketResult{Error: "invalid ticket id"}
	}

	if ctx.Err() != nil {
		// Batch deadline has passed. Give the ticket a traditional-only
		// answer on its own short deadline rather than dropping it.
		fresh, cancel := context.WithTimeout(context.Background(), fallbackQueryTimeout)
		defer cancel()
		ctx, useAI = fresh, false
	}

	res, err := s.FindMatches(ctx, id, useAI)
	if err != nil {
		return models.BatchTicketResult{Error: batchErrorMessage(err)}
	}
	return models.BatchTicketResult{
		Matches:      res.Matches,
		TotalMatches: res.TotalMatches,
		AIEnhanced:   res.AIEnhanced,
	}
}

func batchErrorMessage(err error) string {
	switch {
	case domain.IsNotFound(err):
		return "ticket not found"
	case domain.IsValidation(err):
		return err.Error()
	default:
		return "failed to find matches"
	}
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

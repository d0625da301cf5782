package services

import (
	"context"
	"strconv"
	"testing"

	"backend/internal/domain/models"
)

func TestBatchFindMatchesIsolatesFailures(t *testing.T) {
	good := scatteredTicket()
	svc := newTestMatchService(good, candidateSet())

	resp := svc.BatchFindMatches(context.Background(), []string{"1", "404", "abc"}, false)

	if resp.TicketsProcessed != 3 {
		t.Fatalf("want 3 processed, got %d", resp.TicketsProcessed)
	}
	if resp.AIEnhanced {
		t.Fatal("batch without AI must not claim enhancement")
	}

	ok := resp.Results["1"]
	if ok.Error != "" || ok.TotalMatches != 2 {
		t.Fatalf("healthy ticket result wrong: %+v", ok)
	}

	missing := resp.Results["404"]
	if missing.Error != "ticket not found" || missing.TotalMatches != 0 {
		t.Fatalf("missing ticket result wrong: %+v", missing)
	}

	bad := resp.Results["abc"]
	if bad.Error != "invalid ticket id" {
		t.Fatalf("invalid id result wrong: %+v", bad)
	}
}

func TestBatchFindMatchesCollapsesDuplicates(t *testing.T) {
	svc := newTestMatchService(scatteredTicket(), candidateSet())

	resp := svc.BatchFindMatches(context.Background(), []string{"1", "1", "1"}, false)
	if resp.TicketsProcessed != 1 {
		t.Fatalf("duplicates must collapse, got %d results", resp.TicketsProcessed)
	}
	if resp.Results["1"].TotalMatches != 2 {
		t.Fatalf("collapsed ticket result wrong: %+v", resp.Results["1"])
	}
}

func TestBatchFindMatchesGroupsLargeBatches(t *testing.T) {
	tickets := map[int64]models.Ticket{}
	keys := []string{}
	for i := int64(1); i <= 7; i++ {
		tk := scatteredTicket()
		tk.ID = i
		tk.UserID = i * 100
		tickets[i] = tk
		keys = append(keys, strconv.FormatInt(i, 10))
	}
	svc := MatchService{
		Tickets:   fakeTicketFinder{tickets: tickets, candidates: candidateSet()},
		Cfg:       testConfig(),
		RequestID: "test",
	}

	resp := svc.BatchFindMatches(context.Background(), keys, false)
	if resp.TicketsProcessed != 7 {
		t.Fatalf("want 7 processed, got %d", resp.TicketsProcessed)
	}
	for _, key := range keys {
		if res, ok := resp.Results[key]; !ok || res.Error != "" {
			t.Fatalf("ticket %s missing or failed: %+v", key, res)
		}
	}
}

func TestBatchFindMatchesSurvivesExpiredDeadline(t *testing.T) {
	svc := newTestMatchService(scatteredTicket(), candidateSet())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := svc.BatchFindMatches(ctx, []string{"1"}, true)
	res := resp.Results["1"]
	if res.Error != "" {
		t.Fatalf("expired deadline must degrade, not fail: %+v", res)
	}
	if res.AIEnhanced {
		t.Fatal("degraded pass must be traditional only")
	}
	if res.TotalMatches != 2 {
		t.Fatalf("degraded pass lost matches: %+v", res)
	}
}


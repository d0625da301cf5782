package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/config"
	"backend/internal/domain/models"
)

func rankerConfig(url string) config.MatchConfig {
	return config.MatchConfig{
		AIEnabled:         true,
		AIBaseURL:         url,
		AIModel:           "test-model",
		AITopN:            5,
		AITimeout:         2 * time.Second,
		TraditionalWeight: 0.6,
		AIWeight:          0.4,
	}
}

func rankerMatches() []models.MatchRecord {
	return []models.MatchRecord{
		{UserID: 2, UserName: "Asha", UserRating: 4.0, TicketID: 2, MatchScore: 50},
		{UserID: 3, UserName: "Ravi", UserRating: 3.0, TicketID: 3, MatchScore: 40},
	}
}

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestRerankBlendsScores(t *testing.T) {
	content := `[{"candidate_id":"user-2","ai_score":80,"confidence":0.9,"reasoning":"reunites the family"},` +
		`{"candidate_id":"user-3","ai_score":20,"confidence":0.6,"reasoning":"partial fit"}]`
	srv := chatServer(t, content)
	defer srv.Close()

	ranker := AIRanker{Cfg: rankerConfig(srv.URL), RequestID: "test"}
	out, used := ranker.Rerank(context.Background(), scatteredTicket(), rankerMatches())
	if !used {
		t.Fatal("expected AI scores to be applied")
	}

	// user 2: 0.6*50 + 0.4*80 = 62, user 3: 0.6*40 + 0.4*20 = 32.
	if out[0].UserID != 2 || out[0].MatchScore != 62 {
		t.Fatalf("user 2 blended wrong: %+v", out[0])
	}
	if out[1].MatchScore != 32 {
		t.Fatalf("user 3 blended wrong: %+v", out[1])
	}
	if out[0].TraditionalScore != 50 || out[0].AIScore != 80 || !out[0].AIEnhanced {
		t.Fatalf("AI fields not recorded: %+v", out[0])
	}
	if out[0].AIReasoning == "" || out[0].AIConfidence != 0.9 {
		t.Fatalf("reasoning/confidence lost: %+v", out[0])
	}
}

func TestRerankHandlesCodeFences(t *testing.T) {
	content := "```json\n[{\"candidate_id\":\"user-2\",\"ai_score\":70,\"confidence\":0.8,\"reasoning\":\"ok\"}]\n```"
	srv := chatServer(t, content)
	defer srv.Close()

	ranker := AIRanker{Cfg: rankerConfig(srv.URL), RequestID: "test"}
	out, used := ranker.Rerank(context.Background(), scatteredTicket(), rankerMatches())
	if !used {
		t.Fatal("fenced JSON should still parse")
	}
	if out[0].AIScore != 70 {
		t.Fatalf("fenced score lost: %+v", out[0])
	}
}

func TestRerankPartialRankingsKeepTraditional(t *testing.T) {
	content := `[{"candidate_id":"user-3","ai_score":90,"confidence":0.9,"reasoning":"good"}]`
	srv := chatServer(t, content)
	defer srv.Close()

	ranker := AIRanker{Cfg: rankerConfig(srv.URL), RequestID: "test"}
	out, used := ranker.Rerank(context.Background(), scatteredTicket(), rankerMatches())
	if !used {
		t.Fatal("partial rankings are still usable")
	}

	// user 3: 0.6*40 + 0.4*90 = 60, user 2 keeps its traditional 50 and
	// drops below.
	if out[0].UserID != 3 || out[0].MatchScore != 60 {
		t.Fatalf("ranked user wrong: %+v", out[0])
	}
	if out[1].UserID != 2 || out[1].MatchScore != 50 || out[1].AIEnhanced {
		t.Fatalf("skipped user must keep traditional score: %+v", out[1])
	}
}

func TestRerankFallsBackOnBadResponses(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"prose instead of json", "I think user-2 is the best match overall."},
		{"empty array", "[]"},
		{"score out of range", `[{"candidate_id":"user-2","ai_score":150,"confidence":0.5,"reasoning":"x"}]`},
		{"confidence out of range", `[{"candidate_id":"user-2","ai_score":50,"confidence":2,"reasoning":"x"}]`},
		{"missing candidate id", `[{"ai_score":50,"confidence":0.5,"reasoning":"x"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := chatServer(t, tc.content)
			defer srv.Close()

			ranker := AIRanker{Cfg: rankerConfig(srv.URL), RequestID: "test"}
			out, used := ranker.Rerank(context.Background(), scatteredTicket(), rankerMatches())
			if used {
				t.Fatal("unusable output must not count as AI enhanced")
			}
			if out[0].MatchScore != 50 || out[1].MatchScore != 40 {
				t.Fatalf("traditional scores must survive fallback: %+v", out)
			}
		})
	}
}

func TestRerankFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	ranker := AIRanker{Cfg: rankerConfig(srv.URL), RequestID: "test"}
	_, used := ranker.Rerank(context.Background(), scatteredTicket(), rankerMatches())
	if used {
		t.Fatal("5xx must fall back")
	}
}

func TestRerankFallsBackOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		fmt.Fprint(w, "{}")
	}))
	defer srv.Close()

	cfg := rankerConfig(srv.URL)
	cfg.AITimeout = 50 * time.Millisecond
	ranker := AIRanker{Cfg: cfg, RequestID: "test"}

	out, used := ranker.Rerank(context.Background(), scatteredTicket(), rankerMatches())
	if used {
		t.Fatal("timeout must fall back")
	}
	if out[0].MatchScore != 50 {
		t.Fatalf("traditional order must survive timeout: %+v", out)
	}
}

func TestRerankDisabledOrEmpty(t *testing.T) {
	ranker := AIRanker{Cfg: config.MatchConfig{AIEnabled: false}}
	if _, used := ranker.Rerank(context.Background(), scatteredTicket(), rankerMatches()); used {
		t.Fatal("disabled ranker must not claim AI enhancement")
	}

	ranker = AIRanker{Cfg: rankerConfig("http://127.0.0.1:1")}
	if _, used := ranker.Rerank(context.Background(), scatteredTicket(), nil); used {
		t.Fatal("empty match list must not trigger a model call")
	}
}

func TestRerankOnlyTouchesTopWindow(t *testing.T) {
	content := `[{"candidate_id":"user-2","ai_score":0,"confidence":1,"reasoning":"poor fit"},` +
		`{"candidate_id":"user-3","ai_score":0,"confidence":1,"reasoning":"poor fit"}]`
	srv := chatServer(t, content)
	defer srv.Close()

	cfg := rankerConfig(srv.URL)
	cfg.AITopN = 2
	matches := append(rankerMatches(), models.MatchRecord{UserID: 9, UserRating: 1, TicketID: 9, MatchScore: 10})

	ranker := AIRanker{Cfg: cfg, RequestID: "test"}
	out, used := ranker.Rerank(context.Background(), scatteredTicket(), matches)
	if !used {
		t.Fatal("expected AI to run")
	}
	if out[2].UserID != 9 || out[2].MatchScore != 10 || out[2].AIEnhanced {
		t.Fatalf("tail beyond the window must stay untouched: %+v", out[2])
	}
	// user 2: 0.6*50 = 30, user 3: 0.6*40 = 24, both still above the tail.
	if out[0].UserID != 2 || out[0].MatchScore != 30 {
		t.Fatalf("window re-rank wrong: %+v", out[0])
	}
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"backend/internal/config"
	"backend/internal/domain/models"
	"backend/internal/metrics"
	"backend/internal/utils"
)

// AIRanker re-ranks the top traditional matches through an OpenAI-compatible
// chat completions endpoint. The model never filters, never invents and
// never sees more than the top window; every failure path keeps the
// traditional ordering intact.
type AIRanker struct {
	Cfg       config.MatchConfig
	Client    *http.Client
	RequestID string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type aiRanking struct {
	CandidateID string  `json:"candidate_id"`
	AIScore     float64 `json:"ai_score"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
}

// Rerank blends model scores into the top window of matches. The second
// return reports whether AI scores were actually applied; on any error or
// unusable response it is false and matches are returned unchanged.
func (a AIRanker) Rerank(ctx context.Context, ticket models.Ticket, matches []models.MatchRecord) ([]models.MatchRecord, bool) {
	if !a.Cfg.AIEnabled || len(matches) == 0 {
		return matches, false
	}

	topN := a.Cfg.AITopN
	if topN <= 0 || topN > len(matches) {
		topN = len(matches)
	}
	window := matches[:topN]

	ctx, cancel := context.WithTimeout(ctx, a.Cfg.AITimeout)
	defer cancel()

	rankings, err := a.requestRankings(ctx, ticket, window)
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = "timeout"
		} else if errors.As(err, new(parseError)) {
			reason = "parse"
		}
		metrics.AIFallbacksTotal.WithLabelValues(reason).Inc()
		utils.LogEvent(a.RequestID, "ai_ranker", "fallback",
			fmt.Sprintf("ticket=%d reason=%s err=%v", ticket.ID, reason, err))
		return matches, false
	}

	byID := map[string]aiRanking{}
	for _, r := range rankings {
		byID[r.CandidateID] = r
	}

	for i := range window {
		m := &window[i]
		m.TraditionalScore = m.MatchScore
		r, ok := byID[candidateID(*m)]
		if !ok {
			// Model skipped this candidate, its traditional score stands.
			continue
		}
		m.AIScore = r.AIScore
		m.AIConfidence = r.Confidence
		m.AIReasoning = r.Reasoning
		m.AIEnhanced = true
		m.MatchScore = a.Cfg.TraditionalWeight*m.TraditionalScore + a.Cfg.AIWeight*r.AIScore
	}

	// Only the window is re-sorted. Anything past it kept its traditional
	// score, so the tail ordering is already correct.
	sort.Slice(window, func(i, j int) bool {
		if window[i].MatchScore != window[j].MatchScore {
			return window[i].MatchScore > window[j].MatchScore
		}
		if window[i].UserRating != window[j].UserRating {
			return window[i].UserRating > window[j].UserRating
		}
		return window[i].UserID < window[j].UserID
	})
	return matches, true
}

// parseError marks unusable model output so fallbacks can be counted apart
// from transport failures.
type parseError struct{ err error }

func (e parseError) Error() string { return e.err.Error() }
func (e parseError) Unwrap() error { return e.err }

func candidateID(m models.MatchRecord) string {
	return fmt.Sprintf("user-%d", m.UserID)
}

func (a AIRanker) requestRankings(ctx context.Context, ticket models.Ticket, window []models.MatchRecord) ([]aiRanking, error) {
	payload := chatRequest{
		Model:       a.Cfg.AIModel,
		Temperature: 0.2,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(ticket, window)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(a.Cfg.AIBaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.Cfg.AIAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.Cfg.AIAPIKey)
	}

	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: a.Cfg.AITimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ai endpoint returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, parseError{err}
	}
	if len(chat.Choices) == 0 {
		return nil, parseError{errors.New("no choices in response")}
	}
	return parseRankings(chat.Choices[0].Message.Content, len(window))
}

const systemPrompt = `You rank seat exchange candidates for Indian Railways passengers travelling in groups. ` +
	`Judge each candidate on how well the offered seats would reunite the requester's group, ` +
	`whether families end up seated together, the counterpart's reliability, and how feasible the swap is in practice. ` +
	`Respond with ONLY a JSON array, no prose.`

func buildPrompt(ticket models.Ticket, window []models.MatchRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Requesting group on train %s (%s), class %s, %d passengers in coaches %s.\n\n",
		ticket.TrainNumber, ticket.TrainName, ticket.ClassType,
		len(ticket.Passengers), strings.Join(ticket.Coaches(), ", "))
	b.WriteString("Candidates:\n")
	for _, m := range window {
		fmt.Fprintf(&b, "- %s: user %q rating %.1f, structural score %.0f, benefits: %s, offered seats:",
			candidateID(m), m.UserName, m.UserRating, m.MatchScore, m.BenefitDescription)
		for _, seat := range m.AvailableSeats {
			fmt.Fprintf(&b, " %s/%d(%s)", seat.Coach, seat.SeatNumber, seat.BerthType)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nReturn a JSON array of objects {\"candidate_id\", \"ai_score\" (0-100), \"confidence\" (0-1), \"reasoning\"} covering the candidates above, best first.")
	return b.String()
}

// parseRankings decodes the model's JSON array, tolerating markdown code
// fences but nothing else.
func parseRankings(content string, max int) ([]aiRanking, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	var rankings []aiRanking
	if err := json.Unmarshal([]byte(content), &rankings); err != nil {
		return nil, parseError{err}
	}
	if len(rankings) == 0 {
		return nil, parseError{errors.New("empty rankings array")}
	}
	if len(rankings) > max {
		rankings = rankings[:max]
	}
	for _, r := range rankings {
		if r.CandidateID == "" {
			return nil, parseError{errors.New("ranking missing candidate_id")}
		}
		if r.AIScore < 0 || r.AIScore > 100 {
			return nil, parseError{fmt.Errorf("ai_score %v out of range", r.AIScore)}
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			return nil, parseError{fmt.Errorf("confidence %v out of range", r.Confidence)}
		}
	}
	return rankings, nil
}

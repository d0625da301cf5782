package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/internal/cache"
	"backend/internal/config"
	"backend/internal/domain/models"
	"backend/internal/http/middleware"
	"backend/internal/repositories"
	"backend/internal/services"
	"backend/internal/utils"
)

func matchService(c *gin.Context) services.MatchService {
	reqID := middleware.GetRequestID(c)
	cfg := currentEnv().Match
	return services.MatchService{
		Tickets:   repositories.TicketRepository{},
		Ranker:    services.AIRanker{Cfg: cfg, RequestID: reqID},
		Cfg:       cfg,
		RequestID: reqID,
	}
}

func exchangeService(c *gin.Context) services.ExchangeService {
	return services.ExchangeService{
		Repo:      repositories.ExchangeRepository{},
		Tickets:   repositories.TicketRepository{},
		Users:     repositories.UserRepository{},
		RequestID: middleware.GetRequestID(c),
	}
}

func wantAI(c *gin.Context) bool {
	v := strings.ToLower(strings.TrimSpace(c.Query("use_ai")))
	return v == "" || v == "1" || v == "true" || v == "yes"
}

// FindMatches ranks exchange candidates for one owned ticket. Traditional
// results are cached briefly; AI-enhanced results are always computed live.
func FindMatches(c *gin.Context) {
	ticketID, ok := pathID(c, "ticket_id")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)

	if _, err := ticketService(c).Get(c.Request.Context(), userID, ticketID); err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := matchService(c)
	useAI := wantAI(c) && svc.Cfg.AIEnabled
	store := cache.SuggestionStore{Client: config.RDB}

	if !useAI {
		if cached, err := store.Get(c.Request.Context(), ticketID); err == nil && cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	resp, err := svc.FindMatches(c.Request.Context(), ticketID, useAI)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	if !resp.AIEnhanced {
		if err := store.Put(c.Request.Context(), ticketID, resp); err != nil {
			utils.LogError(middleware.GetRequestID(c), "match", "cache_put", err)
		}
	}
	c.JSON(http.StatusOK, resp)
}

type batchMatchRequest struct {
	TicketIDs []string `json:"ticket_ids"`
}

// BatchFindMatches resolves matches for several tickets at once.
func BatchFindMatches(c *gin.Context) {
	var req batchMatchRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if len(req.TicketIDs) == 0 {
		respondError(c, http.StatusBadRequest, "invalid_payload", "ticket_ids is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), currentEnv().BatchTimeout)
	defer cancel()

	svc := matchService(c)
	resp := svc.BatchFindMatches(ctx, req.TicketIDs, wantAI(c) && svc.Cfg.AIEnabled)
	c.JSON(http.StatusOK, resp)
}

// SendExchangeRequest creates a pending exchange request.
func SendExchangeRequest(c *gin.Context) {
	var req models.ExchangeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	created, err := exchangeService(c).SendRequest(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": created})
}

// ListExchangeRequests returns requests the user is a party to.
func ListExchangeRequests(c *gin.Context) {
	reqs, err := exchangeService(c).ListForUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs, "total": len(reqs)})
}

// AnswerExchangeRequest accepts or declines a pending request.
func AnswerExchangeRequest(c *gin.Context) {
	id, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	var body struct {
		Action string `json:"action"`
	}
	if !BindJSONOrError(c, &body) {
		return
	}

	svc := exchangeService(c)
	userID := middleware.CurrentUserID(c)

	var (
		req models.ExchangeRequest
		err error
	)
	switch strings.ToLower(strings.TrimSpace(body.Action)) {
	case "accept":
		req, err = svc.Accept(c.Request.Context(), userID, id)
	case "decline":
		req, err = svc.Decline(c.Request.Context(), userID, id)
	case "cancel":
		req, err = svc.Cancel(c.Request.Context(), userID, id)
	default:
		respondError(c, http.StatusBadRequest, "invalid_action", "action must be accept, decline or cancel", nil)
		return
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// ConfirmExchange records one side's completion confirmation.
func ConfirmExchange(c *gin.Context) {
	id, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	req, err := exchangeService(c).Confirm(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// RateExchange rates the counterpart of a completed exchange.
func RateExchange(c *gin.Context) {
	id, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	var body struct {
		Rating float64 `json:"rating"`
	}
	if !BindJSONOrError(c, &body) {
		return
	}
	if err := exchangeService(c).RateCounterpart(c.Request.Context(), middleware.CurrentUserID(c), id, body.Rating); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rating recorded"})
}

package services

import (
	"context"
	"fmt"

	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"
)

// ExchangeService runs the request lifecycle that follows a match: send,
// accept or decline, then a dual-confirmed completion.
type ExchangeService struct {
	Repo      repositories.ExchangeRepository
	Tickets   repositories.TicketRepository
	Users     repositories.UserRepository
	RequestID string
}

// SendRequest creates a pending exchange request from the requester's
// ticket towards a matched user's ticket.
func (s ExchangeService) SendRequest(ctx context.Context, requesterID int64, req models.ExchangeRequest) (models.ExchangeRequest, error) {
	req.RequesterID = requesterID
	req.Status = models.ExchangePending
	req.RequesterConfirmed = false
	req.TargetConfirmed = false

	own, err := s.Tickets.GetByID(ctx, req.RequesterTicketID)
	if err != nil {
		return models.ExchangeRequest{}, err
	}
	if own.UserID != requesterID {
		return models.ExchangeRequest{}, domain.ValidationError{Field: "requester_ticket_id", Msg: "ticket does not belong to you"}
	}

	target, err := s.Tickets.GetByID(ctx, req.TargetTicketID)
	if err != nil {
		return models.ExchangeRequest{}, err
	}
	if target.UserID == requesterID {
		return models.ExchangeRequest{}, domain.ValidationError{Field: "target_ticket_id", Msg: "cannot request an exchange with yourself"}
	}
	if target.TrainNumber != own.TrainNumber || target.TravelDate != own.TravelDate {
		return models.ExchangeRequest{}, domain.ValidationError{Field: "target_ticket_id", Msg: "tickets are not on the same train and date"}
	}
	if own.Status != models.TicketActive || target.Status != models.TicketActive {
		return models.ExchangeRequest{}, domain.ConflictError{Resource: "exchange", Msg: "both tickets must be active"}
	}

	req.TargetUserID = target.UserID
	req.TrainNumber = own.TrainNumber
	req.TravelDate = own.TravelDate

	if len(req.Proposal.Give) == 0 || len(req.Proposal.Receive) == 0 {
		return models.ExchangeRequest{}, domain.ValidationError{Field: "proposal", Msg: "both give and receive seats are required"}
	}

	if err := s.Repo.Insert(ctx, &req); err != nil {
		return models.ExchangeRequest{}, err
	}
	utils.LogEvent(s.RequestID, "exchange", "send_request",
		fmt.Sprintf("id=%d requester=%d target=%d", req.ID, requesterID, req.TargetUserID))
	return req, nil
}

// ListForUser returns every request the user is a party to.
func (s ExchangeService) ListForUser(ctx context.Context, userID int64) ([]models.ExchangeRequest, error) {
	return s.Repo.ListForUser(ctx, userID)
}

// Accept moves a pending request to accepted. Only the target may accept.
func (s ExchangeService) Accept(ctx context.Context, userID, requestID int64) (models.ExchangeRequest, error) {
	return s.answer(ctx, userID, requestID, models.ExchangeAccepted)
}

// Decline moves a pending request to declined. Only the target may decline.
func (s ExchangeService) Decline(ctx context.Context, userID, requestID int64) (models.ExchangeRequest, error) {
	return s.answer(ctx, userID, requestID, models.ExchangeDeclined)
}

func (s ExchangeService) answer(ctx context.Context, userID, requestID int64, status models.ExchangeStatus) (models.ExchangeRequest, error) {
	req, err := s.Repo.GetByID(ctx, requestID)
	if err != nil {
		return models.ExchangeRequest{}, err
	}
	if req.TargetUserID != userID {
		return models.ExchangeRequest{}, domain.ValidationError{Field: "request", Msg: "only the requested user can respond"}
	}
	if req.Status != models.ExchangePending {
		return models.ExchangeRequest{}, domain.ConflictError{Resource: "exchange", Msg: fmt.Sprintf("request is already %s", req.Status)}
	}
	if err := s.Repo.UpdateStatus(ctx, requestID, status); err != nil {
		return models.ExchangeRequest{}, err
	}
	req.Status = status
	utils.LogEvent(s.RequestID, "exchange", "answer",
		fmt.Sprintf("id=%d status=%s", requestID, status))
	return req, nil
}

// Cancel withdraws a pending request. Only the requester may cancel.
func (s ExchangeService) Cancel(ctx context.Context, userID, requestID int64) (models.ExchangeRequest, error) {
	req, err := s.Repo.GetByID(ctx, requestID)
	if err != nil {
		return models.ExchangeRequest{}, err
	}
	if req.RequesterID != userID {
		return models.ExchangeRequest{}, domain.ValidationError{Field: "request", Msg: "only the requester can cancel"}
	}
	if req.Status != models.ExchangePending {
		return models.ExchangeRequest{}, domain.ConflictError{Resource: "exchange", Msg: fmt.Sprintf("request is already %s", req.Status)}
	}
	if err := s.Repo.UpdateStatus(ctx, requestID, models.ExchangeCancelled); err != nil {
		return models.ExchangeRequest{}, err
	}
	req.Status = models.ExchangeCancelled
	return req, nil
}

// Confirm records one party's completion confirmation on an accepted
// request. When both sides have confirmed the exchange completes and both
// users' exchange counters move.
func (s ExchangeService) Confirm(ctx context.Context, userID, requestID int64) (models.ExchangeRequest, error) {
	req, err := s.Repo.GetByID(ctx, requestID)
	if err != nil {
		return models.ExchangeRequest{}, err
	}
	if req.Status != models.ExchangeAccepted {
		return models.ExchangeRequest{}, domain.ConflictError{Resource: "exchange", Msg: "only accepted requests can be confirmed"}
	}

	switch userID {
	case req.RequesterID:
		req.RequesterConfirmed = true
	case req.TargetUserID:
		req.TargetConfirmed = true
	default:
		return models.ExchangeRequest{}, domain.ValidationError{Field: "request", Msg: "you are not a party to this request"}
	}
	if err := s.Repo.SetConfirmed(ctx, requestID, userID == req.RequesterID); err != nil {
		return models.ExchangeRequest{}, err
	}

	if req.CanComplete() {
		if err := s.Repo.UpdateStatus(ctx, requestID, models.ExchangeCompleted); err != nil {
			return models.ExchangeRequest{}, err
		}
		req.Status = models.ExchangeCompleted
		if err := s.Users.IncrementExchanges(ctx, req.RequesterID); err != nil {
			utils.LogError(s.RequestID, "exchange", "increment_requester", err)
		}
		if err := s.Users.IncrementExchanges(ctx, req.TargetUserID); err != nil {
			utils.LogError(s.RequestID, "exchange", "increment_target", err)
		}
		utils.LogEvent(s.RequestID, "exchange", "completed", fmt.Sprintf("id=%d", requestID))
	}
	return req, nil
}

// RateCounterpart lets one party of a completed exchange rate the other.
func (s ExchangeService) RateCounterpart(ctx context.Context, userID, requestID int64, rating float64) error {
	if rating < 0 || rating > 5 {
		return domain.ValidationError{Field: "rating", Msg: "must be between 0 and 5"}
	}
	req, err := s.Repo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != models.ExchangeCompleted {
		return domain.ConflictError{Resource: "exchange", Msg: "only completed exchanges can be rated"}
	}

	var counterpart int64
	switch userID {
	case req.RequesterID:
		counterpart = req.TargetUserID
	case req.TargetUserID:
		counterpart = req.RequesterID
	default:
		return domain.ValidationError{Field: "request", Msg: "you are not a party to this request"}
	}
	return s.Users.ApplyRating(ctx, counterpart, rating)
}

package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

type ExchangeRepository struct {
	DB *sql.DB
}

func (r ExchangeRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

const exchangeColumns = `id, requester_id, target_id, requester_ticket_id, target_ticket_id,
	train_number, travel_date, proposal, message, status,
	requester_confirmed, target_confirmed, created_at, updated_at`

func scanExchange(row interface{ Scan(...any) error }) (models.ExchangeRequest, error) {
	var (
		req models.ExchangeRequest
		raw []byte
	)
	err := row.Scan(&req.ID, &req.RequesterID, &req.TargetUserID,
		&req.RequesterTicketID, &req.TargetTicketID,
		&req.TrainNumber, &req.TravelDate, &raw, &req.Message, &req.Status,
		&req.RequesterConfirmed, &req.TargetConfirmed, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return models.ExchangeRequest{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &req.Proposal); err != nil {
			return models.ExchangeRequest{}, domain.InternalError{Msg: "decode exchange proposal", Err: err}
		}
	}
	return req, nil
}

func (r ExchangeRepository) Insert(ctx context.Context, req *models.ExchangeRequest) error {
	raw, err := json.Marshal(req.Proposal)
	if err != nil {
		return domain.InternalError{Msg: "encode exchange proposal", Err: err}
	}

	res, err := r.db().ExecContext(ctx, `
		INSERT INTO exchange_requests (requester_id, target_id, requester_ticket_id, target_ticket_id,
			train_number, travel_date, proposal, message, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, req.RequesterID, req.TargetUserID, req.RequesterTicketID, req.TargetTicketID,
		req.TrainNumber, req.TravelDate, raw, req.Message, req.Status)
	if err != nil {
		return domain.InternalError{Msg: "insert exchange request", Err: err}
	}
	if req.ID, err = res.LastInsertId(); err != nil {
		return domain.InternalError{Msg: "exchange insert id", Err: err}
	}
	return nil
}

func (r ExchangeRepository) GetByID(ctx context.Context, id int64) (models.ExchangeRequest, error) {
	row := r.db().QueryRowContext(ctx,
		`SELECT `+exchangeColumns+` FROM exchange_requests WHERE id = ?`, id)
	req, err := scanExchange(row)
	if err == sql.ErrNoRows {
		return models.ExchangeRequest{}, domain.NotFoundError{Resource: "exchange request"}
	}
	if err != nil {
		return models.ExchangeRequest{}, domain.InternalError{Msg: "query exchange request", Err: err}
	}
	return req, nil
}

// ListForUser returns requests where the user is either side, newest first.
func (r ExchangeRepository) ListForUser(ctx context.Context, userID int64) ([]models.ExchangeRequest, error) {
	rows, err := r.db().QueryContext(ctx,
		`SELECT `+exchangeColumns+` FROM exchange_requests
		 WHERE requester_id = ? OR target_id = ?
		 ORDER BY created_at DESC, id DESC`, userID, userID)
	if err != nil {
		return nil, domain.InternalError{Msg: "query exchange requests", Err: err}
	}
	defer rows.Close()

	out := []models.ExchangeRequest{}
	for rows.Next() {
		req, err := scanExchange(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "scan exchange request", Err: err}
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "iterate exchange requests", Err: err}
	}
	return out, nil
}

func (r ExchangeRepository) UpdateStatus(ctx context.Context, id int64, status models.ExchangeStatus) error {
	res, err := r.db().ExecContext(ctx,
		`UPDATE exchange_requests SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return domain.InternalError{Msg: "update exchange status", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "exchange request"}
	}
	return nil
}

// SetConfirmed records one side's completion confirmation.
func (r ExchangeRepository) SetConfirmed(ctx context.Context, id int64, requesterSide bool) error {
	col := "target_confirmed"
	if requesterSide {
		col = "requester_confirmed"
	}
	// No RowsAffected check. MySQL reports zero rows for a no-change
	// update, which would turn a repeated confirm into a false not-found.
	_, err := r.db().ExecContext(ctx,
		`UPDATE exchange_requests SET `+col+` = 1 WHERE id = ?`, id)
	if err != nil {
		return domain.InternalError{Msg: "confirm exchange", Err: err}
	}
	return nil
}

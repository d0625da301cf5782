package repositories

import (
	"context"
	"database/sql"

	"backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

// CandidateTicket is the projection the matching pipeline scans. It carries
// the ticket owner alongside seated passengers so scoring never needs a
// second round trip.
type CandidateTicket struct {
	TicketID        int64
	UserID          int64
	ClassType       models.ClassType
	BoardingCode    string
	DestinationCode string
	OwnerName       string
	OwnerRating     float64
	Passengers      []models.Passenger
}

type TicketRepository struct {
	DB *sql.DB
}

func (r TicketRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

// FindActiveByTrainAndDate returns every active ticket on the same train and
// date except the excluded user's own, grouped per ticket, with owner info
// joined in. Rows are ordered by ticket then passenger id so grouping is a
// single pass.
func (r TicketRepository) FindActiveByTrainAndDate(ctx context.Context, trainNumber, travelDate string, excludeUserID int64) ([]CandidateTicket, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT t.id, t.user_id, t.class_type, t.boarding_code, t.destination_code,
		       COALESCE(u.name, ''), COALESCE(u.rating, 0),
		       p.id, p.name, p.age, p.gender,
		       p.coach, p.seat_number, p.berth_type, p.booking_status, p.current_status
		FROM tickets t
		JOIN users u ON u.id = t.user_id
		JOIN passengers p ON p.ticket_id = t.id
		WHERE t.train_number = ? AND t.travel_date = ? AND t.status = 'active'
		  AND t.user_id != ?
		ORDER BY t.id, p.id
	`, trainNumber, travelDate, excludeUserID)
	if err != nil {
		return nil, domain.InternalError{Msg: "query candidate tickets", Err: err}
	}
	defer rows.Close()

	out := []CandidateTicket{}
	for rows.Next() {
		var (
			cand models.Passenger
			tID  int64
			uID  int64
			cls  string
			from string
			to   string
			name string
			rtg  float64
		)
		if err := rows.Scan(&tID, &uID, &cls, &from, &to, &name, &rtg,
			&cand.ID, &cand.Name, &cand.Age, &cand.Gender,
			&cand.Coach, &cand.SeatNumber, &cand.BerthType, &cand.BookingStatus, &cand.CurrentStatus); err != nil {
			return nil, domain.InternalError{Msg: "scan candidate row", Err: err}
		}
		cand.TicketID = tID

		if n := len(out); n > 0 && out[n-1].TicketID == tID {
			out[n-1].Passengers = append(out[n-1].Passengers, cand)
			continue
		}
		out = append(out, CandidateTicket{
			TicketID:        tID,
			UserID:          uID,
			ClassType:       models.ClassType(cls),
			BoardingCode:    from,
			DestinationCode: to,
			OwnerName:       name,
			OwnerRating:     rtg,
			Passengers:      []models.Passenger{cand},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "iterate candidate rows", Err: err}
	}
	return out, nil
}

// GetByID loads a full ticket with its passengers.
func (r TicketRepository) GetByID(ctx context.Context, id int64) (models.Ticket, error) {
	var t models.Ticket
	err := r.db().QueryRowContext(ctx, `
		SELECT id, user_id, pnr, train_number, train_name, travel_date,
		       boarding_code, boarding_name, destination_code, destination_name,
		       class_type, quota, status, created_at, updated_at
		FROM tickets WHERE id = ?
	`, id).Scan(&t.ID, &t.UserID, &t.PNR, &t.TrainNumber, &t.TrainName, &t.TravelDate,
		&t.BoardingStation.Code, &t.BoardingStation.Name,
		&t.DestinationStation.Code, &t.DestinationStation.Name,
		&t.ClassType, &t.Quota, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket"}
	}
	if err != nil {
		return models.Ticket{}, domain.InternalError{Msg: "query ticket", Err: err}
	}

	t.Passengers, err = r.passengersFor(ctx, t.ID)
	if err != nil {
		return models.Ticket{}, err
	}
	return t, nil
}

func (r TicketRepository) passengersFor(ctx context.Context, ticketID int64) ([]models.Passenger, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT id, ticket_id, name, age, gender, coach, seat_number, berth_type, booking_status, current_status
		FROM passengers WHERE ticket_id = ? ORDER BY id
	`, ticketID)
	if err != nil {
		return nil, domain.InternalError{Msg: "query passengers", Err: err}
	}
	defer rows.Close()

	out := []models.Passenger{}
	for rows.Next() {
		var p models.Passenger
		if err := rows.Scan(&p.ID, &p.TicketID, &p.Name, &p.Age, &p.Gender,
			&p.Coach, &p.SeatNumber, &p.BerthType, &p.BookingStatus, &p.CurrentStatus); err != nil {
			return nil, domain.InternalError{Msg: "scan passenger row", Err: err}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Insert stores a ticket and its passengers in one transaction.
func (r TicketRepository) Insert(ctx context.Context, t *models.Ticket) error {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return domain.InternalError{Msg: "begin ticket tx", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO tickets (user_id, pnr, train_number, train_name, travel_date,
			boarding_code, boarding_name, destination_code, destination_name,
			class_type, quota, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.UserID, t.PNR, t.TrainNumber, t.TrainName, t.TravelDate,
		t.BoardingStation.Code, t.BoardingStation.Name,
		t.DestinationStation.Code, t.DestinationStation.Name,
		t.ClassType, t.Quota, t.Status)
	if err != nil {
		return domain.InternalError{Msg: "insert ticket", Err: err}
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return domain.InternalError{Msg: "ticket insert id", Err: err}
	}

	for i := range t.Passengers {
		p := &t.Passengers[i]
		p.TicketID = t.ID
		res, err := tx.ExecContext(ctx, `
			INSERT INTO passengers (ticket_id, name, age, gender, coach, seat_number, berth_type, booking_status, current_status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.TicketID, p.Name, p.Age, p.Gender, p.Coach, p.SeatNumber, p.BerthType, p.BookingStatus, p.CurrentStatus)
		if err != nil {
			return domain.InternalError{Msg: "insert passenger", Err: err}
		}
		if p.ID, err = res.LastInsertId(); err != nil {
			return domain.InternalError{Msg: "passenger insert id", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.InternalError{Msg: "commit ticket tx", Err: err}
	}
	return nil
}

// ListByUser returns the user's tickets, newest first.
func (r TicketRepository) ListByUser(ctx context.Context, userID int64) ([]models.Ticket, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT id FROM tickets WHERE user_id = ? ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, domain.InternalError{Msg: "query user tickets", Err: err}
	}
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, domain.InternalError{Msg: "scan ticket id", Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, domain.InternalError{Msg: "iterate ticket ids", Err: err}
	}
	rows.Close()

	out := make([]models.Ticket, 0, len(ids))
	for _, id := range ids {
		t, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// UpdateStatus moves a ticket between active/completed/cancelled.
func (r TicketRepository) UpdateStatus(ctx context.Context, id int64, status models.TicketStatus) error {
	res, err := r.db().ExecContext(ctx, `UPDATE tickets SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return domain.InternalError{Msg: "update ticket status", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "ticket"}
	}
	return nil
}

// DeleteOwned removes a ticket only when it belongs to the given user.
// Passenger rows cascade.
func (r TicketRepository) DeleteOwned(ctx context.Context, id, userID int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM tickets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return domain.InternalError{Msg: "delete ticket", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "ticket"}
	}
	return nil
}

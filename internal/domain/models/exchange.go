package models

import "time"

// ExchangeStatus is the lifecycle state of an exchange request.
type ExchangeStatus string

const (
	ExchangePending   ExchangeStatus = "pending"
	ExchangeAccepted  ExchangeStatus = "accepted"
	ExchangeDeclined  ExchangeStatus = "declined"
	ExchangeCompleted ExchangeStatus = "completed"
	ExchangeCancelled ExchangeStatus = "cancelled"
)

// SeatRef identifies one seat inside an exchange proposal.
type SeatRef struct {
	PassengerName string    `json:"passenger_name"`
	Coach         string    `json:"coach"`
	SeatNumber    int       `json:"seat_number"`
	BerthType     BerthType `json:"berth_type,omitempty"`
}

// ExchangeProposal lists the seats each side gives up and receives.
type ExchangeProposal struct {
	Give    []SeatRef `json:"give"`
	Receive []SeatRef `json:"receive"`
}

// ExchangeRequest is a proposed seat swap between two users holding
// tickets on the same train and date. Completion needs confirmation from
// both sides.
type ExchangeRequest struct {
	ID                 int64            `json:"id"`
	RequesterID        int64            `json:"requester_id"`
	RequesterTicketID  int64            `json:"requester_ticket_id"`
	TargetUserID       int64            `json:"target_user_id"`
	TargetTicketID     int64            `json:"target_ticket_id"`
	TrainNumber        string           `json:"train_number"`
	TravelDate         string           `json:"travel_date"`
	Proposal           ExchangeProposal `json:"proposal"`
	Message            string           `json:"message,omitempty"`
	Status             ExchangeStatus   `json:"status"`
	RequesterConfirmed bool             `json:"requester_confirmed"`
	TargetConfirmed    bool             `json:"target_confirmed"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// CanComplete reports whether both parties confirmed the swap.
func (r ExchangeRequest) CanComplete() bool {
	return r.RequesterConfirmed && r.TargetConfirmed
}

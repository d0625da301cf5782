package models

import (
	"sort"
	"strings"
	"time"
)

// BerthType identifies a berth position within a bay.
type BerthType string

const (
	BerthLower     BerthType = "LB"
	BerthMiddle    BerthType = "MB"
	BerthUpper     BerthType = "UB"
	BerthSideLower BerthType = "SL"
	BerthSideUpper BerthType = "SU"
)

// ClassType is the reserved coach class printed on the ticket.
type ClassType string

const (
	ClassSleeper       ClassType = "SL"
	ClassThreeTierAC   ClassType = "3A"
	ClassTwoTierAC     ClassType = "2A"
	ClassFirstAC       ClassType = "1A"
	ClassChairCar      ClassType = "CC"
	ClassExecChair     ClassType = "EC"
	ClassSecondSitting ClassType = "2S"
)

// BookingStatus mirrors the reservation chart status codes.
type BookingStatus string

const (
	StatusConfirmed      BookingStatus = "CNF"
	StatusRAC            BookingStatus = "RAC"
	StatusWaitlisted     BookingStatus = "WL"
	StatusRemoteWaitlist BookingStatus = "RLWL"
	StatusPooledWaitlist BookingStatus = "PQWL"
)

// HoldsSeat reports whether the status guarantees a physical seat. Only
// confirmed and RAC passengers can take part in an exchange.
func (s BookingStatus) HoldsSeat() bool {
	return s == StatusConfirmed || s == StatusRAC
}

// TicketStatus is the ticket lifecycle state.
type TicketStatus string

const (
	TicketActive    TicketStatus = "active"
	TicketCompleted TicketStatus = "completed"
	TicketCancelled TicketStatus = "cancelled"
)

type Station struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Passenger is one traveller on a ticket. Coach and SeatNumber may be
// empty/zero for unassigned or second-sitting bookings.
type Passenger struct {
	ID            int64         `json:"id"`
	TicketID      int64         `json:"ticket_id,omitempty"`
	Name          string        `json:"name"`
	Age           int           `json:"age"`
	Gender        string        `json:"gender"`
	Coach         string        `json:"coach,omitempty"`
	SeatNumber    int           `json:"seat_number,omitempty"`
	BerthType     BerthType     `json:"berth_type,omitempty"`
	BookingStatus BookingStatus `json:"booking_status"`
	CurrentStatus BookingStatus `json:"current_status"`
}

// EffectiveStatus is the chart status when known, else the booking
// status. Candidacy decisions follow the chart: a booking can be
// promoted or dropped between reservation and departure.
func (p Passenger) EffectiveStatus() BookingStatus {
	if p.CurrentStatus != "" {
		return p.CurrentStatus
	}
	return p.BookingStatus
}

// HasSeat reports whether the passenger has a concrete coach/seat
// assignment the geometry helpers can work with.
func (p Passenger) HasSeat() bool {
	return strings.TrimSpace(p.Coach) != "" && p.SeatNumber > 0
}

// Ticket is one PNR booking owned by a user.
type Ticket struct {
	ID                 int64        `json:"id"`
	UserID             int64        `json:"user_id"`
	PNR                string       `json:"pnr"`
	TrainNumber        string       `json:"train_number"`
	TrainName          string       `json:"train_name"`
	TravelDate         string       `json:"travel_date"`
	BoardingStation    Station      `json:"boarding_station"`
	DestinationStation Station      `json:"destination_station"`
	ClassType          ClassType    `json:"class_type"`
	Quota              string       `json:"quota"`
	Status             TicketStatus `json:"status"`
	Passengers         []Passenger  `json:"passengers"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// Coaches returns the distinct coaches of the ticket's passengers, sorted.
func (t Ticket) Coaches() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range t.Passengers {
		coach := strings.ToUpper(strings.TrimSpace(p.Coach))
		if coach == "" || seen[coach] {
			continue
		}
		seen[coach] = true
		out = append(out, coach)
	}
	sort.Strings(out)
	return out
}

// IsScattered reports whether the party sits in more than one coach.
func (t Ticket) IsScattered() bool {
	return len(t.Coaches()) > 1
}

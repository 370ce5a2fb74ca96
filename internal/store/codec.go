package store

import (
	"encoding/json"
	"time"

	"atelier/internal/dateutil"
	"atelier/internal/entities"
)

// The serialized form mirrors the entities but carries every date as an
// ISO-8601 string. This file is the only place that touches that form.

const isoLayout = time.RFC3339Nano

type eventRecord struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	ClientID string  `json:"client_id"`
	Budget   float64 `json:"budget"`

	Date    string  `json:"date"`
	EndDate *string `json:"end_date,omitempty"`
	EndTime string  `json:"end_time,omitempty"`

	RequiredFlorists int                          `json:"required_florists"`
	Florists         []entities.FloristAssignment `json:"florists,omitempty"`

	Status   entities.Status `json:"status"`
	Archived bool            `json:"archived"`
	Invoiced bool            `json:"invoiced"`

	InvoiceDate   *string `json:"invoice_date,omitempty"`
	PaidDate      *string `json:"paid_date,omitempty"`
	CompletedDate *string `json:"completed_date,omitempty"`
	CancelledAt   *string `json:"cancelled_at,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`

	Expenses []entities.Expense `json:"expenses,omitempty"`
	Notes    string             `json:"notes,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type clientRecord struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Comments  string `json:"comments,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type unavailabilityRecord struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
	Active bool   `json:"active"`
}

type floristRecord struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	Phone          string                 `json:"phone"`
	Unavailability []unavailabilityRecord `json:"unavailability,omitempty"`
	CreatedAt      string                 `json:"created_at"`
	UpdatedAt      string                 `json:"updated_at"`
}

func encodeEvents(events []entities.Event) ([]byte, error) {
	records := make([]eventRecord, 0, len(events))
	for _, e := range events {
		records = append(records, eventRecord{
			ID:               e.ID,
			Title:            e.Title,
			Location:         e.Location,
			ClientID:         e.ClientID,
			Budget:           e.Budget,
			Date:             e.Date.Format(isoLayout),
			EndDate:          encodeOptional(e.EndDate),
			EndTime:          e.EndTime,
			RequiredFlorists: e.RequiredFlorists,
			Florists:         e.Florists,
			Status:           e.Status,
			Archived:         e.Archived,
			Invoiced:         e.Invoiced,
			InvoiceDate:      encodeOptional(e.InvoiceDate),
			PaidDate:         encodeOptional(e.PaidDate),
			CompletedDate:    encodeOptional(e.CompletedDate),
			CancelledAt:      encodeOptional(e.CancelledAt),
			PaymentMethod:    e.PaymentMethod,
			Expenses:         e.Expenses,
			Notes:            e.Notes,
			CreatedAt:        e.CreatedAt.Format(isoLayout),
			UpdatedAt:        e.UpdatedAt.Format(isoLayout),
		})
	}
	return json.Marshal(records)
}

func decodeEvents(data []byte) ([]entities.Event, error) {
	var records []eventRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	events := make([]entities.Event, 0, len(records))
	for _, r := range records {
		events = append(events, entities.Event{
			ID:               r.ID,
			Title:            r.Title,
			Location:         r.Location,
			ClientID:         r.ClientID,
			Budget:           r.Budget,
			Date:             dateutil.Coerce(r.Date),
			EndDate:          decodeOptional(r.EndDate),
			EndTime:          r.EndTime,
			RequiredFlorists: r.RequiredFlorists,
			Florists:         r.Florists,
			Status:           r.Status,
			Archived:         r.Archived,
			Invoiced:         r.Invoiced,
			InvoiceDate:      decodeOptional(r.InvoiceDate),
			PaidDate:         decodeOptional(r.PaidDate),
			CompletedDate:    decodeOptional(r.CompletedDate),
			CancelledAt:      decodeOptional(r.CancelledAt),
			PaymentMethod:    r.PaymentMethod,
			Expenses:         r.Expenses,
			Notes:            r.Notes,
			CreatedAt:        dateutil.Coerce(r.CreatedAt),
			UpdatedAt:        dateutil.Coerce(r.UpdatedAt),
		})
	}
	return events, nil
}

func encodeClients(clients []entities.Client) ([]byte, error) {
	records := make([]clientRecord, 0, len(clients))
	for _, c := range clients {
		records = append(records, clientRecord{
			ID:        c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Phone:     c.Phone,
			Address:   c.Address,
			Comments:  c.Comments,
			CreatedAt: c.CreatedAt.Format(isoLayout),
			UpdatedAt: c.UpdatedAt.Format(isoLayout),
		})
	}
	return json.Marshal(records)
}

func decodeClients(data []byte) ([]entities.Client, error) {
	var records []clientRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	clients := make([]entities.Client, 0, len(records))
	for _, r := range records {
		clients = append(clients, entities.Client{
			ID:        r.ID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Phone:     r.Phone,
			Address:   r.Address,
			Comments:  r.Comments,
			CreatedAt: dateutil.Coerce(r.CreatedAt),
			UpdatedAt: dateutil.Coerce(r.UpdatedAt),
		})
	}
	return clients, nil
}

func encodeFlorists(florists []entities.Florist) ([]byte, error) {
	records := make([]floristRecord, 0, len(florists))
	for _, f := range florists {
		periods := make([]unavailabilityRecord, 0, len(f.Unavailability))
		for _, p := range f.Unavailability {
			periods = append(periods, unavailabilityRecord{
				From:   p.From.Format(isoLayout),
				To:     p.To.Format(isoLayout),
				Reason: p.Reason,
				Active: p.Active,
			})
		}
		records = append(records, floristRecord{
			ID:             f.ID,
			Name:           f.Name,
			Email:          f.Email,
			Phone:          f.Phone,
			Unavailability: periods,
			CreatedAt:      f.CreatedAt.Format(isoLayout),
			UpdatedAt:      f.UpdatedAt.Format(isoLayout),
		})
	}
	return json.Marshal(records)
}

func decodeFlorists(data []byte) ([]entities.Florist, error) {
	var records []floristRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	florists := make([]entities.Florist, 0, len(records))
	for _, r := range records {
		periods := make([]entities.UnavailabilityPeriod, 0, len(r.Unavailability))
		for _, p := range r.Unavailability {
			periods = append(periods, entities.UnavailabilityPeriod{
				From:   dateutil.Coerce(p.From),
				To:     dateutil.Coerce(p.To),
				Reason: p.Reason,
				Active: p.Active,
			})
		}
		florists = append(florists, entities.Florist{
			ID:             r.ID,
			Name:           r.Name,
			Email:          r.Email,
			Phone:          r.Phone,
			Unavailability: periods,
			CreatedAt:      dateutil.Coerce(r.CreatedAt),
			UpdatedAt:      dateutil.Coerce(r.UpdatedAt),
		})
	}
	return florists, nil
}

func encodeOptional(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(isoLayout)
	return &s
}

func decodeOptional(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	if !dateutil.IsValid(*s) {
		return nil
	}
	t := dateutil.Coerce(*s)
	return &t
}

package entities

import (
	"time"
)

// Status is the event lifecycle status. Stored statuses advance along the
// lifecycle; cancellation is terminal and may happen from any pre-completion
// state.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusPlanning   Status = "planning"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusInvoiced   Status = "invoiced"
	StatusPaid       Status = "paid"
	StatusCancelled  Status = "cancelled"
)

// Statuses returns every valid lifecycle status, in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusDraft,
		StatusPlanning,
		StatusConfirmed,
		StatusInProgress,
		StatusCompleted,
		StatusInvoiced,
		StatusPaid,
		StatusCancelled,
	}
}

func (s Status) Valid() bool {
	for _, known := range Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

type ExpenseCategory string

const (
	ExpenseFlowers     ExpenseCategory = "flowers"
	ExpenseMaterials   ExpenseCategory = "materials"
	ExpenseTransport   ExpenseCategory = "transport"
	ExpenseFloristFees ExpenseCategory = "florist-fees"
	ExpenseOther       ExpenseCategory = "other"
)

type Expense struct {
	Category ExpenseCategory `json:"category"`
	Amount   float64         `json:"amount"`
}

// FloristAssignment links an event to a florist. Only confirmed assignments
// count towards the staffing ratio.
type FloristAssignment struct {
	FloristID string `json:"florist_id"`
	Confirmed bool   `json:"confirmed"`
}

// Event is a scheduled floral engagement.
type Event struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	ClientID string  `json:"client_id"`
	Budget   float64 `json:"budget"`

	Date    time.Time  `json:"date"`
	EndDate *time.Time `json:"end_date,omitempty"`
	// EndTime is an explicit end time of day ("HH:MM") on the scheduled day.
	EndTime string `json:"end_time,omitempty"`

	RequiredFlorists int                 `json:"required_florists"`
	Florists         []FloristAssignment `json:"florists,omitempty"`

	Status   Status `json:"status"`
	Archived bool   `json:"archived"`
	Invoiced bool   `json:"invoiced"`

	InvoiceDate   *time.Time `json:"invoice_date,omitempty"`
	PaidDate      *time.Time `json:"paid_date,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`

	Expenses []Expense `json:"expenses,omitempty"`

	// Notes accumulates timestamped audit lines (payment reminders etc.).
	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConfirmedFlorists returns how many assigned florists confirmed.
func (e Event) ConfirmedFlorists() int {
	n := 0
	for _, a := range e.Florists {
		if a.Confirmed {
			n++
		}
	}
	return n
}

// FullyStaffed reports whether the confirmed staff count covers the
// required count.
func (e Event) FullyStaffed() bool {
	return e.ConfirmedFlorists() >= e.RequiredFlorists
}

// EffectiveEnd is the instant the event is assumed to be over: the explicit
// end date if set, else the explicit end time of day on the scheduled day,
// else the start of the next calendar day (the grace-day rule).
func (e Event) EffectiveEnd() time.Time {
	if e.EndDate != nil && !e.EndDate.IsZero() {
		return *e.EndDate
	}
	if e.EndTime != "" {
		if end, ok := combineEndTime(e.Date, e.EndTime); ok {
			return end
		}
	}
	day := time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, e.Date.Location())
	return day.AddDate(0, 0, 1)
}

// HasExplicitEnd reports whether an end instant was set by the user, as
// opposed to the grace-day fallback.
func (e Event) HasExplicitEnd() bool {
	if e.EndDate != nil && !e.EndDate.IsZero() {
		return true
	}
	if e.EndTime == "" {
		return false
	}
	_, ok := combineEndTime(e.Date, e.EndTime)
	return ok
}

func combineEndTime(day time.Time, hhmm string) (time.Time, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), true
}

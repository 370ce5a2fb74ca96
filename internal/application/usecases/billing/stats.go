package billing

import (
	"context"
	"time"

	"atelier/internal/entities"
)

type Partition struct {
	Count       int     `json:"count"`
	TotalBudget float64 `json:"total_budget"`
}

func (p *Partition) add(ev entities.Event) {
	p.Count++
	p.TotalBudget += ev.Budget
}

// Stats is the billing dashboard aggregate.
type Stats struct {
	ToInvoice Partition `json:"to_invoice"`
	Invoiced  Partition `json:"invoiced"`
	Paid      Partition `json:"paid"`
	Overdue   Partition `json:"overdue"`

	// Averages are computed over paid events carrying a complete timestamp
	// trail; zero when no such event exists.
	AvgDaysToInvoice float64 `json:"avg_days_to_invoice"`
	AvgDaysToPay     float64 `json:"avg_days_to_pay"`
}

// Stats partitions the full event list into to-invoice / invoiced / paid /
// overdue and aggregates budgets and settlement latency.
func (u *Usecase) Stats(ctx context.Context, now time.Time) (Stats, error) {
	events, err := u.events.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	var daysToInvoice, daysToPay float64
	var invoiceSamples, paySamples int

	for _, ev := range events {
		switch {
		case ev.Status == entities.StatusCompleted && !ev.Invoiced:
			stats.ToInvoice.add(ev)
		case u.isOverdue(ev, now):
			stats.Overdue.add(ev)
		case ev.Status == entities.StatusInvoiced:
			stats.Invoiced.add(ev)
		case ev.Status == entities.StatusPaid:
			stats.Paid.add(ev)

			if ev.CompletedDate != nil && ev.InvoiceDate != nil {
				daysToInvoice += ev.InvoiceDate.Sub(*ev.CompletedDate).Hours() / 24
				invoiceSamples++
			}
			if ev.InvoiceDate != nil && ev.PaidDate != nil {
				daysToPay += ev.PaidDate.Sub(*ev.InvoiceDate).Hours() / 24
				paySamples++
			}
		}
	}

	if invoiceSamples > 0 {
		stats.AvgDaysToInvoice = daysToInvoice / float64(invoiceSamples)
	}
	if paySamples > 0 {
		stats.AvgDaysToPay = daysToPay / float64(paySamples)
	}

	return stats, nil
}

package dashboard

import (
	"time"

	"foodDeliveryAdmin/internal/filter"
	"foodDeliveryAdmin/models"
)

// Trend compares today's orders with yesterday's.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// Stats are the figures on the dashboard's landing view.
type Stats struct {
	TotalOrders             int   `json:"totalOrders"`
	ActiveRestaurants       int   `json:"activeRestaurants"`
	AvailableDeliveryAgents int   `json:"availableDeliveryAgents"`
	TotalUsers              int   `json:"totalUsers"`
	OrdersToday             int   `json:"ordersToday"`
	OrdersYesterday         int   `json:"ordersYesterday"`
	OrdersTrend             Trend `json:"ordersTrend"`
}

// Stats computes the landing figures over the lists narrowed by term. Orders are bucketed
// by calendar day in now's location; orders without a parseable time count only in the total.
func (w *Workspace) Stats(term string, now time.Time) Stats {
	orders := filter.Orders(w.Orders(), term, "")
	st := Stats{
		TotalOrders:       len(orders),
		ActiveRestaurants: len(filter.Restaurants(w.Restaurants(), term)),
		TotalUsers:        len(filter.Users(w.Users(), term)),
		OrdersTrend:       TrendDown,
	}
	for _, a := range filter.Agents(w.Agents(), term) {
		if a.Status == models.AgentStatusAvailable {
			st.AvailableDeliveryAgents++
		}
	}

	today := day(now)
	yesterday := today.AddDate(0, 0, -1)
	for _, o := range orders {
		t, ok := o.PlacedAt()
		if !ok {
			continue
		}
		switch d := day(t.In(now.Location())); {
		case d.Equal(today):
			st.OrdersToday++
		case d.Equal(yesterday):
			st.OrdersYesterday++
		}
	}
	if st.OrdersToday > st.OrdersYesterday {
		st.OrdersTrend = TrendUp
	}
	return st
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

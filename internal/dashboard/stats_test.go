package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"foodDeliveryAdmin/models"
)

func statsWorkspace() *Workspace {
	ws := NewWorkspace("sess-1", "admin-1", nil, Deps{Log: discard})
	ws.orders = []models.Order{
		{ID: "o1", CustomerName: "Jane Doe", RestaurantName: "Spice Hub", OrderTime: "2025-03-10T09:00:00Z"},
		{ID: "o2", CustomerName: "John Roe", RestaurantName: "Spice Hub", OrderTime: "2025-03-10T23:30:00Z"},
		{ID: "o3", CustomerName: "Jane Doe", RestaurantName: "Pizza Co", OrderTime: "2025-03-09T12:00:00Z"},
		{ID: "o4", CustomerName: "Amy", RestaurantName: "Pizza Co", OrderTime: "2025-03-08"},
		{ID: "o5", CustomerName: "Bob", RestaurantName: "Pizza Co"},
	}
	ws.restaurants = []models.Restaurant{{ID: "r1", Name: "Spice Hub"}, {ID: "r2", Name: "Pizza Co"}}
	ws.agents = []models.DeliveryAgent{
		{ID: "a1", Name: "Ravi", Status: models.AgentStatusAvailable},
		{ID: "a2", Name: "Jane Agent", Status: models.AgentStatusOnDelivery},
		{ID: "a3", Name: "Sam", Status: models.AgentStatusAvailable},
	}
	ws.users = []models.User{{ID: "u1", Name: "Jane Doe"}, {ID: "u2", Name: "John Roe"}}
	return ws
}

func TestStats_Totals(t *testing.T) {
	ws := statsWorkspace()
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	st := ws.Stats("", now)
	assert.Equal(t, 5, st.TotalOrders)
	assert.Equal(t, 2, st.ActiveRestaurants)
	assert.Equal(t, 2, st.AvailableDeliveryAgents)
	assert.Equal(t, 2, st.TotalUsers)
	assert.Equal(t, 2, st.OrdersToday)
	assert.Equal(t, 1, st.OrdersYesterday)
	assert.Equal(t, TrendUp, st.OrdersTrend)
}

func TestStats_DayBucketsFollowLocation(t *testing.T) {
	ws := statsWorkspace()
	// 23:30Z on the 10th is already the 11th at UTC+5:30.
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2025, 3, 11, 8, 0, 0, 0, ist)

	st := ws.Stats("", now)
	assert.Equal(t, 1, st.OrdersToday)
	assert.Equal(t, 1, st.OrdersYesterday)
	assert.Equal(t, TrendDown, st.OrdersTrend, "equal counts are not a rise")
}

func TestStats_NarrowedBySearchTerm(t *testing.T) {
	ws := statsWorkspace()
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	st := ws.Stats("jane", now)
	assert.Equal(t, 2, st.TotalOrders)
	assert.Equal(t, 0, st.ActiveRestaurants)
	assert.Equal(t, 0, st.AvailableDeliveryAgents, "the only matching agent is on delivery")
	assert.Equal(t, 1, st.TotalUsers)
	assert.Equal(t, 1, st.OrdersToday)
	assert.Equal(t, 1, st.OrdersYesterday)
	assert.Equal(t, TrendDown, st.OrdersTrend)
}

// Package filter implements the dashboard's list search: a case-insensitive
// substring match over a few fields of each entity.
package filter

import (
	"strings"

	"foodDeliveryAdmin/models"
)

// StatusAll disables the order status filter.
const StatusAll = "all"

// Match reports whether term occurs, ignoring case, in any of fields.
// A blank term matches everything.
func Match(term string, fields ...string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), t) {
			return true
		}
	}
	return false
}

// Filter returns the items whose fields match term. A blank term returns items unchanged;
// otherwise the result is a new slice and items is never modified.
func Filter[T any](items []T, term string, fields func(T) []string) []T {
	if strings.TrimSpace(term) == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if Match(term, fields(it)...) {
			out = append(out, it)
		}
	}
	return out
}

// Users searches name, email, mobile and id.
func Users(users []models.User, term string) []models.User {
	return Filter(users, term, func(u models.User) []string {
		return []string{u.Name, u.Email, u.Mobile, u.ID}
	})
}

// Orders searches customer name, restaurant name and id, then keeps only orders with the
// given status unless status is empty or "all".
func Orders(orders []models.Order, term, status string) []models.Order {
	out := Filter(orders, term, func(o models.Order) []string {
		return []string{o.CustomerName, o.RestaurantName, o.ID}
	})
	st := strings.ToLower(strings.TrimSpace(status))
	if st == "" || st == StatusAll {
		return out
	}
	kept := make([]models.Order, 0, len(out))
	for _, o := range out {
		if string(o.Status) == st {
			kept = append(kept, o)
		}
	}
	return kept
}

// Restaurants searches name, cuisine and id.
func Restaurants(rs []models.Restaurant, term string) []models.Restaurant {
	return Filter(rs, term, func(r models.Restaurant) []string {
		return []string{r.Name, r.Cuisine, r.ID}
	})
}

// Agents searches name and id.
func Agents(agents []models.DeliveryAgent, term string) []models.DeliveryAgent {
	return Filter(agents, term, func(a models.DeliveryAgent) []string {
		return []string{a.Name, a.ID}
	})
}

package models

// OrderSummary is one entry in a user's order history.
type OrderSummary struct {
	ID     string  `json:"id"`
	Date   string  `json:"date,omitempty"`
	Total  float64 `json:"total"`
	Status string  `json:"status,omitempty"`
}

// User is a platform customer. The dashboard only reads and searches users.
type User struct {
	ID               string         `json:"id"`
	Name             string         `json:"name,omitempty"`
	Email            string         `json:"email,omitempty"`
	Mobile           string         `json:"mobile,omitempty"`
	PhoneNumber      string         `json:"phoneNumber,omitempty"`
	Address          string         `json:"address,omitempty"`
	RegistrationDate string         `json:"registrationDate,omitempty"`
	OrderHistory     []OrderSummary `json:"orderHistory,omitempty"`
}

package models

// Restaurant is a partner restaurant listed in the dashboard.
type Restaurant struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Cuisine      string  `json:"cuisine,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	Address      string  `json:"address,omitempty"`
	PhoneNumber  string  `json:"phoneNumber,omitempty"`
	OpeningHours string  `json:"openingHours,omitempty"`
}

// MenuItem belongs to a restaurant's menu.
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	MenuItemDetails
}

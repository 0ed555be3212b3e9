package models

// OrderDraft is the create-order form. Total is filled in by the dashboard before submission.
type OrderDraft struct {
	UserID          string      `json:"userId,omitempty"`
	CustomerName    string      `json:"customerName"`
	RestaurantID    string      `json:"restaurantId,omitempty"`
	RestaurantName  string      `json:"restaurantName,omitempty"`
	Items           []OrderItem `json:"items"`
	DeliveryAddress string      `json:"deliveryAddress,omitempty"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
	Status          OrderStatus `json:"status,omitempty"`
	Total           float64     `json:"total"`
}

// RestaurantInput creates or partially updates a restaurant; empty fields are not sent.
type RestaurantInput struct {
	Name         string  `json:"name,omitempty"`
	Cuisine      string  `json:"cuisine,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	Address      string  `json:"address,omitempty"`
	PhoneNumber  string  `json:"phoneNumber,omitempty"`
	OpeningHours string  `json:"openingHours,omitempty"`
}

// MenuItemInput adds an item to a restaurant's menu. Name, category, slug and price are required.
type MenuItemInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	MenuItemDetails
}

// AgentInput creates or partially updates a delivery agent; empty fields are not sent.
type AgentInput struct {
	Name        string      `json:"name,omitempty"`
	Status      AgentStatus `json:"status,omitempty"`
	PhoneNumber string      `json:"phoneNumber,omitempty"`
	Email       string      `json:"email,omitempty"`
	Address     string      `json:"address,omitempty"`
}

package models

// AgentStatus is the availability of a delivery agent.
type AgentStatus string

const (
	AgentStatusAvailable  AgentStatus = "available"
	AgentStatusOnDelivery AgentStatus = "on delivery"
	AgentStatusOffline    AgentStatus = "offline"
)

func (s AgentStatus) IsValid() bool {
	switch s {
	case AgentStatusAvailable, AgentStatusOnDelivery, AgentStatusOffline:
		return true
	default:
		return false
	}
}

// CurrentOrder is the summary of the order an agent is carrying.
type CurrentOrder struct {
	ID              string `json:"id"`
	RestaurantName  string `json:"restaurantName,omitempty"`
	CustomerName    string `json:"customerName,omitempty"`
	DeliveryAddress string `json:"deliveryAddress,omitempty"`
}

// DeliveryAgent flips available -> on delivery on assignment and back on completion,
// when CompletedDeliveries is incremented by the backend.
type DeliveryAgent struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Status              AgentStatus   `json:"status"`
	CompletedDeliveries int           `json:"completedDeliveries"`
	PhoneNumber         string        `json:"phoneNumber,omitempty"`
	Email               string        `json:"email,omitempty"`
	Rating              float64       `json:"rating,omitempty"`
	Address             string        `json:"address,omitempty"`
	JoinDate            string        `json:"joinDate,omitempty"`
	CurrentOrder        *CurrentOrder `json:"currentOrder,omitempty"`
}

// Assignment identifies an order/agent pair for assign and complete commands.
type Assignment struct {
	OrderID string `json:"orderId"`
	AgentID string `json:"agentId"`
}

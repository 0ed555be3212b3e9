package models

import "time"

// Session is an authenticated admin session. It maps to the `sessions` table.
// AccessToken is the signed backend token and is sent as the bearer credential
// on every backend call made on behalf of the session.
type Session struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	MobileNumber string    `db:"mobile_number" json:"mobileNumber,omitempty"`
	Email        string    `db:"email" json:"email,omitempty"`
	AccessToken  string    `db:"access_token" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	ExpiresAt    time.Time `db:"expires_at" json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// DispatchAction names a coordinator command recorded in the dispatch log.
type DispatchAction string

const (
	DispatchAssign      DispatchAction = "assign"
	DispatchComplete    DispatchAction = "complete"
	DispatchCreateOrder DispatchAction = "create-order"
)

// DispatchOutcome is the result of a journaled command.
type DispatchOutcome string

const (
	DispatchOK     DispatchOutcome = "ok"
	DispatchFailed DispatchOutcome = "failed"
)

// DispatchRecord is one row of the `dispatch_log` table.
type DispatchRecord struct {
	ID        int64           `db:"id" json:"id"`
	Action    DispatchAction  `db:"action" json:"action"`
	OrderID   string          `db:"order_id" json:"orderId,omitempty"`
	AgentID   string          `db:"agent_id" json:"agentId,omitempty"`
	Actor     string          `db:"actor" json:"actor"`
	Outcome   DispatchOutcome `db:"outcome" json:"outcome"`
	Detail    string          `db:"detail" json:"detail,omitempty"`
	CreatedAt string          `db:"created_at" json:"createdAt"`
}

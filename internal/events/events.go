package events

// Billing event types published to the outbox.
const (
	EventCustomerSettled = "billing.customer_settled"
	EventCycleReopened   = "billing.cycle_reopened"
	EventCustomerCreated = "customer.created"
	EventCustomerDeleted = "customer.deleted"
)

// SettlementPayload captures the data needed to propagate a settlement.
type SettlementPayload struct {
	CustomerID  string `json:"customer_id"`
	SettledDate string `json:"settled_date"`
	DueAmount   string `json:"due_amount,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p SettlementPayload) ToMap() map[string]any {
	payload := map[string]any{
		"customer_id":  p.CustomerID,
		"settled_date": p.SettledDate,
	}
	if p.DueAmount != "" {
		payload["due_amount"] = p.DueAmount
	}
	return payload
}

// CycleReopenedPayload captures a normalization reset of a settled cycle.
type CycleReopenedPayload struct {
	CustomerID string `json:"customer_id"`
	BillDay    int    `json:"bill_day"`
	ResetDate  string `json:"reset_date"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p CycleReopenedPayload) ToMap() map[string]any {
	return map[string]any{
		"customer_id": p.CustomerID,
		"bill_day":    p.BillDay,
		"reset_date":  p.ResetDate,
	}
}

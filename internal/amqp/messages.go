package amqp

import (
	"encoding/json"
	"time"
)

// ScheduleFiredMessage announces one materialized occurrence of a
// recurring schedule. Consumers get ids plus the amount; anything else
// they need comes from the state store.
type ScheduleFiredMessage struct {
	ScheduleID    string    `json:"scheduleId"`
	TransactionID string    `json:"transactionId"`
	Type          string    `json:"type"`
	AmountCents   int64     `json:"amountCents"`
	FiredAt       time.Time `json:"firedAt"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewScheduleFiredMessage(scheduleID, transactionID, txType string, amountCents int64, firedAt time.Time) *ScheduleFiredMessage {
	return &ScheduleFiredMessage{
		ScheduleID:    scheduleID,
		TransactionID: transactionID,
		Type:          txType,
		AmountCents:   amountCents,
		FiredAt:       firedAt,
		Timestamp:     time.Now(),
	}
}

func (m *ScheduleFiredMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ScheduleFiredMessageFromJSON(data []byte) (*ScheduleFiredMessage, error) {
	var msg ScheduleFiredMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

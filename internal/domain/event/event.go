package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a workflow domain event. Events carry the return request
// they concern plus a free-form payload; subscribers that push notifications
// or write audit detail read what they need from the payload.
type Event struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	ReturnID  int64                  `json:"return_id"`
	CompanyID int64                  `json:"company_id"`
	Actor     string                 `json:"actor"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// New creates a domain event with an auto-generated ID and timestamp.
func New(eventType Type, returnID, companyID int64, actor string, payload map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ReturnID:  returnID,
		CompanyID: companyID,
		Actor:     actor,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// GetString retrieves a string value from the payload.
func (e *Event) GetString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

// GetInt retrieves an int value from the payload.
func (e *Event) GetInt(key string) int {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

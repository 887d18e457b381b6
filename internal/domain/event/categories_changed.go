package event

import "time"

type CategoriesChanged struct {
	Action     string    `json:"action"` // "set" or "clear"
	Count      int       `json:"count"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e *CategoriesChanged) EventType() string {
	return "CategoriesChanged"
}

func (e *CategoriesChanged) EventValue() ([]byte, error) {
	return DefaultEventValue(e)
}

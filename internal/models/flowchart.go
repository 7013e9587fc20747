package models

import (
	"encoding/json"
	"time"
)

// Flowchart is a user-owned document. Data is an opaque JSON payload the
// server stores and returns verbatim, never interprets.
type Flowchart struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FlowchartPatch carries a partial update: only fields present in the body
// are applied. Description tracks presence separately from its value, so an
// explicit null clears the stored description instead of being dropped.
type FlowchartPatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Data           json.RawMessage
}

func (p *FlowchartPatch) UnmarshalJSON(b []byte) error {
	var fields struct {
		Title       *string         `json:"title"`
		Description *string         `json:"description"`
		Data        json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	p.Title = fields.Title
	p.Description = fields.Description
	_, p.DescriptionSet = keys["description"]
	p.Data = fields.Data
	return nil
}

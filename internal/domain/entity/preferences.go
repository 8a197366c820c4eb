package entity

import "encoding/json"

// Preferences holds the per-chat notification toggles. All toggles
// default to true; they are mutated only by the settings UI and are
// read-only to the engine.
type Preferences struct {
	NewTicket bool `json:"notify_new_ticket"`
	Status    bool `json:"notify_status"`
	Executor  bool `json:"notify_executor"`
	Done      bool `json:"notify_done"`
	Comment   bool `json:"notify_comment"`
	Approval  bool `json:"notify_approval"`
}

// DefaultPreferences returns preferences with every toggle enabled.
func DefaultPreferences() Preferences {
	return Preferences{
		NewTicket: true,
		Status:    true,
		Executor:  true,
		Done:      true,
		Comment:   true,
		Approval:  true,
	}
}

// UnmarshalJSON decodes preferences, treating absent keys as enabled so
// that records written before a toggle existed keep the default.
func (p *Preferences) UnmarshalJSON(data []byte) error {
	type raw struct {
		NewTicket *bool `json:"notify_new_ticket"`
		Status    *bool `json:"notify_status"`
		Executor  *bool `json:"notify_executor"`
		Done      *bool `json:"notify_done"`
		Comment   *bool `json:"notify_comment"`
		Approval  *bool `json:"notify_approval"`
	}
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*p = DefaultPreferences()
	if r.NewTicket != nil {
		p.NewTicket = *r.NewTicket
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	if r.Executor != nil {
		p.Executor = *r.Executor
	}
	if r.Done != nil {
		p.Done = *r.Done
	}
	if r.Comment != nil {
		p.Comment = *r.Comment
	}
	if r.Approval != nil {
		p.Approval = *r.Approval
	}
	return nil
}

package event

type TicketCreated struct {
	Meta
	TicketID  string `json:"ticket_id"`
	DisplayID string `json:"display_id"`
	Subject   string `json:"subject"`
	CreatorID string `json:"creator_id"`
	CompanyID string `json:"company_id,omitempty"`
}

func (TicketCreated) EventName() string { return TicketCreatedName }

type TicketReplied struct {
	Meta
	TicketID      string `json:"ticket_id"`
	DisplayID     string `json:"display_id"`
	CreatorID     string `json:"creator_id"`
	AssigneeID    string `json:"assignee_id,omitempty"`
	AuthorID      string `json:"author_id"`
	AuthorIsAdmin bool   `json:"author_is_admin"`
}

func (TicketReplied) EventName() string { return TicketRepliedName }

type TicketStatusChanged struct {
	Meta
	TicketID  string `json:"ticket_id"`
	DisplayID string `json:"display_id"`
	CreatorID string `json:"creator_id"`
	NewStatus string `json:"new_status"`
	ActorID   string `json:"actor_id"`
}

func (TicketStatusChanged) EventName() string { return TicketStatusChangedName }

package event

type MessageNew struct {
	Meta
	ConversationID     string `json:"conversation_id"`
	OrderID            string `json:"order_id,omitempty"`
	SenderID           string `json:"sender_id"`
	SenderName         string `json:"sender_name"`
	SenderCompanyID    string `json:"sender_company_id"`
	RecipientCompanyID string `json:"recipient_company_id"`
	Preview            string `json:"preview"`
}

func (MessageNew) EventName() string { return MessageNewName }

type ProposalSent struct {
	Meta
	ProposalID         string  `json:"proposal_id"`
	OrderID            string  `json:"order_id"`
	SenderCompanyID    string  `json:"sender_company_id"`
	RecipientCompanyID string  `json:"recipient_company_id"`
	ActorID            string  `json:"actor_id"`
	Amount             float64 `json:"amount"`
}

func (ProposalSent) EventName() string { return ProposalSentName }

type ProposalAccepted struct {
	Meta
	ProposalID string `json:"proposal_id"`
	OrderID    string `json:"order_id"`
	ProposerID string `json:"proposer_id"`
	ActorID    string `json:"actor_id"`
}

func (ProposalAccepted) EventName() string { return ProposalAcceptedName }

type ProposalRejected struct {
	Meta
	ProposalID string `json:"proposal_id"`
	OrderID    string `json:"order_id"`
	ProposerID string `json:"proposer_id"`
	ActorID    string `json:"actor_id"`
}

func (ProposalRejected) EventName() string { return ProposalRejectedName }

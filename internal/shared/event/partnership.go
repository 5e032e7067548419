package event

type PartnershipRequested struct {
	Meta
	RequestID          string `json:"request_id"`
	RequesterID        string `json:"requester_id"`
	RequesterCompanyID string `json:"requester_company_id"`
	RequesterCompany   string `json:"requester_company_name"`
	TargetCompanyID    string `json:"target_company_id"`
}

func (PartnershipRequested) EventName() string { return PartnershipRequestedName }

type PartnershipAccepted struct {
	Meta
	RequestID         string `json:"request_id"`
	RequesterID       string `json:"requester_id"`
	TargetCompanyID   string `json:"target_company_id"`
	TargetCompanyName string `json:"target_company_name"`
	ActorID           string `json:"actor_id"`
}

func (PartnershipAccepted) EventName() string { return PartnershipAcceptedName }

type PartnershipRejected struct {
	Meta
	RequestID         string `json:"request_id"`
	RequesterID       string `json:"requester_id"`
	TargetCompanyID   string `json:"target_company_id"`
	TargetCompanyName string `json:"target_company_name"`
	ActorID           string `json:"actor_id"`
}

func (PartnershipRejected) EventName() string { return PartnershipRejectedName }

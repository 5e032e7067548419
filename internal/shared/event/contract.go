package event

type ContractSent struct {
	Meta
	ContractID      string `json:"contract_id"`
	Title           string `json:"title"`
	BrandID         string `json:"brand_id"`
	SupplierID      string `json:"supplier_id"`
	SenderCompanyID string `json:"sender_company_id"`
	ActorID         string `json:"actor_id"`
}

func (ContractSent) EventName() string { return ContractSentName }

type ContractSigned struct {
	Meta
	ContractID      string `json:"contract_id"`
	Title           string `json:"title"`
	BrandID         string `json:"brand_id"`
	SupplierID      string `json:"supplier_id"`
	SignerCompanyID string `json:"signer_company_id"`
	ActorID         string `json:"actor_id"`
}

func (ContractSigned) EventName() string { return ContractSignedName }

package models

// Customer is a billed party. Purely descriptive: no field here carries a
// ledger invariant, invoices only snapshot the customer name at sale time.
type Customer struct {
	ID                 string `json:"id"`
	Name               string `json:"name"` // razón social
	CommercialName     string `json:"commercialName,omitempty"`
	Email              string `json:"email,omitempty"`
	IdentificationType string `json:"identificationType,omitempty"`
	TaxID              string `json:"taxId,omitempty"`
	TaxRegime          string `json:"taxRegime,omitempty"`
	EconomicActivity   string `json:"economicActivity,omitempty"`

	Country  string `json:"country,omitempty"`
	Province string `json:"province,omitempty"`
	Canton   string `json:"canton,omitempty"`
	District string `json:"district,omitempty"`
	ZipCode  string `json:"zipCode,omitempty"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

package models

// HaciendaConfig holds the (simulated) e-invoicing credentials.
type HaciendaConfig struct {
	Username            string `json:"username,omitempty"`
	Password            string `json:"password,omitempty"`
	Pin                 string `json:"pin,omitempty"`
	CertificateUploaded bool   `json:"certificateUploaded,omitempty"`
	Environment         string `json:"environment"` // staging | production
}

// AppSettings is the single process-wide configuration record, stored under
// settings/general. TaxRate and ExchangeRate are read at calculation time and
// threaded explicitly into every computation; nothing reads them as globals.
type AppSettings struct {
	CompanyName    string `json:"companyName"`
	CommercialName string `json:"commercialName,omitempty"`
	CompanyTaxID   string `json:"companyTaxId"`
	CompanyEmail   string `json:"companyEmail,omitempty"`
	CompanyPhone   string `json:"companyPhone,omitempty"`
	CompanyWebsite string `json:"companyWebsite,omitempty"`
	FooterMessage  string `json:"footerMessage,omitempty"`

	Currency string `json:"currency"`
	// ExchangeRate is the global CRC-per-USD scalar used for all conversions
	// at item-entry time. Not a per-item historical rate.
	ExchangeRate float64 `json:"exchangeRate"`
	// TaxRate is a flat percentage applied uniformly to every line item.
	TaxRate float64 `json:"taxRate"`

	Address  string `json:"address,omitempty"`
	Province string `json:"province,omitempty"`
	Canton   string `json:"canton,omitempty"`
	District string `json:"district,omitempty"`

	Hacienda *HaciendaConfig `json:"hacienda,omitempty"`
}

// DefaultSettings returns the settings used when no settings/general record
// exists yet.
func DefaultSettings() AppSettings {
	return AppSettings{
		CompanyName:    "Mi Empresa S.A.",
		CommercialName: "Tecnología y Más",
		CompanyTaxID:   "3-101-123456",
		CompanyEmail:   "facturacion@miempresa.com",
		CompanyPhone:   "2222-0000",
		CompanyWebsite: "www.miempresa.cr",
		FooterMessage:  "Autorizado mediante resolución DGT-R-033-2019. Gracias por su preferencia.",
		Currency:       CurrencyCRC,
		ExchangeRate:   520,
		TaxRate:        13,
		Address:        "San José, Mata Redonda, Sabana Norte, Edificio Principal",
		Province:       "San José",
		Canton:         "San José",
		District:       "Mata Redonda",
		Hacienda:       &HaciendaConfig{Environment: "staging"},
	}
}

package domain

// NGO is a registered organisation receiving donations.
type NGO struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	LogoURL        string   `json:"logo_url"`
	CertificateURL string   `json:"certificate_url"`
	AdminID        string   `json:"admin_id,omitempty"`
	Admin          string   `json:"admin,omitempty"`
	WorkImages     []string `json:"work_images"`
}

// NGODetail is an NGO together with its ledger split by direction.
type NGODetail struct {
	NGO
	Incoming []Transaction `json:"incoming"`
	Outgoing []Transaction `json:"outgoing"`
}

// NGOUpdate carries the administrator-editable fields of an NGO.
type NGOUpdate struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	LogoURL        string   `json:"logo_url"`
	CertificateURL string   `json:"certificate_url"`
	WorkImages     []string `json:"work_images"`
}

// Apply copies the editable fields onto n.
func (u NGOUpdate) Apply(n *NGO) {
	if u.Name != "" {
		n.Name = u.Name
	}
	n.Description = u.Description
	n.LogoURL = u.LogoURL
	n.CertificateURL = u.CertificateURL
	n.WorkImages = append([]string(nil), u.WorkImages...)
}

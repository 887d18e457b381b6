package domain

// Address is a saved shipping address within a UserProfile
type Address struct {
	ID        string `json:"id"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// UserProfile is the authenticated user's profile snapshot
type UserProfile struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone,omitempty"`
	Addresses        []Address `json:"addresses"`
	DefaultAddressID string    `json:"default_address_id,omitempty"`
}

// Clone returns a deep copy of the profile.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Addresses = cloneSlice(p.Addresses)
	return &clone
}

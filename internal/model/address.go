package model

// Address is a shipping address owned by the backend user profile.
type Address struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AddressLine string `json:"addressLine"`
	Landmark    string `json:"landmark,omitempty"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	Country     string `json:"country"`
	Phone       string `json:"phone,omitempty"`
	IsDefault   bool   `json:"isDefault"`
}

// AddressRequest represents the request payload for creating an address.
type AddressRequest struct {
	Name        string `json:"name"`
	AddressLine string `json:"addressLine"`
	Landmark    string `json:"landmark,omitempty"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	Country     string `json:"country"`
	Phone       string `json:"phone,omitempty"`
	IsDefault   bool   `json:"isDefault"`
}

// DefaultAddress returns the first address flagged as default, or nil.
func DefaultAddress(addresses []Address) *Address {
	for i := range addresses {
		if addresses[i].IsDefault {
			return &addresses[i]
		}
	}
	return nil
}

// FindAddress returns the address with the given id, or nil.
func FindAddress(addresses []Address, id string) *Address {
	for i := range addresses {
		if addresses[i].ID == id {
			return &addresses[i]
		}
	}
	return nil
}

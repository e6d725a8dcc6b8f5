package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/session"

	"github.com/rs/zerolog"
)

const defaultCountry = "India"

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

type addressService struct {
	backend AddressBackend
	logger  zerolog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(backend AddressBackend, logger zerolog.Logger) AddressService {
	return &addressService{
		backend: backend,
		logger:  logger.With().Str("service", "address").Logger(),
	}
}

// List returns the user's addresses with at most one default. When the backend
// reports several, the most recently created one wins.
func (a *addressService) List(ctx context.Context, s *session.Session) ([]model.Address, error) {
	addresses, err := a.backend.ListAddresses(ctx, s)
	if err != nil {
		a.logger.Error().Err(err).Str("session_id", s.ID().String()).Msg("failed to list addresses")
		return nil, fmt.Errorf("failed to get addresses: %w", err)
	}
	return singleDefault(addresses), nil
}

func (a *addressService) Create(ctx context.Context, s *session.Session, req model.AddressRequest) (*model.Address, error) {
	req = normalizeAddress(req)
	if err := validateAddress(req); err != nil {
		return nil, err
	}

	addr, err := a.backend.CreateAddress(ctx, s, req)
	if err != nil {
		a.logger.Error().Err(err).Str("session_id", s.ID().String()).Msg("failed to create address")
		return nil, fmt.Errorf("failed to save address: %w", err)
	}

	a.logger.Info().
		Str("session_id", s.ID().String()).
		Str("address_id", addr.ID).
		Bool("default", addr.IsDefault).
		Msg("address created")

	return addr, nil
}

func normalizeAddress(req model.AddressRequest) model.AddressRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.AddressLine = strings.TrimSpace(req.AddressLine)
	req.Landmark = strings.TrimSpace(req.Landmark)
	req.City = strings.TrimSpace(req.City)
	req.State = strings.TrimSpace(req.State)
	req.Pincode = strings.TrimSpace(req.Pincode)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Country = strings.TrimSpace(req.Country)
	if req.Country == "" {
		req.Country = defaultCountry
	}
	return req
}

func validateAddress(req model.AddressRequest) error {
	var missing []string
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.AddressLine == "" {
		missing = append(missing, "addressLine")
	}
	if req.City == "" {
		missing = append(missing, "city")
	}
	if req.State == "" {
		missing = append(missing, "state")
	}
	if len(missing) > 0 {
		return model.ErrInvalidAddress.WithDetail("missing " + strings.Join(missing, ", "))
	}
	if !pincodePattern.MatchString(req.Pincode) {
		return model.ErrInvalidAddress.WithDetail("pincode must be 6 digits")
	}
	return nil
}

func singleDefault(addresses []model.Address) []model.Address {
	last := -1
	for i := range addresses {
		if addresses[i].IsDefault {
			last = i
		}
	}
	for i := range addresses {
		addresses[i].IsDefault = i == last
	}
	return addresses
}

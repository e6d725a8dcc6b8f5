package service

import (
	"context"
	"errors"

	"bihar-bazaar/internal/auth"
	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/session"
	"bihar-bazaar/internal/telemetry"

	"github.com/rs/zerolog"
)

type authService struct {
	cart    CartService
	store   SessionStore
	metrics *telemetry.Metrics
	logger  zerolog.Logger
}

// NewAuthService creates a new auth service. After sign-in the local cart is
// replaced with the backend cart through cartSvc.
func NewAuthService(cartSvc CartService, store SessionStore, metrics *telemetry.Metrics, logger zerolog.Logger) AuthService {
	return &authService{
		cart:    cartSvc,
		store:   store,
		metrics: metrics,
		logger:  logger.With().Str("service", "auth").Logger(),
	}
}

func (a *authService) View(s *session.Session) auth.View {
	return s.Auth().View()
}

func (a *authService) SubmitPhone(ctx context.Context, s *session.Session, phone string) (auth.View, error) {
	err := s.Auth().SubmitPhone(ctx, phone)
	if err != nil {
		a.logger.Debug().Err(err).Str("session_id", s.ID().String()).Msg("phone step failed")
	}
	return s.Auth().View(), err
}

func (a *authService) SubmitName(ctx context.Context, s *session.Session, name string) (auth.View, error) {
	err := s.Auth().SubmitName(ctx, name)
	return s.Auth().View(), err
}

func (a *authService) EnterDigit(ctx context.Context, s *session.Session, index int, digit string) (*AuthResult, auth.View, error) {
	res, err := s.Auth().EnterDigit(ctx, index, digit)
	return a.finish(ctx, s, res, err)
}

func (a *authService) SubmitOTP(ctx context.Context, s *session.Session, code string) (*AuthResult, auth.View, error) {
	res, err := s.Auth().SubmitOTP(ctx, code)
	return a.finish(ctx, s, res, err)
}

func (a *authService) Resend(ctx context.Context, s *session.Session) (auth.View, error) {
	err := s.Auth().Resend(ctx)
	return s.Auth().View(), err
}

func (a *authService) Reset(ctx context.Context, s *session.Session) auth.View {
	s.Auth().Reset()
	return s.Auth().View()
}

// Logout wipes tokens, profile, cart, wishlist and checkout.
func (a *authService) Logout(ctx context.Context, s *session.Session) error {
	if err := a.store.Wipe(ctx, s); err != nil {
		a.logger.Error().Err(err).Str("session_id", s.ID().String()).Msg("failed to log out")
		return err
	}
	a.logger.Info().Str("session_id", s.ID().String()).Msg("signed out")
	return nil
}

// finish records a verification attempt. On success the profile is stored and
// the backend cart replaces the local one.
func (a *authService) finish(ctx context.Context, s *session.Session, res *auth.Result, err error) (*AuthResult, auth.View, error) {
	if err != nil {
		if errors.Is(err, model.ErrInvalidOTP) {
			a.metrics.OTPVerification(ctx, false)
		}
		return nil, s.Auth().View(), err
	}
	if res == nil {
		return nil, s.Auth().View(), nil
	}

	a.metrics.OTPVerification(ctx, true)
	s.SetProfile(res.Profile)

	logger := a.logger.With().Str("session_id", s.ID().String()).Logger()
	if res.ProfileErr != nil {
		logger.Warn().Err(res.ProfileErr).Msg("signed in but profile name was not saved")
	}

	if err := a.cart.Sync(ctx, s); err != nil {
		logger.Warn().Err(err).Msg("signed in but cart could not be synced")
		persist(ctx, a.store, s, a.logger)
	}

	logger.Info().Bool("new_user", s.Auth().IsNewUser()).Msg("signed in")

	return &AuthResult{Profile: res.Profile, Redirect: res.Redirect}, s.Auth().View(), nil
}

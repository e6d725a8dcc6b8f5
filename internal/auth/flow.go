// Package auth implements the phone OTP sign-in step machine.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bihar-bazaar/internal/backend"
	"bihar-bazaar/internal/model"
)

// Step is a sign-in state.
type Step string

const (
	StepPhone         Step = "phone"
	StepName          Step = "name"
	StepOTP           Step = "otp"
	StepAuthenticated Step = "authenticated"
)

// ProfileRedirect is where the client goes after signing in.
const ProfileRedirect = "/profile"

var transitions = map[Step]map[Step]bool{
	StepPhone: {StepName: true, StepOTP: true},
	StepName:  {StepOTP: true},
	StepOTP:   {StepAuthenticated: true},
}

// API is the subset of the backend the flow calls.
type API interface {
	CheckUser(ctx context.Context, phone string) (bool, error)
	SendOTP(ctx context.Context, phone, name string) error
	VerifyOTP(ctx context.Context, phone, otp string) (model.Tokens, error)
	UpdateProfile(ctx context.Context, creds backend.Credentials, name string) error
}

// Options tunes a Flow.
type Options struct {
	ResendCooldown time.Duration
	CountryCode    string
	Now            func() time.Time
}

// Flow is the sign-in state of one session. Callers serialise access.
type Flow struct {
	api   API
	creds backend.Credentials
	opts  Options

	step      Step
	phone     string
	name      string
	isNewUser bool
	otp       OTPEntry
	lastSent  time.Time
	errText   string
}

// NewFlow starts a flow at the phone step. Issued tokens are stored in creds.
func NewFlow(api API, creds backend.Credentials, opts Options) *Flow {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CountryCode == "" {
		opts.CountryCode = "+91"
	}
	return &Flow{
		api:   api,
		creds: creds,
		opts:  opts,
		step:  StepPhone,
	}
}

// Result is returned when verification completes. ProfileErr is set when the
// deferred name update failed; sign-in still succeeded.
type Result struct {
	Profile    model.Profile `json:"profile"`
	Redirect   string        `json:"redirect"`
	ProfileErr error         `json:"-"`
}

func (f *Flow) Step() Step { return f.step }

func (f *Flow) IsNewUser() bool { return f.isNewUser }

// SubmitPhone checks the number with the backend. Existing users get a code
// straight away; new users are asked for a name first.
func (f *Flow) SubmitPhone(ctx context.Context, raw string) error {
	if f.step != StepPhone {
		return model.ErrInvalidAuthStep
	}

	phone, err := f.normalizePhone(raw)
	if err != nil {
		f.errText = err.Error()
		return err
	}

	isNew, err := f.api.CheckUser(ctx, phone)
	if err != nil {
		f.errText = "Failed to check phone number"
		return fmt.Errorf("failed to check user: %w", err)
	}

	f.phone = phone
	f.isNewUser = isNew
	f.errText = ""

	if isNew {
		return f.moveTo(StepName)
	}

	if err := f.sendOTP(ctx); err != nil {
		return err
	}
	return f.moveTo(StepOTP)
}

// SubmitName holds the display name locally and sends the code.
func (f *Flow) SubmitName(ctx context.Context, name string) error {
	if f.step != StepName {
		return model.ErrInvalidAuthStep
	}

	name = strings.TrimSpace(name)
	if name == "" {
		f.errText = model.ErrInvalidName.Error()
		return model.ErrInvalidName
	}
	f.name = name

	if err := f.sendOTP(ctx); err != nil {
		return err
	}
	return f.moveTo(StepOTP)
}

// EnterDigit fills one cell. Filling the last empty cell submits the code.
// The result is non-nil only when verification succeeded.
func (f *Flow) EnterDigit(ctx context.Context, index int, digit string) (*Result, error) {
	if f.step != StepOTP {
		return nil, model.ErrInvalidAuthStep
	}
	if err := f.otp.Set(index, digit); err != nil {
		return nil, err
	}

	code, complete := f.otp.Code()
	if !complete {
		return nil, nil
	}
	return f.verify(ctx, code)
}

// SubmitOTP verifies code, or the entered cells when code is empty.
// Anything other than six digits is rejected without calling the backend.
func (f *Flow) SubmitOTP(ctx context.Context, code string) (*Result, error) {
	if f.step != StepOTP {
		return nil, model.ErrInvalidAuthStep
	}

	if code != "" {
		if err := f.otp.Fill(code); err != nil {
			return nil, err
		}
	}

	entered, complete := f.otp.Code()
	if !complete {
		return nil, model.ErrIncompleteOTP
	}
	return f.verify(ctx, entered)
}

func (f *Flow) verify(ctx context.Context, code string) (*Result, error) {
	tokens, err := f.api.VerifyOTP(ctx, f.phone, code)
	if err != nil {
		f.otp.Clear()
		if isRejection(err) {
			f.errText = model.ErrInvalidOTP.Error()
			return nil, model.ErrInvalidOTP
		}
		f.errText = "Failed to verify OTP"
		return nil, fmt.Errorf("failed to verify OTP: %w", err)
	}

	f.creds.UpdateTokens(tokens)

	result := &Result{
		Profile:  model.Profile{Phone: f.phone, Name: f.name},
		Redirect: ProfileRedirect,
	}
	if f.isNewUser {
		if err := f.api.UpdateProfile(ctx, f.creds, f.name); err != nil {
			result.ProfileErr = fmt.Errorf("failed to update profile: %w", err)
		}
	}

	f.errText = ""
	if err := f.moveTo(StepAuthenticated); err != nil {
		return nil, err
	}
	return result, nil
}

// Resend sends a new code once the cooldown has passed. New users get their name sent again.
func (f *Flow) Resend(ctx context.Context) error {
	if f.step != StepOTP {
		return model.ErrInvalidAuthStep
	}
	if f.ResendIn() > 0 {
		return model.ErrResendCooldown
	}
	f.otp.Clear()
	return f.sendOTP(ctx)
}

// ResendIn returns how long until a resend is allowed.
func (f *Flow) ResendIn() time.Duration {
	if f.lastSent.IsZero() {
		return 0
	}
	remaining := f.opts.ResendCooldown - f.opts.Now().Sub(f.lastSent)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset returns to the phone step and forgets everything entered.
func (f *Flow) Reset() {
	*f = Flow{
		api:   f.api,
		creds: f.creds,
		opts:  f.opts,
		step:  StepPhone,
	}
}

func (f *Flow) sendOTP(ctx context.Context) error {
	name := ""
	if f.isNewUser {
		name = f.name
	}
	if err := f.api.SendOTP(ctx, f.phone, name); err != nil {
		f.errText = "Failed to send OTP"
		return fmt.Errorf("failed to send OTP: %w", err)
	}
	f.lastSent = f.opts.Now()
	f.errText = ""
	return nil
}

func (f *Flow) moveTo(to Step) error {
	if !transitions[f.step][to] {
		return model.ErrInvalidAuthStep
	}
	f.step = to
	return nil
}

// normalizePhone accepts ten digits, optionally prefixed with the country code.
func (f *Flow) normalizePhone(raw string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	cc := strings.TrimPrefix(f.opts.CountryCode, "+")
	digits = strings.TrimPrefix(digits, "+")
	if len(digits) == 10+len(cc) && strings.HasPrefix(digits, cc) {
		digits = digits[len(cc):]
	}

	if len(digits) != 10 {
		return "", model.ErrInvalidPhone
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", model.ErrInvalidPhone
		}
	}
	return "+" + cc + digits, nil
}

// isRejection reports whether the backend refused the code itself.
func isRejection(err error) bool {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusBadRequest ||
		apiErr.StatusCode == http.StatusUnauthorized ||
		apiErr.StatusCode == http.StatusUnprocessableEntity
}

// View is the serialisable state of the flow.
type View struct {
	Step            Step     `json:"step"`
	Phone           string   `json:"phone,omitempty"`
	IsNewUser       bool     `json:"isNewUser"`
	OTP             []string `json:"otp"`
	Focus           int      `json:"focus"`
	Error           string   `json:"error,omitempty"`
	ResendInSeconds int      `json:"resendInSeconds"`
}

func (f *Flow) View() View {
	return View{
		Step:            f.step,
		Phone:           f.phone,
		IsNewUser:       f.isNewUser,
		OTP:             f.otp.Cells(),
		Focus:           f.otp.Focus(),
		Error:           f.errText,
		ResendInSeconds: int((f.ResendIn() + time.Second - 1) / time.Second),
	}
}

package backend

import (
	"context"
	"net/http"

	"bihar-bazaar/internal/model"
)

type phoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Name        string `json:"name,omitempty"`
	OTP         string `json:"otp,omitempty"`
}

// CheckUser reports whether phone has no account yet.
func (c *Client) CheckUser(ctx context.Context, phone string) (bool, error) {
	var resp struct {
		IsNewUser bool `json:"isNewUser"`
	}
	if err := c.do(ctx, nil, http.MethodPost, "/auth/check-user", phoneRequest{PhoneNumber: phone}, &resp); err != nil {
		return false, err
	}
	return resp.IsNewUser, nil
}

// SendOTP sends a one-time code to phone. name is only sent for new users.
func (c *Client) SendOTP(ctx context.Context, phone, name string) error {
	return c.do(ctx, nil, http.MethodPost, "/auth/send-otp", phoneRequest{PhoneNumber: phone, Name: name}, nil)
}

// VerifyOTP exchanges a one-time code for tokens.
func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (model.Tokens, error) {
	var tokens model.Tokens
	if err := c.do(ctx, nil, http.MethodPost, "/auth/verify-otp", phoneRequest{PhoneNumber: phone, OTP: otp}, &tokens); err != nil {
		return model.Tokens{}, err
	}
	return tokens, nil
}

// UpdateProfile sets the display name of the signed-in user.
func (c *Client) UpdateProfile(ctx context.Context, creds Credentials, name string) error {
	return c.do(ctx, creds, http.MethodPatch, "/auth/profile", map[string]string{"name": name}, nil)
}

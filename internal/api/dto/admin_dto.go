package dto

import "time"

// AdminLoginRequest carries the operator password.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginResponse returns the issued bearer token.
type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PublishPanelRequest selects where to publish the ticket panel.
type PublishPanelRequest struct {
	ChannelRef string `json:"channel_ref"`
}

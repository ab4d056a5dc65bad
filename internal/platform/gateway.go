package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/hoodmarket/ticket-bot/internal/config"
	"github.com/hoodmarket/ticket-bot/internal/domain"
)

// GatewayClient implements Client against the chat-platform gateway's JSON
// API. The gateway owns permission overwrites, widget rendering and message
// formatting; this client only moves structured payloads.
type GatewayClient struct {
	baseURL    string
	token      string
	categoryID string
	adminRole  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGatewayClient builds a client from platform configuration.
func NewGatewayClient(cfg config.PlatformConfig, logger *zap.Logger) *GatewayClient {
	return &GatewayClient{
		baseURL:    cfg.GatewayURL,
		token:      cfg.GatewayToken,
		categoryID: cfg.TicketCategoryID,
		adminRole:  cfg.AdminRoleID,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
		logger:     logger,
	}
}

type createChannelRequest struct {
	Name        string `json:"name"`
	CategoryID  string `json:"category_id"`
	RequesterID string `json:"requester_id"`
	AdminRoleID string `json:"admin_role_id"`
}

type createChannelResponse struct {
	ChannelRef string `json:"channel_ref"`
}

// CreateTicketChannel provisions a ticket channel visible to the requester
// and the admin role only.
func (g *GatewayClient) CreateTicketChannel(ctx context.Context, number int64, requesterID string) (string, error) {
	req := createChannelRequest{
		Name:        fmt.Sprintf("ticket-%d", number),
		CategoryID:  g.categoryID,
		RequesterID: requesterID,
		AdminRoleID: g.adminRole,
	}
	var resp createChannelResponse
	if err := g.post(ctx, "/channels", req, &resp); err != nil {
		return "", err
	}
	return resp.ChannelRef, nil
}

// DeleteChannel tears down a channel.
func (g *GatewayClient) DeleteChannel(ctx context.Context, channelRef string) error {
	return g.do(ctx, http.MethodDelete, "/channels/"+url.PathEscape(channelRef), nil, nil)
}

// ChannelExists probes whether a channel is still present.
func (g *GatewayClient) ChannelExists(ctx context.Context, channelRef string) (bool, error) {
	err := g.do(ctx, http.MethodGet, "/channels/"+url.PathEscape(channelRef), nil, nil)
	if err == nil {
		return true, nil
	}
	var statusErr *gatewayStatusError
	if errors.As(err, &statusErr) && statusErr.status == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

type messagesResponse struct {
	Messages []domain.MessageRecord `json:"messages"`
}

// ChannelMessages fetches channel history, oldest first.
func (g *GatewayClient) ChannelMessages(ctx context.Context, channelRef string, limit int) ([]domain.MessageRecord, error) {
	path := fmt.Sprintf("/channels/%s/messages?limit=%d", url.PathEscape(channelRef), limit)
	var resp messagesResponse
	if err := g.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendChannelMessage delivers a message to a channel.
func (g *GatewayClient) SendChannelMessage(ctx context.Context, channelRef string, msg Message) error {
	return g.post(ctx, "/channels/"+url.PathEscape(channelRef)+"/messages", msg, nil)
}

type postMessageResponse struct {
	MessageRef string `json:"message_ref"`
}

// PostChannelMessage delivers a message and returns its reference so the
// caller can delete it later.
func (g *GatewayClient) PostChannelMessage(ctx context.Context, channelRef string, msg Message) (string, error) {
	var resp postMessageResponse
	if err := g.post(ctx, "/channels/"+url.PathEscape(channelRef)+"/messages", msg, &resp); err != nil {
		return "", err
	}
	return resp.MessageRef, nil
}

// DeleteChannelMessage removes a single message from a channel.
func (g *GatewayClient) DeleteChannelMessage(ctx context.Context, channelRef, messageRef string) error {
	path := "/channels/" + url.PathEscape(channelRef) + "/messages/" + url.PathEscape(messageRef)
	return g.do(ctx, http.MethodDelete, path, nil, nil)
}

// SendDirectMessage delivers a message to a user's DM channel.
func (g *GatewayClient) SendDirectMessage(ctx context.Context, userID string, msg Message) error {
	return g.post(ctx, "/users/"+url.PathEscape(userID)+"/messages", msg, nil)
}

func (g *GatewayClient) post(ctx context.Context, path string, body, out any) error {
	return g.do(ctx, http.MethodPost, path, body, out)
}

func (g *GatewayClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("platform: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("platform: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("platform: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &gatewayStatusError{method: method, path: path, status: resp.StatusCode}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("platform: decode response: %w", err)
		}
	}
	return nil
}

type gatewayStatusError struct {
	method string
	path   string
	status int
}

func (e *gatewayStatusError) Error() string {
	return fmt.Sprintf("platform: %s %s: unexpected status %d", e.method, e.path, e.status)
}

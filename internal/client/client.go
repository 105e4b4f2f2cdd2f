// Package client is the HTTP+JSON client for the identity service.
//
// Transport failures are reported as errs.ErrUnavailable; non-success
// responses carrying an error body become *errs.ServiceError with the
// service's literal message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/model"
)

// callerHeader carries the caller's identity id as the request credential.
const callerHeader = "X-User-Id"

// Client talks to the identity service at a fixed base URL.
type Client struct {
	base string
	http *http.Client
}

// New builds a client for the service at baseURL.
func New(baseURL string) *Client {
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// SendCode asks the service to deliver a verification code. In dev mode the
// service echoes the code back; it is returned for display and empty
// otherwise.
func (c *Client) SendCode(ctx context.Context, phone string) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		DevCode string `json:"dev_code"`
	}
	err := c.do(ctx, http.MethodPost, "/auth", 0,
		map[string]any{"action": "send_code", "phone": phone}, &out)
	return out.DevCode, err
}

// VerifyCode submits a complete 6-digit code. A nil identity with nil error
// means the code was accepted but no account exists for the phone. A
// refused code maps to errs.ErrCodeRejected.
func (c *Client) VerifyCode(ctx context.Context, phone, code string) (*model.Identity, error) {
	var out struct {
		Success    bool            `json:"success"`
		UserExists bool            `json:"user_exists"`
		User       *model.Identity `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth", 0,
		map[string]any{"action": "verify_code", "phone": phone, "code": code}, &out)
	if err != nil {
		var se *errs.ServiceError
		if errors.As(err, &se) && se.Status == http.StatusBadRequest {
			return nil, errs.ErrCodeRejected
		}
		return nil, err
	}
	if !out.UserExists {
		return nil, nil
	}
	return out.User, nil
}

// CreateProfile allocates the permanent identity for a verified phone. The
// service enforces nickname/username uniqueness; its rejection message is
// returned verbatim inside *errs.ServiceError.
func (c *Client) CreateProfile(ctx context.Context, phone, nickname, username string) (model.Identity, error) {
	var out model.Identity
	err := c.do(ctx, http.MethodPost, "/users", 0,
		map[string]any{"phone": phone, "nickname": nickname, "username": username}, &out)
	return out, err
}

// SearchUsers finds identities matching query by username or nickname.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]model.Friend, error) {
	var out []model.Friend
	path := "/users?search=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, 0, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFriends fetches the caller's confirmed friends.
func (c *Client) ListFriends(ctx context.Context, callerID int64) ([]model.Friend, error) {
	var out []model.Friend
	if err := c.do(ctx, http.MethodGet, "/friends", callerID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendFriendRequest issues a pending friendship toward friendID.
func (c *Client) SendFriendRequest(ctx context.Context, callerID, friendID int64) error {
	return c.do(ctx, http.MethodPost, "/friends", callerID,
		map[string]any{"action": "send_request", "friend_id": friendID}, nil)
}

// AcceptFriendRequest confirms a request previously sent by friendID.
func (c *Client) AcceptFriendRequest(ctx context.Context, callerID, friendID int64) error {
	return c.do(ctx, http.MethodPost, "/friends", callerID,
		map[string]any{"action": "accept_request", "friend_id": friendID}, nil)
}

// CreatePrivateChat creates (or reuses) a private chat with friendID and
// returns its id.
func (c *Client) CreatePrivateChat(ctx context.Context, callerID, friendID int64, name string) (int64, error) {
	var out struct {
		Success bool  `json:"success"`
		ChatID  int64 `json:"chat_id"`
	}
	err := c.do(ctx, http.MethodPost, "/chats", callerID, map[string]any{
		"action":     "create_chat",
		"type":       "private",
		"name":       name,
		"member_ids": []int64{friendID},
	}, &out)
	return out.ChatID, err
}

// ChatSummary is one row of the caller's chat list.
type ChatSummary struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	UpdatedAt   time.Time `json:"updated_at"`
	MemberCount int       `json:"member_count"`
}

// ListChats fetches the caller's chats, newest activity first.
func (c *Client) ListChats(ctx context.Context, callerID int64) ([]ChatSummary, error) {
	var out []ChatSummary
	if err := c.do(ctx, http.MethodGet, "/chats", callerID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do runs one request. callerID 0 means no credential header. A non-2xx
// status with an {"error": ...} body becomes *errs.ServiceError.
func (c *Client) do(ctx context.Context, method, path string, callerID int64, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if callerID != 0 {
		req.Header.Set(callerHeader, strconv.FormatInt(callerID, 10))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &errs.ServiceError{Status: resp.StatusCode, Message: e.Error}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

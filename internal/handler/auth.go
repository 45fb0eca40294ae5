package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ugaemi/arena-server/internal/account"
	"github.com/ugaemi/arena-server/internal/store"
	"github.com/ugaemi/arena-server/internal/ws"
)

const (
	authTimeout       = 10 * time.Second
	storeTimeout      = 5 * time.Second
	maxNicknameLength = 16
)

var (
	errNicknameRequired = errors.New("nickname is required")
	errNicknameTooLong  = errors.New("nickname is too long")
)

// AuthHandler handles authentication messages.
type AuthHandler struct {
	store store.AccountStore
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(store store.AccountStore) *AuthHandler {
	return &AuthHandler{store: store}
}

type authenticateRequest struct {
	Method string `json:"method"`

	// Set to resume an existing guest account.
	AccountID string `json:"account_id,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
}

type authSuccessResponse struct {
	Success   bool   `json:"success"`
	AccountID string `json:"account_id"`
	Nickname  string `json:"nickname"`
}

type authFailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HandleAuthenticate processes an authentication request.
func (h *AuthHandler) HandleAuthenticate(client *ws.Client, msg ws.Message) {
	if client.Authenticated {
		client.SendMessage(ws.NewErrorMessage("already authenticated"))
		return
	}

	var req authenticateRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		h.sendFailure(client, "invalid auth data")
		return
	}

	switch req.Method {
	case "guest":
		h.handleGuest(client, req)
	default:
		h.sendFailure(client, "unknown auth method: "+req.Method)
	}
}

func (h *AuthHandler) handleGuest(client *ws.Client, req authenticateRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if req.AccountID != "" {
		h.resumeGuest(ctx, client, req)
		return
	}

	nickname, err := normalizeNickname(req.Nickname)
	if err != nil {
		h.sendFailure(client, err.Error())
		return
	}

	acc := account.NewGuestAccount(nickname)
	if err := h.store.Create(ctx, acc); err != nil {
		slog.Error("failed to create guest account", "error", err)
		h.sendFailure(client, "internal error")
		return
	}

	slog.Info("new guest account created", "account_id", acc.ID, "nickname", nickname)
	h.authenticateClient(client, acc)
}

func (h *AuthHandler) resumeGuest(ctx context.Context, client *ws.Client, req authenticateRequest) {
	acc, err := h.store.FindByID(ctx, req.AccountID)
	if err != nil {
		slog.Error("failed to find account", "error", err)
		h.sendFailure(client, "internal error")
		return
	}
	if acc == nil {
		h.sendFailure(client, "account not found")
		return
	}

	if req.Nickname != "" {
		nickname, err := normalizeNickname(req.Nickname)
		if err != nil {
			h.sendFailure(client, err.Error())
			return
		}
		if nickname != acc.Nickname {
			if err := h.store.UpdateNickname(ctx, acc.ID, nickname); err != nil {
				slog.Error("failed to update nickname", "account_id", acc.ID, "error", err)
				h.sendFailure(client, "internal error")
				return
			}
			acc.Nickname = nickname
		}
	}

	if err := h.store.UpdateLastLogin(ctx, acc.ID); err != nil {
		slog.Warn("failed to update last login", "account_id", acc.ID, "error", err)
	}
	h.authenticateClient(client, acc)
}

func (h *AuthHandler) authenticateClient(client *ws.Client, acc *account.Account) {
	client.AccountID = acc.ID
	client.Nickname = acc.Nickname
	client.Authenticated = true

	resp, _ := ws.NewMessage(ws.TypeAuthResult, authSuccessResponse{
		Success:   true,
		AccountID: acc.ID,
		Nickname:  acc.Nickname,
	})
	client.SendMessage(resp)

	slog.Info("client authenticated", "client", client.ID, "account_id", acc.ID)
}

func (h *AuthHandler) sendFailure(client *ws.Client, errMsg string) {
	resp, _ := ws.NewMessage(ws.TypeAuthResult, authFailureResponse{
		Success: false,
		Error:   errMsg,
	})
	client.SendMessage(resp)
}

// StartAuthTimeout closes the connection if the client doesn't authenticate in time.
func (h *AuthHandler) StartAuthTimeout(client *ws.Client) {
	time.AfterFunc(authTimeout, func() {
		if !client.Authenticated {
			slog.Info("auth timeout, closing connection", "client", client.ID)
			client.SendMessage(ws.NewErrorMessage("authentication timeout"))
			client.Close()
		}
	})
}

func normalizeNickname(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errNicknameRequired
	}
	if utf8.RuneCountInString(s) > maxNicknameLength {
		return "", errNicknameTooLong
	}
	return s, nil
}

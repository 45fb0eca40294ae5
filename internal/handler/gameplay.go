package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"

	"github.com/ugaemi/arena-server/internal/geom"
	"github.com/ugaemi/arena-server/internal/room"
	"github.com/ugaemi/arena-server/internal/ws"
)

// GameplayHandler handles in-game messages.
type GameplayHandler struct {
	rm *room.Manager
}

// NewGameplayHandler creates a new gameplay handler.
func NewGameplayHandler(rm *room.Manager) *GameplayHandler {
	return &GameplayHandler{rm: rm}
}

type aimReleaseRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HandleAimPress starts a direction pick for the host.
func (h *GameplayHandler) HandleAimPress(client *ws.Client, _ ws.Message) {
	r := h.findRoom(client)
	if r == nil {
		return
	}

	ok, err := r.PressAim(client.AccountID)
	if err != nil {
		sendInputError(client, err)
		return
	}
	if !ok {
		slog.Debug("aim press rejected", "room", r.Code, "account_id", client.AccountID)
	}
}

// HandleAimRelease finishes the pick toward the released arena point.
func (h *GameplayHandler) HandleAimRelease(client *ws.Client, msg ws.Message) {
	var req aimReleaseRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || !finite(req.X) || !finite(req.Y) {
		client.SendMessage(ws.NewErrorMessage("invalid aim data"))
		return
	}

	r := h.findRoom(client)
	if r == nil {
		return
	}

	ok, err := r.ReleaseAim(client.AccountID, geom.V(req.X, req.Y))
	if err != nil {
		sendInputError(client, err)
		return
	}
	if !ok {
		slog.Debug("aim release rejected", "room", r.Code, "account_id", client.AccountID, "x", req.X, "y", req.Y)
	}
}

func (h *GameplayHandler) findRoom(client *ws.Client) *room.Room {
	r := h.rm.FindRoomByMemberID(client.AccountID)
	if r == nil {
		client.SendMessage(ws.NewErrorMessage("not in a room"))
	}
	return r
}

func sendInputError(client *ws.Client, err error) {
	switch {
	case errors.Is(err, room.ErrNotPlaying):
		client.SendMessage(ws.NewErrorMessage("game is not in progress"))
	case errors.Is(err, room.ErrNotPlayer):
		client.SendMessage(ws.NewErrorMessage("spectators cannot control the player"))
	default:
		client.SendMessage(ws.NewErrorMessage(err.Error()))
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

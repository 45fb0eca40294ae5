package handler

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/ugaemi/arena-server/internal/game"
	"github.com/ugaemi/arena-server/internal/room"
	"github.com/ugaemi/arena-server/internal/ws"
)

// LobbyHandler handles lobby-related messages.
type LobbyHandler struct {
	rm      *room.Manager
	layouts LayoutSource

	// newRand seeds the random source of each new session.
	newRand func() game.Rand
}

// NewLobbyHandler creates a new lobby handler.
func NewLobbyHandler(rm *room.Manager, layouts LayoutSource) *LobbyHandler {
	return &LobbyHandler{
		rm:      rm,
		layouts: layouts,
		newRand: func() game.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

type roomJoinedResponse struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
}

// HandleCreateRoom creates a room hosted by the sender.
func (h *LobbyHandler) HandleCreateRoom(client *ws.Client, _ ws.Message) {
	if h.rm.FindRoomByMemberID(client.AccountID) != nil {
		client.SendMessage(ws.NewErrorMessage("already in a room"))
		return
	}

	r := h.rm.CreateRoom()
	if err := r.Join(client.AccountID, client.Nickname, client); err != nil {
		h.rm.RemoveRoom(r.Code)
		client.SendMessage(ws.NewErrorMessage(err.Error()))
		return
	}

	resp, _ := ws.NewMessage(ws.TypeCreateRoom, roomJoinedResponse{
		Code:     r.Code,
		PlayerID: client.AccountID,
	})
	client.SendMessage(resp)
	h.broadcastRoomInfo(r)

	slog.Info("player created room", "account_id", client.AccountID, "room", r.Code)
}

type joinRoomRequest struct {
	Code string `json:"code"`
}

// HandleJoinRoom adds the sender to an existing room as a spectator. Joining
// a running game sends the current snapshot right away.
func (h *LobbyHandler) HandleJoinRoom(client *ws.Client, msg ws.Message) {
	var req joinRoomRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || strings.TrimSpace(req.Code) == "" {
		client.SendMessage(ws.NewErrorMessage("code is required"))
		return
	}

	r := h.rm.GetRoom(strings.ToUpper(strings.TrimSpace(req.Code)))
	if r == nil {
		client.SendMessage(ws.NewErrorMessage("room not found"))
		return
	}
	if h.rm.FindRoomByMemberID(client.AccountID) != nil {
		client.SendMessage(ws.NewErrorMessage("already in a room"))
		return
	}

	if err := r.Join(client.AccountID, client.Nickname, client); err != nil {
		client.SendMessage(ws.NewErrorMessage(err.Error()))
		return
	}

	resp, _ := ws.NewMessage(ws.TypeJoinRoom, roomJoinedResponse{
		Code:     r.Code,
		PlayerID: client.AccountID,
	})
	client.SendMessage(resp)
	h.broadcastRoomInfo(r)

	if r.CurrentState() == game.StatePlaying {
		start, _ := ws.NewMessage(ws.TypeGameStart, gameStartResponse{
			Layout:   r.Layout(),
			Snapshot: r.Snapshot(),
		})
		r.SendToMember(client.AccountID, start)
	}

	slog.Info("player joined room", "account_id", client.AccountID, "room", r.Code)
}

type gameStartResponse struct {
	Layout   string        `json:"layout"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// HandleStartGame starts a game on the current layout. Only the host may start it.
func (h *LobbyHandler) HandleStartGame(client *ws.Client, _ ws.Message) {
	r := h.rm.FindRoomByMemberID(client.AccountID)
	if r == nil {
		client.SendMessage(ws.NewErrorMessage("not in a room"))
		return
	}
	if !r.IsHost(client.AccountID) {
		client.SendMessage(ws.NewErrorMessage("only the host can start the game"))
		return
	}

	cfg := h.layouts.SessionConfig()
	if err := r.PrepareGame(cfg, h.newRand()); err != nil {
		slog.Warn("failed to start game", "room", r.Code, "error", err)
		client.SendMessage(ws.NewErrorMessage(err.Error()))
		return
	}

	// Broadcast game_start before starting the loop
	startMsg, _ := ws.NewMessage(ws.TypeGameStart, gameStartResponse{
		Layout:   cfg.Name,
		Snapshot: r.Snapshot(),
	})
	r.BroadcastMessage(startMsg)
	h.broadcastRoomInfo(r)
	r.StartGameLoop()

	slog.Info("game starting", "room", r.Code, "layout", cfg.Name)
}

// HandleReturnToLobby moves an ended room back to waiting.
func (h *LobbyHandler) HandleReturnToLobby(client *ws.Client, _ ws.Message) {
	r := h.rm.FindRoomByMemberID(client.AccountID)
	if r == nil {
		client.SendMessage(ws.NewErrorMessage("not in a room"))
		return
	}
	if !r.IsHost(client.AccountID) {
		client.SendMessage(ws.NewErrorMessage("only the host can return to lobby"))
		return
	}
	if err := r.Reset(); err != nil {
		client.SendMessage(ws.NewErrorMessage(err.Error()))
		return
	}
	h.broadcastRoomInfo(r)

	slog.Info("room returned to lobby", "room", r.Code)
}

// HandleLeaveRoom handles a member leaving a room.
func (h *LobbyHandler) HandleLeaveRoom(client *ws.Client, _ ws.Message) {
	h.removeMember(client)
}

// HandleDisconnect handles client disconnection.
func (h *LobbyHandler) HandleDisconnect(client *ws.Client) {
	h.removeMember(client)
}

// removeMember takes the client out of its room. A host leaving mid-game
// ends the game first so the run is still recorded. Only the connection bound
// to the membership can remove it.
func (h *LobbyHandler) removeMember(client *ws.Client) {
	id := client.AccountID
	if id == "" {
		return
	}

	r := h.rm.FindRoomByMemberID(id)
	if r == nil || r.MemberClient(id) != client {
		return
	}

	if r.IsHost(id) && r.CurrentState() == game.StatePlaying {
		r.StopGame(room.ReasonLeft)
	}
	r.Leave(id)

	if r.IsEmpty() {
		h.rm.RemoveRoom(r.Code)
	} else {
		h.broadcastRoomInfo(r)
	}
	slog.Info("player left", "account_id", id, "room", r.Code)
}

func (h *LobbyHandler) broadcastRoomInfo(r *room.Room) {
	resp, _ := ws.NewMessage(ws.TypeRoomInfo, r.Info())
	r.BroadcastMessage(resp)
}

package handler

import (
	"log/slog"

	"github.com/ugaemi/arena-server/internal/game"
	"github.com/ugaemi/arena-server/internal/room"
	"github.com/ugaemi/arena-server/internal/store"
	"github.com/ugaemi/arena-server/internal/ws"
)

// LayoutSource supplies the layout each new game is built from.
// *catalog.Catalog satisfies it.
type LayoutSource interface {
	SessionConfig() game.SessionConfig
}

// Router dispatches incoming messages to the appropriate handler.
type Router struct {
	authH    *AuthHandler
	lobby    *LobbyHandler
	gameplay *GameplayHandler
	runs     *RunRecorder
}

// NewRouter creates a new message router.
func NewRouter(rm *room.Manager, st store.Store, layouts LayoutSource) *Router {
	return &Router{
		authH:    NewAuthHandler(st),
		lobby:    NewLobbyHandler(rm, layouts),
		gameplay: NewGameplayHandler(rm),
		runs:     NewRunRecorder(st),
	}
}

// HandleMessage parses and routes an incoming client message.
func (r *Router) HandleMessage(cm *ws.ClientMessage) {
	msg, err := cm.Decode()
	if err != nil {
		slog.Warn("invalid message format", "client", cm.Client.ID, "error", err)
		cm.Client.SendMessage(ws.NewErrorMessage("invalid message format"))
		return
	}

	// Auth messages are always allowed
	if msg.Type == ws.TypeAuthenticate {
		r.authH.HandleAuthenticate(cm.Client, msg)
		return
	}

	// Auth guard: block unauthenticated clients
	if !cm.Client.Authenticated {
		cm.Client.SendMessage(ws.NewErrorMessage("authentication required"))
		return
	}

	switch msg.Type {
	// Lobby messages
	case ws.TypeCreateRoom:
		r.lobby.HandleCreateRoom(cm.Client, msg)
	case ws.TypeJoinRoom:
		r.lobby.HandleJoinRoom(cm.Client, msg)
	case ws.TypeLeaveRoom:
		r.lobby.HandleLeaveRoom(cm.Client, msg)
	case ws.TypeStartGame:
		r.lobby.HandleStartGame(cm.Client, msg)
	case ws.TypeReturnToLobby:
		r.lobby.HandleReturnToLobby(cm.Client, msg)

	// Gameplay messages
	case ws.TypeAimPress:
		r.gameplay.HandleAimPress(cm.Client, msg)
	case ws.TypeAimRelease:
		r.gameplay.HandleAimRelease(cm.Client, msg)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", cm.Client.ID)
		cm.Client.SendMessage(ws.NewErrorMessage("unknown message type: " + msg.Type))
	}
}

// HandleDisconnect handles client disconnection.
func (r *Router) HandleDisconnect(client *ws.Client) {
	r.lobby.HandleDisconnect(client)
}

// StartAuthTimeout starts the authentication timeout for a new client.
func (r *Router) StartAuthTimeout(client *ws.Client) {
	r.authH.StartAuthTimeout(client)
}

// RecordRun stores a finished game. Install it as room.Manager.OnGameOver.
func (r *Router) RecordRun(res room.GameResult) {
	r.runs.Record(res)
}

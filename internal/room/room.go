package room

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ugaemi/arena-server/internal/game"
	"github.com/ugaemi/arena-server/internal/geom"
	"github.com/ugaemi/arena-server/internal/ws"
)

var (
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("already in room")
	ErrNotWaiting    = errors.New("game already started")
	ErrNotPlaying    = errors.New("game is not in progress")
	ErrNotEnded      = errors.New("game has not ended")
	ErrNotPlayer     = errors.New("only the player can do that")
)

// Reasons a game ends.
const (
	ReasonDied     = "died"
	ReasonLeft     = "left"
	ReasonShutdown = "shutdown"
)

// Member is someone in the room: the host plays, everyone else spectates.
type Member struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`

	client *ws.Client
}

// GameResult is handed to OnGameOver once per finished game.
type GameResult struct {
	Room      string
	Layout    string
	AccountID string
	Nickname  string
	Reason    string
	Result    game.Result
}

// Room holds one arena run: the host who plays it and the spectators watching.
type Room struct {
	Code   string         `json:"code"`
	State  game.RoomState `json:"state"`
	HostID string         `json:"host_id"`

	members map[string]*Member
	order   []string // join order, used to pick the next host

	session *game.Session
	layout  string

	// OnGameOver receives the result when a game stops. It runs outside the room lock.
	OnGameOver func(GameResult)

	// Game loop control
	stopCh     chan struct{}
	resetTimer *time.Timer

	mu sync.RWMutex
}

// NewRoom creates a new room with the given code.
func NewRoom(code string) *Room {
	return &Room{
		Code:    code,
		State:   game.StateWaiting,
		members: make(map[string]*Member),
	}
}

// Join adds a member. The first member becomes the host; later ones spectate.
func (r *Room) Join(id, nickname string, client *ws.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; ok {
		return ErrAlreadyInRoom
	}
	if len(r.members) > game.MaxSpectators {
		return ErrRoomFull
	}

	r.members[id] = &Member{ID: id, Nickname: nickname, client: client}
	r.order = append(r.order, id)
	if r.HostID == "" {
		r.HostID = id
	}
	return nil
}

// Leave removes a member and reports whether it was the host. The longest
// waiting spectator becomes the new host.
func (r *Room) Leave(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	for i, mid := range r.order {
		if mid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if r.HostID != id {
		return false
	}
	r.HostID = ""
	if len(r.order) > 0 {
		r.HostID = r.order[0]
	}
	return true
}

// Has reports whether id is in the room.
func (r *Room) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[id]
	return ok
}

// MemberClient returns the connection bound to a member, or nil.
func (r *Room) MemberClient(id string) *ws.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.members[id]; ok {
		return m.client
	}
	return nil
}

// IsHost reports whether id is the playing member.
func (r *Room) IsHost(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return id != "" && r.HostID == id
}

// MemberCount returns the number of members, host included.
func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// IsEmpty returns true if the room has no members.
func (r *Room) IsEmpty() bool {
	return r.MemberCount() == 0
}

// CurrentState returns the room state.
func (r *Room) CurrentState() game.RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.State
}

// Info is the room_info payload.
type Info struct {
	Code       string    `json:"code"`
	State      string    `json:"state"`
	HostID     string    `json:"host_id"`
	Host       *Member   `json:"host,omitempty"`
	Spectators []*Member `json:"spectators"`
}

// Info returns the room as clients see it.
func (r *Room) Info() Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info := Info{Code: r.Code, State: r.State.String(), HostID: r.HostID, Spectators: []*Member{}}
	for _, id := range r.order {
		m := r.members[id]
		if id == r.HostID {
			info.Host = m
			continue
		}
		info.Spectators = append(info.Spectators, m)
	}
	return info
}

// BroadcastMessage sends a message to every member.
func (r *Room) BroadcastMessage(msg ws.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.client != nil {
			m.client.SendMessage(msg)
		}
	}
}

// broadcastTyped sends a payload to every member in their own encoding.
func (r *Room) broadcastTyped(msgType string, payload any) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.client != nil {
			m.client.SendTyped(msgType, payload)
		}
	}
}

// SendToMember sends a message to a specific member.
func (r *Room) SendToMember(id string, msg ws.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.members[id]; ok && m.client != nil {
		m.client.SendMessage(msg)
	}
}

// PrepareGame builds a fresh session for the host and switches to playing.
// Must be called before broadcasting game_start so clients receive the first snapshot.
func (r *Room) PrepareGame(cfg game.SessionConfig, rnd game.Rand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.State != game.StateWaiting {
		return ErrNotWaiting
	}
	host, ok := r.members[r.HostID]
	if !ok {
		return ErrNotPlayer
	}

	player := game.NewPlayer(host.Nickname)
	player.ID = host.ID
	session, err := game.NewSession(cfg, player, rnd)
	if err != nil {
		return err
	}

	r.session = session
	r.layout = cfg.Name
	r.State = game.StatePlaying
	r.stopCh = make(chan struct{})

	slog.Info("game prepared", "room", r.Code, "player", host.ID, "templates", len(cfg.Enemies), "spawn_points", len(cfg.SpawnPoints))
	return nil
}

// Snapshot returns the current session view. It is the zero Snapshot before the first game.
func (r *Room) Snapshot() game.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.session == nil {
		return game.Snapshot{}
	}
	return r.session.Snapshot()
}

// StartGameLoop starts the game tick loop. Must be called after PrepareGame and broadcasting game_start.
func (r *Room) StartGameLoop() {
	r.mu.RLock()
	stopCh := r.stopCh
	r.mu.RUnlock()
	go r.gameLoop(stopCh)
}

// PressAim forwards the host's aim press. It returns false when the gesture was rejected.
func (r *Room) PressAim(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkInput(id); err != nil {
		return false, err
	}
	return r.session.Player.PressAim(), nil
}

// ReleaseAim forwards the host's aim release at point.
func (r *Room) ReleaseAim(id string, point geom.Vec) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkInput(id); err != nil {
		return false, err
	}
	return r.session.Player.ReleaseAim(point), nil
}

// checkInput validates gameplay input. Caller must hold r.mu.
func (r *Room) checkInput(id string) error {
	if r.State != game.StatePlaying || r.session == nil {
		return ErrNotPlaying
	}
	if id != r.HostID {
		return ErrNotPlayer
	}
	return nil
}

// StopGame stops the game loop and transitions to ended state. Calling it
// again, or when no game is running, does nothing.
func (r *Room) StopGame(reason string) {
	r.mu.Lock()

	if r.State != game.StatePlaying {
		r.mu.Unlock()
		return
	}

	r.State = game.StateEnded

	// Signal the game loop to stop
	select {
	case <-r.stopCh:
		// Already closed
	default:
		close(r.stopCh)
	}

	res := GameResult{Room: r.Code, Layout: r.layout, Reason: reason, Result: r.session.Result()}
	res.AccountID = r.session.Player.ID
	res.Nickname = r.session.Player.Nickname
	onGameOver := r.OnGameOver
	if reason != ReasonShutdown {
		r.resetTimer = time.AfterFunc(game.ResetDelay, r.autoReset)
	}

	r.mu.Unlock()

	msg, _ := ws.NewMessage(ws.TypeGameOver, gameOverMessage{
		Reason:      reason,
		Kills:       res.Result.Kills,
		Survived:    res.Result.Survived,
		Dashes:      res.Result.Dashes,
		DamageDealt: res.Result.DamageDealt,
	})
	r.BroadcastMessage(msg)

	slog.Info("game ended", "room", r.Code, "reason", reason, "kills", res.Result.Kills, "survived", res.Result.Survived)

	if onGameOver != nil {
		onGameOver(res)
	}
}

// Reset returns an ended room to waiting so the host can play again.
func (r *Room) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.State != game.StateEnded {
		return ErrNotEnded
	}
	if r.resetTimer != nil {
		r.resetTimer.Stop()
		r.resetTimer = nil
	}
	r.State = game.StateWaiting
	r.session = nil
	return nil
}

// autoReset returns the room to waiting ResetDelay after a game ends, unless
// the host already did.
func (r *Room) autoReset() {
	if err := r.Reset(); err != nil {
		return
	}
	msg, _ := ws.NewMessage(ws.TypeRoomInfo, r.Info())
	r.BroadcastMessage(msg)
	slog.Info("room returned to lobby", "room", r.Code)
}

// Layout returns the name of the layout the current or last game was played on.
func (r *Room) Layout() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.layout
}

type gameOverMessage struct {
	Reason      string  `json:"reason"`
	Kills       int     `json:"kills"`
	Survived    float64 `json:"survived"`
	Dashes      int     `json:"dashes"`
	DamageDealt int     `json:"damage_dealt"`
}

type gameEventMessage struct {
	Tick   uint64       `json:"tick"`
	Events []game.Event `json:"events"`
}

// gameLoop runs the game tick loop at TickRate frequency.
func (r *Room) gameLoop(stopCh chan struct{}) {
	ticker := time.NewTicker(game.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if r.tick(game.TickInterval.Seconds()) {
				r.StopGame(ReasonDied)
				return
			}
		}
	}
}

// tick advances the session by dt, broadcasts the result and reports whether
// the session is over.
func (r *Room) tick(dt float64) bool {
	r.mu.Lock()
	if r.State != game.StatePlaying || r.session == nil {
		r.mu.Unlock()
		return false
	}
	events := r.session.Step(dt)
	snap := r.session.Snapshot()
	over := r.session.Over
	r.mu.Unlock()

	r.broadcastTyped(ws.TypeGameState, snap)
	if len(events) > 0 {
		slog.Debug("tick events", "room", r.Code, "tick", snap.Tick, "events", len(events))
		r.broadcastTyped(ws.TypeGameEvent, gameEventMessage{Tick: snap.Tick, Events: events})
	}
	return over
}

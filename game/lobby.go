package game

import (
	"context"
	"time"

	"adedonha/logger"

	"github.com/google/uuid"
)

// RoomDescription is the lobby's cached view of a room, pushed by the room
// actor whenever membership or phase changes.
type RoomDescription struct {
	Id          string
	Name        string
	Theme       string
	Mode        string
	Players     int
	MaxPlayers  int
	HasPassword bool
	Waiting     bool
}

type roomListing struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Theme       string `json:"theme"`
	Mode        string `json:"mode"`
	Players     int    `json:"playerCount"`
	MaxPlayers  int    `json:"capacity"`
	HasPassword bool   `json:"hasPassword"`
}

func (d RoomDescription) listing() roomListing {
	return roomListing{
		Id:          d.Id,
		Name:        d.Name,
		Theme:       d.Theme,
		Mode:        d.Mode,
		Players:     d.Players,
		MaxPlayers:  d.MaxPlayers,
		HasPassword: d.HasPassword,
	}
}

type createRoomRequest struct {
	host     *Player
	cfg      RoomConfig
	respChan chan *Room
}

type joinRoomRequest struct {
	roomId   string
	password string
	player   *Player
	errChan  chan error
}

// Lobby is the directory actor: it owns the room registry and description
// cache, forwards joins, and fans the shared 1s/30s tickers out to every
// room. All of its state is touched only on the Run goroutine.
type Lobby struct {
	rooms        map[string]*Room
	descriptions map[string]RoomDescription

	createReqs     chan createRoomRequest
	joinReqs       chan joinRoomRequest
	listReqs       chan chan []RoomDescription
	descUpdates    chan RoomDescription
	removeRoomChan chan string

	registry      UserRegistry
	tickerCreator PeriodicTickerChannelCreator
}

func NewLobby(registry UserRegistry, tickerCreator PeriodicTickerChannelCreator) *Lobby {
	return &Lobby{
		rooms:          map[string]*Room{},
		descriptions:   map[string]RoomDescription{},
		createReqs:     make(chan createRoomRequest),
		joinReqs:       make(chan joinRoomRequest, 64),
		listReqs:       make(chan chan []RoomDescription, 64),
		descUpdates:    make(chan RoomDescription, 256),
		removeRoomChan: make(chan string, 32),
		registry:       registry,
		tickerCreator:  tickerCreator,
	}
}

func (l *Lobby) Run(started chan struct{}) {
	ticker := l.tickerCreator.Create(time.Second)
	pingTicker := l.tickerCreator.Create(time.Second * 30)

	close(started)

	for {
		select {
		case now := <-ticker:
			for _, r := range l.rooms {
				r.Tick(now)
			}
		case <-pingTicker:
			for _, r := range l.rooms {
				r.PingPlayers()
			}
		case req := <-l.createReqs:
			l.handleCreateRoom(req)
		case req := <-l.joinReqs:
			l.handleJoinRoom(req)
		case respChan := <-l.listReqs:
			l.handleListRooms(respChan)
		case desc := <-l.descUpdates:
			if _, ok := l.rooms[desc.Id]; ok {
				l.descriptions[desc.Id] = desc
			}
		case id := <-l.removeRoomChan:
			delete(l.rooms, id)
			delete(l.descriptions, id)
			logger.Infof("[Lobby] room %s removed, %d remaining", id, len(l.rooms))
		}
	}
}

// CreateRoom registers a new room with the requester as host and first
// player, and starts its actor. Blocks until the lobby has processed the
// request; returns nil only when ctx is done first.
func (l *Lobby) CreateRoom(ctx context.Context, host *Player, cfg RoomConfig) *Room {
	req := createRoomRequest{host: host, cfg: cfg, respChan: make(chan *Room, 1)}
	select {
	case l.createReqs <- req:
	case <-ctx.Done():
		return nil
	}
	select {
	case room := <-req.respChan:
		return room
	case <-ctx.Done():
		return nil
	}
}

// JoinRoom forwards a join to the owning room actor and waits for its
// verdict. The room replies in validation order: existence is checked here,
// then phase, password and capacity by the room.
func (l *Lobby) JoinRoom(ctx context.Context, roomId, password string, player *Player) error {
	req := joinRoomRequest{roomId: roomId, password: password, player: player, errChan: make(chan error, 1)}
	select {
	case l.joinReqs <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitingRooms returns every room still in the waiting phase, password
// protected ones included (they carry a HasPassword flag). Callers building
// the public listing filter those out.
func (l *Lobby) WaitingRooms(ctx context.Context) []RoomDescription {
	respChan := make(chan []RoomDescription, 1)
	select {
	case l.listReqs <- respChan:
	case <-ctx.Done():
		return nil
	}
	select {
	case resp := <-respChan:
		return resp
	case <-ctx.Done():
		return nil
	}
}

// UpdateDescription is called by room actors; never blocks.
func (l *Lobby) UpdateDescription(desc RoomDescription) {
	select {
	case l.descUpdates <- desc:
	default:
	}
}

// RemoveRoom is called by a room actor as its final act.
func (l *Lobby) RemoveRoom(id string) {
	l.removeRoomChan <- id
}

func (l *Lobby) handleCreateRoom(req createRoomRequest) {
	id := uuid.NewString()[:8]
	room := NewRoom(id, req.host, req.cfg, l, l.registry)
	req.host.setRoom(room)

	l.rooms[id] = room
	l.descriptions[id] = room.description()
	go room.GameLoop()

	logger.Infof("[Lobby] room %s (%s, mode %s) created by %s", id, req.cfg.Name, req.cfg.Mode, req.host.Username())
	req.respChan <- room
}

func (l *Lobby) handleJoinRoom(req joinRoomRequest) {
	room, ok := l.rooms[req.roomId]
	if !ok {
		req.errChan <- ErrRoomNotFound
		return
	}
	room.RequestJoin(req)
}

func (l *Lobby) handleListRooms(respChan chan []RoomDescription) {
	list := make([]RoomDescription, 0, len(l.descriptions))
	for _, desc := range l.descriptions {
		if desc.Waiting {
			list = append(list, desc)
		}
	}
	respChan <- list
}

type tickerGen struct{}

func (tickerGen) Create(duration time.Duration) <-chan time.Time {
	return time.NewTicker(duration).C
}

func NewTickerGen() PeriodicTickerChannelCreator {
	return tickerGen{}
}

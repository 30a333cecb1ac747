package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"adedonha/logger"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Player is one websocket connection's session. Identity (userId, name) is
// set by the read pump before any room sees the player; score and answers
// are owned by the room actor after a join.
type Player struct {
	id      string
	userId  string
	name    string
	score   int
	answers map[string]string

	session  NetworkSession
	limiter  *rate.Limiter
	lobby    *Lobby
	registry UserRegistry

	room atomic.Pointer[Room]

	sendLocker sync.Mutex
	closed     bool
	inbox      chan []byte
	pingChan   chan struct{}
}

func NewPlayer(session NetworkSession, lobby *Lobby, registry UserRegistry) *Player {
	return &Player{
		id:       uuid.NewString(),
		name:     "Player",
		answers:  map[string]string{},
		session:  session,
		limiter:  rate.NewLimiter(4, 8),
		lobby:    lobby,
		registry: registry,
		inbox:    make(chan []byte, 256),
		pingChan: make(chan struct{}, 1),
	}
}

func (p *Player) Id() string       { return p.id }
func (p *Player) UserId() string   { return p.userId }
func (p *Player) Username() string { return p.name }

func (p *Player) info() PlayerInfo {
	return PlayerInfo{SocketId: p.id, UserId: p.userId, Name: p.name, Score: p.score}
}

func (p *Player) setRoom(r *Room)   { p.room.Store(r) }
func (p *Player) clearRoom()        { p.room.Store(nil) }
func (p *Player) currentRoom() *Room { return p.room.Load() }

// Send queues a frame for the write pump. Never blocks: a slow consumer
// drops frames instead of stalling a room actor.
func (p *Player) Send(data []byte) {
	p.sendLocker.Lock()
	defer p.sendLocker.Unlock()
	if p.closed {
		return
	}
	select {
	case p.inbox <- data:
	default:
		logger.Warningf("[Player %s] outbox full, dropping frame", p.id)
	}
}

func (p *Player) SendError(reason string) {
	p.Send(ServerPacket(TypeRoomError, map[string]string{"reason": reason}))
}

func (p *Player) Ping() {
	p.sendLocker.Lock()
	defer p.sendLocker.Unlock()
	if p.closed {
		return
	}
	select {
	case p.pingChan <- struct{}{}:
	default:
	}
}

// release shuts the outbound side down. Safe to call more than once; close
// and send share the same lock so the pumps can never race a closed channel.
func (p *Player) release() {
	p.sendLocker.Lock()
	defer p.sendLocker.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
	close(p.pingChan)
}

func (p *Player) ReadPump() {
	defer func() {
		if room := p.currentRoom(); room != nil {
			room.RequestRemove(p)
		} else {
			p.release()
		}
	}()

	for {
		data, err := p.session.Read()
		if err != nil {
			return
		}
		if !p.limiter.Allow() {
			continue
		}

		pkt, err := DecodeClientPacket(data)
		if err != nil {
			p.SendError(reasonInvalidMessage)
			continue
		}
		p.dispatch(pkt)
	}
}

func (p *Player) WritePump() {
	defer p.session.Close("")

	for {
		select {
		case data, ok := <-p.inbox:
			if !ok {
				return
			}
			if err := p.session.Write(data); err != nil {
				return
			}
		case _, ok := <-p.pingChan:
			if !ok {
				return
			}
			if err := p.session.Ping(); err != nil {
				return
			}
		}
	}
}

// dispatch routes one decoded packet. Lobby-stage packets are handled on the
// read pump goroutine (the registry is safe for that); everything else is
// forwarded to the room actor that owns the state it touches.
func (p *Player) dispatch(pkt ClientPacket) {
	if room := p.currentRoom(); room != nil {
		switch pkt.Type {
		case TypeIdentify, TypeRoomCreate, TypeRoomJoin:
			p.SendError(reasonAlreadyInRoom)
		case TypeRoomList:
			p.handleList()
		default:
			room.Send(ClientPacketEnvelope{packet: pkt, from: p})
		}
		return
	}

	switch pkt.Type {
	case TypeIdentify:
		p.handleIdentify(pkt)
	case TypeRoomCreate:
		p.handleCreate(pkt)
	case TypeRoomJoin:
		p.handleJoin(pkt)
	case TypeRoomList:
		p.handleList()
	default:
		p.SendError(reasonNotInRoom)
	}
}

func (p *Player) handleIdentify(pkt ClientPacket) {
	payload := IdentifyPayload{}
	if err := pkt.DecodeInto(&payload); err != nil {
		p.SendError(reasonInvalidMessage)
		return
	}
	if payload.UserId == "" {
		payload.UserId = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	user, err := p.registry.GetOrCreate(ctx, payload.UserId, payload.Name)
	if err != nil {
		logger.Criticalf("[Player %s] identify failed: %v", p.id, err)
		p.SendError(reasonInvalidMessage)
		return
	}

	p.userId = user.Id
	p.name = user.Name
	p.Send(ServerPacket(TypeIdentifyAck, user))
}

// ensureIdentity backfills an anonymous identity for players who create or
// join a room without identifying first, as the original server did.
func (p *Player) ensureIdentity() error {
	if p.userId != "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	user, err := p.registry.GetOrCreate(ctx, uuid.NewString(), p.name)
	if err != nil {
		return err
	}
	p.userId = user.Id
	p.name = user.Name
	return nil
}

func (p *Player) handleCreate(pkt ClientPacket) {
	payload := RoomCreatePayload{}
	if err := pkt.DecodeInto(&payload); err != nil {
		p.SendError(reasonInvalidMessage)
		return
	}
	if err := p.ensureIdentity(); err != nil {
		logger.Criticalf("[Player %s] identity backfill failed: %v", p.id, err)
		p.SendError(reasonInvalidMessage)
		return
	}

	room := p.lobby.CreateRoom(context.Background(), p, NormalizeRoomConfig(payload))
	if room == nil {
		p.SendError(reasonInvalidMessage)
	}
}

func (p *Player) handleJoin(pkt ClientPacket) {
	payload := RoomJoinPayload{}
	if err := pkt.DecodeInto(&payload); err != nil || payload.RoomId == "" {
		p.SendError(reasonInvalidMessage)
		return
	}
	if err := p.ensureIdentity(); err != nil {
		logger.Criticalf("[Player %s] identity backfill failed: %v", p.id, err)
		p.SendError(reasonInvalidMessage)
		return
	}

	if err := p.lobby.JoinRoom(context.Background(), payload.RoomId, payload.Password, p); err != nil {
		p.SendError(err.Error())
	}
}

func (p *Player) handleList() {
	rooms := p.lobby.WaitingRooms(context.Background())
	listing := make([]roomListing, 0, len(rooms))
	for _, desc := range rooms {
		listing = append(listing, desc.listing())
	}
	p.Send(ServerPacket(TypeRoomListing, map[string]any{"rooms": listing}))
}

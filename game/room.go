package game

import (
	"time"

	"adedonha/logger"
)

type RoomPhase int

const (
	PHASE_WAITING RoomPhase = iota // Players gathering before the host starts.
	PHASE_CHOOSING_LETTER          // Chooser-rotation mode: waiting for the designated player's letter.
	PHASE_ACTIVE                   // Round counting down, answers being collected.
	PHASE_REVEAL                   // Results shown; next round or finish after a fixed delay.
)

// revealDelaySeconds gates the transition out of PHASE_REVEAL.
const revealDelaySeconds = 8

type ClientPacketEnvelope struct {
	packet ClientPacket
	from   *Player
}

// Room is one isolated game session. Every field below is owned by the
// GameLoop goroutine; the only entry points from outside are the channels.
//
// players keeps stable join order on purpose: host transfer and the chooser
// rotation are defined against it.
type Room struct {
	id       string
	name     string
	password string
	theme    string
	mode     string

	categories    []string
	maxRounds     int
	maxPlayers    int
	roundDuration int

	hostId    string
	phase     RoomPhase
	round     int
	letter    string
	chooserId string

	players    []*Player
	spectators []*Player
	eliminated []RankedPlayer

	roundTimer  countdown
	revealTimer countdown

	letters  LetterDrawer
	parent   RoomParent
	registry UserRegistry
	finished bool

	inbox           chan ClientPacketEnvelope
	joinRequests    chan joinRoomRequest
	removalRequests chan *Player
	ticks           chan time.Time
	pingRequests    chan struct{}

	createdAt time.Time
}

func NewRoom(id string, host *Player, cfg RoomConfig, parent RoomParent, registry UserRegistry) *Room {
	room := &Room{
		id:              id,
		name:            cfg.Name,
		password:        cfg.Password,
		theme:           cfg.Theme,
		mode:            cfg.Mode,
		categories:      cfg.Categories,
		maxRounds:       cfg.MaxRounds,
		maxPlayers:      cfg.MaxPlayers,
		roundDuration:   cfg.RoundDuration,
		hostId:          host.UserId(),
		phase:           PHASE_WAITING,
		players:         make([]*Player, 0, cfg.MaxPlayers),
		letters:         randomLetterDrawer{},
		parent:          parent,
		registry:        registry,
		inbox:           make(chan ClientPacketEnvelope, 256),
		joinRequests:    make(chan joinRoomRequest, 16),
		removalRequests: make(chan *Player, 64),
		ticks:           make(chan time.Time, 8),
		pingRequests:    make(chan struct{}, 1),
		createdAt:       time.Now(),
	}
	// Same reset the join path applies: a returning session must not carry a
	// previous game's score into a fresh room.
	host.score = 0
	host.answers = map[string]string{}
	room.players = append(room.players, host)
	return room
}

// --- channel entry points (any goroutine) ---

func (r *Room) Send(env ClientPacketEnvelope) {
	select {
	case r.inbox <- env:
	default:
		logger.Warningf("[Room %s] inbox full, dropping %s", r.id, env.packet.Type)
	}
}

func (r *Room) RequestJoin(req joinRoomRequest) {
	select {
	case r.joinRequests <- req:
	default:
		req.errChan <- ErrRoomNotFound
	}
}

func (r *Room) RequestRemove(p *Player) {
	select {
	case r.removalRequests <- p:
	default:
	}
}

func (r *Room) Tick(now time.Time) {
	select {
	case r.ticks <- now:
	default:
	}
}

func (r *Room) PingPlayers() {
	select {
	case r.pingRequests <- struct{}{}:
	default:
	}
}

// --- actor ---

func (r *Room) GameLoop() {
	logger.Infof("[Room %s] actor started, host %s", r.id, r.hostId)
	r.sendJoined(r.players[0])
	r.broadcastPlayers()

	for !r.done() {
		select {
		case env := <-r.inbox:
			r.safely(func() { r.dispatch(env) })
		case req := <-r.joinRequests:
			r.safely(func() { r.handleJoin(req) })
		case p := <-r.removalRequests:
			r.safely(func() { r.removePlayer(p) })
		case <-r.ticks:
			r.safely(func() { r.handleTick() })
		case <-r.pingRequests:
			r.pingAll()
		}
	}

	r.shutdown()
}

// done keeps the room alive while spectators remain: a survival round can
// eliminate every player at once, and the reveal still owes them the finale.
func (r *Room) done() bool {
	return r.finished || (len(r.players) == 0 && len(r.spectators) == 0)
}

// safely fences one event: a panic is logged and tears down this room only,
// never the process or another room.
func (r *Room) safely(handler func()) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Criticalf("[Room %s] recovered from panic, tearing room down: %v", r.id, rec)
			r.finished = true
		}
	}()
	handler()
}

func (r *Room) shutdown() {
	r.roundTimer.Cancel()
	r.revealTimer.Cancel()

	// Remaining connections go back to the lobby stage; only the room dies.
	for _, p := range r.players {
		p.clearRoom()
	}
	for _, p := range r.spectators {
		p.clearRoom()
	}
	r.players = nil
	r.spectators = nil

	for {
		select {
		case req := <-r.joinRequests:
			req.errChan <- ErrRoomNotFound
		default:
			r.parent.RemoveRoom(r.id)
			logger.Infof("[Room %s] destroyed", r.id)
			return
		}
	}
}

func (r *Room) dispatch(env ClientPacketEnvelope) {
	switch env.packet.Type {
	case TypeRoomStart:
		r.handleStart(env.from)
	case TypeChooseLetter:
		payload := ChooseLetterPayload{}
		if err := env.packet.DecodeInto(&payload); err != nil {
			env.from.SendError(reasonInvalidMessage)
			return
		}
		r.handleChooseLetter(env.from, payload)
	case TypeSubmitAnswers:
		payload := SubmitAnswersPayload{}
		if err := env.packet.DecodeInto(&payload); err != nil {
			env.from.SendError(reasonInvalidMessage)
			return
		}
		r.handleSubmitAnswers(env.from, payload)
	case TypeRoundStop:
		r.handleStop(env.from)
	default:
		env.from.SendError(reasonInvalidMessage)
	}
}

// --- membership ---

// handleJoin validates in contract order: phase, password, capacity.
// Existence was already the lobby's check.
func (r *Room) handleJoin(req joinRoomRequest) {
	if r.phase != PHASE_WAITING {
		req.errChan <- ErrGameStarted
		return
	}
	if r.password != "" && req.password != r.password {
		req.errChan <- ErrWrongPassword
		return
	}
	if len(r.players) >= r.maxPlayers {
		req.errChan <- ErrRoomFull
		return
	}

	player := req.player
	player.score = 0
	player.answers = map[string]string{}
	r.players = append(r.players, player)
	player.setRoom(r)
	req.errChan <- nil

	logger.Infof("[Room %s] %s joined (%d/%d)", r.id, player.Username(), len(r.players), r.maxPlayers)
	r.sendJoined(player)
	r.broadcastPlayers()
	r.pushDescription()
}

// removePlayer handles leave and disconnect alike. The departing player's
// partial answers vanish with the session; they are excluded from scoring,
// results, ranking and rewards from here on.
func (r *Room) removePlayer(p *Player) {
	if idx := indexOf(r.spectators, p); idx >= 0 {
		r.spectators = append(r.spectators[:idx], r.spectators[idx+1:]...)
		p.clearRoom()
		p.release()
		return
	}

	idx := indexOf(r.players, p)
	if idx < 0 {
		return
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	wasChooser := p.Id() == r.chooserId
	wasHost := p.UserId() == r.hostId
	p.clearRoom()
	p.release()

	logger.Infof("[Room %s] %s left (%d remaining)", r.id, p.Username(), len(r.players))

	if len(r.players) == 0 {
		// With spectators still watching, close the game out properly instead
		// of vanishing; otherwise the loop exits and shutdown runs.
		if len(r.spectators) > 0 {
			r.finishGame()
		}
		return
	}

	if wasHost {
		r.hostId = r.players[0].UserId()
		logger.Infof("[Room %s] host transferred to %s", r.id, r.players[0].Username())
	}

	// A vanished chooser would stall the round forever; re-designate against
	// the shrunken roster and prompt again.
	if r.phase == PHASE_CHOOSING_LETTER && wasChooser {
		r.designateChooser()
	}

	r.broadcastPlayers()
	r.pushDescription()
}

func indexOf(players []*Player, p *Player) int {
	for i, candidate := range players {
		if candidate == p {
			return i
		}
	}
	return -1
}

// --- outbound helpers ---

// broadcast reaches active players and eliminated spectators alike.
func (r *Room) broadcast(data []byte) {
	for _, p := range r.players {
		p.Send(data)
	}
	for _, p := range r.spectators {
		p.Send(data)
	}
}

func (r *Room) playerInfos() []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		infos = append(infos, p.info())
	}
	return infos
}

func (r *Room) sendJoined(p *Player) {
	p.Send(ServerPacket(TypeRoomJoined, map[string]any{
		"roomId":     r.id,
		"isHost":     p.UserId() == r.hostId,
		"name":       r.name,
		"categories": r.categories,
		"theme":      r.theme,
		"mode":       r.mode,
		"capacity":   r.maxPlayers,
		"players":    r.playerInfos(),
	}))
}

func (r *Room) broadcastPlayers() {
	r.broadcast(ServerPacket(TypeRoomPlayers, map[string]any{"players": r.playerInfos()}))
}

func (r *Room) pingAll() {
	for _, p := range r.players {
		p.Ping()
	}
	for _, p := range r.spectators {
		p.Ping()
	}
}

func (r *Room) description() RoomDescription {
	return RoomDescription{
		Id:          r.id,
		Name:        r.name,
		Theme:       r.theme,
		Mode:        r.mode,
		Players:     len(r.players),
		MaxPlayers:  r.maxPlayers,
		HasPassword: r.password != "",
		Waiting:     r.phase == PHASE_WAITING,
	}
}

func (r *Room) pushDescription() {
	r.parent.UpdateDescription(r.description())
}

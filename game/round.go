package game

import (
	"fmt"

	"adedonha/logger"
)

// --- round lifecycle ---

func (r *Room) handleStart(from *Player) {
	if from.UserId() != r.hostId {
		from.SendError(reasonOnlyHost)
		return
	}
	if r.phase != PHASE_WAITING {
		from.SendError(ErrGameStarted.Error())
		return
	}
	if len(r.players) < 2 {
		from.SendError(reasonNeedPlayers)
		return
	}

	r.round = 1
	logger.Infof("[Room %s] game started: mode %s, %d players", r.id, r.mode, len(r.players))
	r.beginRound()
}

// beginRound resets every player's answers before anything else can be
// submitted, then either designates a chooser or draws a letter and arms the
// countdown.
func (r *Room) beginRound() {
	for _, p := range r.players {
		p.answers = map[string]string{}
	}
	r.letter = ""
	r.chooserId = ""

	if r.mode == ModeChooser {
		r.phase = PHASE_CHOOSING_LETTER
		r.designateChooser()
	} else {
		r.letter = r.letters.Draw()
		r.phase = PHASE_ACTIVE
		r.roundTimer.Start(r.roundDuration)
		logger.Infof("[Room %s] round %d started with letter %s", r.id, r.round, r.letter)
		r.broadcast(ServerPacket(TypeRoundStarted, map[string]any{
			"letter":     r.letter,
			"categories": r.categories,
			"round":      r.round,
			"mode":       r.mode,
			"duration":   r.roundDuration,
		}))
	}
	r.pushDescription()
}

// designateChooser picks players[(round-1) mod n] in stable join order and
// prompts the whole room.
func (r *Room) designateChooser() {
	chooser := r.players[(r.round-1)%len(r.players)]
	r.chooserId = chooser.Id()
	logger.Infof("[Room %s] round %d waiting for %s to choose a letter", r.id, r.round, chooser.Username())
	r.broadcast(ServerPacket(TypeChoosePrompt, map[string]any{
		"chooserId":   chooser.Id(),
		"chooserName": chooser.Username(),
		"categories":  r.categories,
		"round":       r.round,
		"mode":        r.mode,
		"duration":    r.roundDuration,
	}))
}

func (r *Room) handleChooseLetter(from *Player, payload ChooseLetterPayload) {
	if r.mode != ModeChooser || r.phase != PHASE_CHOOSING_LETTER {
		return
	}
	if from.Id() != r.chooserId {
		from.SendError(reasonNotYourTurn)
		return
	}

	letter := SanitizeLetter(payload.Letter)
	if letter == "" {
		from.SendError(reasonInvalidLetter)
		return
	}

	r.letter = letter
	r.chooserId = ""
	r.phase = PHASE_ACTIVE
	r.roundTimer.Start(r.roundDuration)
	logger.Infof("[Room %s] round %d letter chosen: %s", r.id, r.round, letter)
	r.broadcast(ServerPacket(TypeLetterChosen, map[string]any{
		"letter":     r.letter,
		"categories": r.categories,
		"round":      r.round,
		"duration":   r.roundDuration,
	}))
}

func (r *Room) handleSubmitAnswers(from *Player, payload SubmitAnswersPayload) {
	if r.phase != PHASE_ACTIVE {
		from.SendError(reasonNoRound)
		return
	}
	if indexOf(r.players, from) < 0 {
		from.SendError(reasonNotPlaying)
		return
	}

	if payload.Answers == nil {
		payload.Answers = map[string]string{}
	}
	from.answers = payload.Answers
	from.Send(ServerPacket(TypeSubmittedAck, map[string]any{}))
	r.broadcastReadiness()
}

func (r *Room) readyCount() int {
	ready := 0
	for _, p := range r.players {
		if len(p.answers) > 0 {
			ready++
		}
	}
	return ready
}

// stopQuorum is the minimum number of players with at least one submitted
// answer before a manual stop is allowed: ceil(half the room).
func (r *Room) stopQuorum() int {
	return (len(r.players) + 1) / 2
}

func (r *Room) broadcastReadiness() {
	ready := r.readyCount()
	minimum := r.stopQuorum()
	r.broadcast(ServerPacket(TypeReadiness, map[string]any{
		"ready":   ready,
		"total":   len(r.players),
		"minimum": minimum,
		"canStop": ready >= minimum,
	}))
}

// handleStop ends the round early. Rejected unless the requester has
// submitted something and the quorum is met; rejected outright once the
// timer has already fired.
func (r *Room) handleStop(from *Player) {
	if r.phase != PHASE_ACTIVE || !r.roundTimer.Active() {
		from.SendError(reasonRoundOver)
		return
	}
	if indexOf(r.players, from) < 0 {
		from.SendError(reasonNotPlaying)
		return
	}
	if len(from.answers) == 0 {
		from.SendError(reasonSubmitFirst)
		return
	}
	ready, minimum := r.readyCount(), r.stopQuorum()
	if ready < minimum {
		from.SendError(fmt.Sprintf("at least %d of %d players must finish before stop", minimum, len(r.players)))
		return
	}

	r.roundTimer.Cancel()
	logger.Infof("[Room %s] round %d stopped early by %s", r.id, r.round, from.Username())
	r.endRound()
}

// handleTick advances whichever countdown is armed. The round timer
// broadcasts its remaining seconds; the reveal delay is silent.
func (r *Room) handleTick() {
	if r.roundTimer.Active() {
		expired := r.roundTimer.Tick()
		r.broadcast(ServerPacket(TypeRoundTick, map[string]int{"remaining": r.roundTimer.Remaining()}))
		if expired {
			logger.Infof("[Room %s] round %d timer expired", r.id, r.round)
			r.endRound()
		}
		return
	}

	if r.revealTimer.Active() && r.revealTimer.Tick() {
		r.afterReveal()
	}
}

// endRound scores the round, applies survival elimination, reveals the
// result and arms the reveal delay. Reached exactly once per round, by timer
// expiry or an accepted stop.
func (r *Room) endRound() {
	r.phase = PHASE_REVEAL

	answersByPlayer := make(map[string]map[string]string, len(r.players))
	for _, p := range r.players {
		answersByPlayer[p.Id()] = p.answers
	}
	roundScores := ScoreRound(r.letter, r.categories, answersByPlayer)

	scores := make(map[string]map[string]any, len(r.players))
	answers := make(map[string]map[string]any, len(r.players))
	for _, p := range r.players {
		score := roundScores[p.Id()]
		p.score += score.Total
		scores[p.Id()] = map[string]any{
			"total":      score.Total,
			"byCategory": score.ByCategory,
			"cumulative": p.score,
		}
		answers[p.Id()] = map[string]any{
			"userId":  p.UserId(),
			"name":    p.Username(),
			"answers": p.answers,
		}
	}

	eliminatedNow := r.eliminateLowest()

	result := map[string]any{
		"letter":     r.letter,
		"categories": r.categories,
		"scores":     scores,
		"answers":    answers,
		"players":    r.playerInfos(),
		"mode":       r.mode,
	}
	if r.mode == ModeSurvival {
		result["eliminated"] = eliminatedNow
	}
	r.broadcast(ServerPacket(TypeRoundResult, result))

	r.revealTimer.Start(revealDelaySeconds)
	r.pushDescription()
}

// afterReveal is the delayed Reveal exit. Everything is recomputed against
// the live roster: joins are impossible mid-game but leaves are not, so the
// snapshot taken at reveal time must not be trusted here.
func (r *Room) afterReveal() {
	if r.phase != PHASE_REVEAL {
		return
	}

	if r.mode == ModeSurvival {
		if len(r.players) <= 1 {
			r.finishGame()
		} else {
			r.round++
			r.beginRound()
		}
		return
	}

	if r.round >= r.maxRounds {
		r.finishGame()
		return
	}
	r.round++
	r.beginRound()
}

package game

import "errors"

// Join validation failures, surfaced to the requesting connection only.
// The order rooms check them in is part of the contract: existence, phase,
// password, capacity.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrGameStarted   = errors.New("game already started")
	ErrWrongPassword = errors.New("wrong password")
	ErrRoomFull      = errors.New("room full")
)

// Reasons carried by room.error packets.
const (
	reasonInvalidMessage = "invalid message"
	reasonAlreadyInRoom  = "already in a room"
	reasonNotInRoom      = "join a room first"
	reasonOnlyHost       = "only the host can start the game"
	reasonNeedPlayers    = "need at least 2 players to start"
	reasonNotYourTurn    = "not your turn to choose"
	reasonInvalidLetter  = "choose a letter from A to Z"
	reasonNoRound        = "no round in progress"
	reasonNotPlaying     = "you are not playing this round"
	reasonRoundOver      = "the round is already over"
	reasonSubmitFirst    = "submit your answers before calling stop"
)

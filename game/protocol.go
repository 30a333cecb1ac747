package game

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"
)

// Wire format: JSON frames of the shape {"type": "...", "data": {...}},
// decoded into typed payloads at the boundary before they reach any room.

const (
	TypeIdentify      = "identify"
	TypeRoomCreate    = "room.create"
	TypeRoomJoin      = "room.join"
	TypeRoomList      = "room.list"
	TypeRoomStart     = "room.start"
	TypeChooseLetter  = "round.chooseLetter"
	TypeSubmitAnswers = "round.submitAnswers"
	TypeRoundStop     = "round.stop"
)

const (
	TypeIdentifyAck   = "identify.ack"
	TypeRoomJoined    = "room.joined"
	TypeRoomPlayers   = "room.players"
	TypeRoomError     = "room.error"
	TypeRoomListing   = "room.list.result"
	TypeRoundStarted  = "round.started"
	TypeChoosePrompt  = "round.chooseLetter"
	TypeLetterChosen  = "round.letterChosen"
	TypeSubmittedAck  = "round.submitted"
	TypeReadiness     = "round.readiness"
	TypeRoundTick     = "round.tick"
	TypeRoundResult   = "round.result"
	TypeGameFinished  = "game.finished"
)

type ClientPacket struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

var errBadPacket = errors.New("malformed packet")

func DecodeClientPacket(raw []byte) (ClientPacket, error) {
	var pkt ClientPacket
	if err := json.Unmarshal(raw, &pkt); err != nil {
		return ClientPacket{}, errBadPacket
	}
	if pkt.Type == "" {
		return ClientPacket{}, errBadPacket
	}
	return pkt, nil
}

// DecodeInto unmarshals the packet payload. A missing data field decodes as
// the zero payload, matching the original server's tolerance.
func (pkt ClientPacket) DecodeInto(v any) error {
	if len(pkt.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(pkt.Data, v); err != nil {
		return errBadPacket
	}
	return nil
}

type IdentifyPayload struct {
	UserId string `json:"userId"`
	Name   string `json:"name"`
}

type RoomCreatePayload struct {
	Name       string   `json:"name"`
	Password   string   `json:"password"`
	Theme      string   `json:"theme"`
	Categories []string `json:"categories"`
	MaxRounds  int      `json:"targetRounds"`
	MaxPlayers int      `json:"capacity"`
	Mode       string   `json:"mode"`
}

type RoomJoinPayload struct {
	RoomId   string `json:"roomId"`
	Password string `json:"password"`
}

type ChooseLetterPayload struct {
	Letter string `json:"letter"`
}

type SubmitAnswersPayload struct {
	Answers map[string]string `json:"answers"`
}

// ServerPacket marshals an outbound frame. Marshaling only fails for
// unencodable values, which would be a programming error here.
func ServerPacket(typ string, data any) []byte {
	frame := struct {
		Type string `json:"type"`
		Data any    `json:"data"`
	}{Type: typ, Data: data}

	bytes, err := json.Marshal(frame)
	if err != nil {
		return []byte(`{"type":"` + typ + `"}`)
	}
	return bytes
}

type PlayerInfo struct {
	SocketId string `json:"socketId"`
	UserId   string `json:"userId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

type RankedPlayer struct {
	UserId string `json:"userId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

// SanitizeLetter reduces free text to its first A–Z rune, case-insensitive.
// Returns "" when no alphabetic character is present.
func SanitizeLetter(input string) string {
	for _, r := range strings.ToUpper(input) {
		if r >= 'A' && r <= 'Z' {
			return string(r)
		}
	}
	return ""
}

func firstRuneUpper(s string) rune {
	for _, r := range s {
		return unicode.ToUpper(r)
	}
	return 0
}

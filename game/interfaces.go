package game

import (
	"context"
	"time"

	"adedonha/domain"
)

// NetworkSession is the transport seam; the gorilla-backed implementation
// lives in websocket.go, tests swap in fakes.
type NetworkSession interface {
	Close(reason string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

// UserRegistry is the slice of the user store the game core needs: identity
// resolution on connect and coin rewards on game end.
type UserRegistry interface {
	GetOrCreate(ctx context.Context, id, name string) (domain.User, error)
	AddCoins(ctx context.Context, id string, delta int) error
}

// RoomParent receives room lifecycle notifications. Implemented by Lobby.
type RoomParent interface {
	UpdateDescription(desc RoomDescription)
	RemoveRoom(id string)
}

// LetterDrawer picks the round letter in non-chooser modes.
type LetterDrawer interface {
	Draw() string
}

type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}

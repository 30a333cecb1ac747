package game

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"adedonha/domain"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- NetworkSession ---

type MockNetworkSession struct {
	mock.Mock
}

func (m *MockNetworkSession) Close(reason string) {
	m.Called(reason)
}

func (m *MockNetworkSession) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockNetworkSession) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetworkSession) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- UserRegistry ---

type MockUserRegistry struct {
	mock.Mock
}

func (m *MockUserRegistry) GetOrCreate(ctx context.Context, id, name string) (domain.User, error) {
	args := m.Called(ctx, id, name)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRegistry) AddCoins(ctx context.Context, id string, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

// --- RoomParent ---

type MockRoomParent struct {
	mock.Mock
}

func (m *MockRoomParent) UpdateDescription(desc RoomDescription) {
	m.Called(desc)
}

func (m *MockRoomParent) RemoveRoom(id string) {
	m.Called(id)
}

// --- PeriodicTickerChannelCreator ---

type MockPeriodicTickerChannelCreator struct {
	mock.Mock
}

func (m *MockPeriodicTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	args := m.Called(duration)
	return args.Get(0).(chan time.Time)
}

// --- LetterDrawer ---

type fixedLetterDrawer struct {
	letter string
}

func (d fixedLetterDrawer) Draw() string { return d.letter }

// --- helpers ---

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// sentFrames drains everything queued for the player's write pump.
func sentFrames(t *testing.T, p *Player) []frame {
	t.Helper()
	frames := []frame{}
	for {
		select {
		case data, ok := <-p.inbox:
			if !ok {
				return frames
			}
			f := frame{}
			require.NoError(t, json.Unmarshal(data, &f))
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func frameTypes(frames []frame) []string {
	types := make([]string, 0, len(frames))
	for _, f := range frames {
		types = append(types, f.Type)
	}
	return types
}

func lastFrameOfType(frames []frame, typ string) (json.RawMessage, bool) {
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Type == typ {
			return frames[i].Data, true
		}
	}
	return nil, false
}

func lastErrorReason(t *testing.T, frames []frame) string {
	t.Helper()
	data, ok := lastFrameOfType(frames, TypeRoomError)
	if !ok {
		return ""
	}
	payload := struct {
		Reason string `json:"reason"`
	}{}
	require.NoError(t, json.Unmarshal(data, &payload))
	return payload.Reason
}

func newTestPlayer(userId, name string) *Player {
	p := NewPlayer(nil, nil, nil)
	p.userId = userId
	p.name = name
	return p
}

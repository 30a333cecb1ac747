package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func survivalConfig() RoomConfig {
	return NormalizeRoomConfig(RoomCreatePayload{Mode: ModeSurvival})
}

func TestRoom_SurvivalEliminatesAllTiedAtMinimum(t *testing.T) {
	room, players, _ := newTestRoom(t, survivalConfig(), "Ana", "Bruno", "Caio", "Dani")
	players[0].score = 10
	players[1].score = 5
	players[2].score = 5
	players[3].score = 20

	eliminated := room.eliminateLowest()

	require.Len(t, eliminated, 2)
	assert.Equal(t, "user-2", eliminated[0].UserId)
	assert.Equal(t, "user-3", eliminated[1].UserId)
	assert.Len(t, room.players, 2)
	assert.Len(t, room.spectators, 2)
	assert.Equal(t, []*Player{players[0], players[3]}, room.players)
}

func TestRoom_SurvivalCanEliminateEveryone(t *testing.T) {
	room, players, _ := newTestRoom(t, survivalConfig(), "Ana", "Bruno")
	players[0].score = 5
	players[1].score = 5

	eliminated := room.eliminateLowest()

	assert.Len(t, eliminated, 2)
	assert.Empty(t, room.players)
	assert.Len(t, room.spectators, 2)
}

func TestRoom_SurvivalNeverEliminatesTheLastPlayer(t *testing.T) {
	room, _, _ := newTestRoom(t, survivalConfig(), "Ana")

	assert.Nil(t, room.eliminateLowest())
	assert.Len(t, room.players, 1)
}

func TestRoom_EliminationOnlyRunsInSurvivalMode(t *testing.T) {
	room, players, _ := newTestRoom(t, classicConfig(), "Ana", "Bruno")
	players[0].score = 0
	players[1].score = 10

	assert.Nil(t, room.eliminateLowest())
	assert.Len(t, room.players, 2)
}

func TestRoom_SpectatorsKeepReceivingBroadcasts(t *testing.T) {
	room, players, _ := newTestRoom(t, survivalConfig(), "Ana", "Bruno", "Caio")
	players[0].score = 5
	players[1].score = 10
	players[2].score = 10
	room.eliminateLowest()
	drainAll(t, players)

	room.broadcast(ServerPacket(TypeRoundTick, map[string]int{"remaining": 30}))

	assert.Contains(t, frameTypes(sentFrames(t, players[0])), TypeRoundTick)
}

func TestRoom_FinalRankingSurvivalOrdersByEliminationHistory(t *testing.T) {
	room, players, _ := newTestRoom(t, survivalConfig(), "Ana", "Bruno", "Caio")
	players[0].score = 1
	players[1].score = 5
	players[2].score = 9
	room.eliminateLowest() // Ana out
	room.eliminateLowest() // Bruno out

	ranking := room.finalRanking()

	require.Len(t, ranking, 3)
	assert.Equal(t, "user-3", ranking[0].UserId, "survivor first")
	assert.Equal(t, "user-2", ranking[1].UserId, "latest elimination next")
	assert.Equal(t, "user-1", ranking[2].UserId)
}

func TestRoom_FinalRankingClassicSortsByScoreDescending(t *testing.T) {
	room, players, _ := newTestRoom(t, classicConfig(), "Ana", "Bruno", "Caio")
	players[0].score = 15
	players[1].score = 40
	players[2].score = 15

	ranking := room.finalRanking()

	require.Len(t, ranking, 3)
	assert.Equal(t, "user-2", ranking[0].UserId)
	// Tie keeps join order.
	assert.Equal(t, "user-1", ranking[1].UserId)
	assert.Equal(t, "user-3", ranking[2].UserId)
}

func TestRoom_FinishGamePaysWinnerAndParticipants(t *testing.T) {
	room, players, registry := newTestRoom(t, classicConfig(), "Ana", "Bruno", "Caio")
	registry.On("AddCoins", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	players[0].score = 10
	players[1].score = 30
	players[2].score = 20
	drainAll(t, players)

	room.finishGame()

	assert.True(t, room.finished)
	registry.AssertCalled(t, "AddCoins", mock.Anything, "user-2", coinsVictory)
	registry.AssertCalled(t, "AddCoins", mock.Anything, "user-1", coinsParticipation)
	registry.AssertCalled(t, "AddCoins", mock.Anything, "user-3", coinsParticipation)
	registry.AssertNumberOfCalls(t, "AddCoins", 3)
}

func TestRoom_NoRewardsWhenNobodySurvives(t *testing.T) {
	room, players, registry := newTestRoom(t, survivalConfig(), "Ana", "Bruno")
	players[0].score = 5
	players[1].score = 5
	room.eliminateLowest()
	require.Empty(t, room.players)
	drainAll(t, players)

	room.finishGame()

	assert.True(t, room.finished)
	registry.AssertNotCalled(t, "AddCoins", mock.Anything, mock.Anything, mock.Anything)

	// Spectators still get the final frame, with the full elimination history.
	data, ok := lastFrameOfType(sentFrames(t, players[0]), TypeGameFinished)
	require.True(t, ok)
	payload := struct {
		Ranking []RankedPlayer `json:"ranking"`
	}{}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Len(t, payload.Ranking, 2)
}

func TestRoom_AllEliminatedSurvivalStillDeliversFinale(t *testing.T) {
	room, players, registry := newTestRoom(t, survivalConfig(), "Ana", "Bruno")
	room.handleStart(players[0])
	submitAnswers(room, players[0], map[string]string{"Animal": "Baleia"})
	submitAnswers(room, players[1], map[string]string{"Animal": "Baleia"})

	room.handleStop(players[0])

	require.Empty(t, room.players)
	require.Len(t, room.spectators, 2)
	assert.False(t, room.done(), "the reveal still owes the spectators the finale")
	drainAll(t, players)

	for i := 0; i < revealDelaySeconds; i++ {
		room.handleTick()
	}

	assert.True(t, room.finished)
	registry.AssertNotCalled(t, "AddCoins", mock.Anything, mock.Anything, mock.Anything)

	data, ok := lastFrameOfType(sentFrames(t, players[1]), TypeGameFinished)
	require.True(t, ok)
	payload := struct {
		Ranking []RankedPlayer `json:"ranking"`
	}{}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Len(t, payload.Ranking, 2)
}

func TestRoom_GameLoopSurvivesTotalElimination(t *testing.T) {
	parent := &MockRoomParent{}
	parent.On("UpdateDescription", mock.Anything).Return()
	removed := make(chan struct{})
	parent.On("RemoveRoom", "room-test").Run(func(args mock.Arguments) { close(removed) }).Return()
	registry := &MockUserRegistry{}

	host := newTestPlayer("user-1", "Ana")
	room := NewRoom("room-test", host, survivalConfig(), parent, registry)
	room.letters = fixedLetterDrawer{letter: "B"}
	host.setRoom(room)
	go room.GameLoop()

	joiner := newTestPlayer("user-2", "Bruno")
	errChan := make(chan error, 1)
	room.RequestJoin(joinRoomRequest{player: joiner, errChan: errChan})
	require.NoError(t, <-errChan)

	room.Send(ClientPacketEnvelope{packet: ClientPacket{Type: TypeRoomStart}, from: host})
	answers := json.RawMessage(`{"answers":{"Animal":"Baleia"}}`)
	room.Send(ClientPacketEnvelope{packet: ClientPacket{Type: TypeSubmitAnswers, Data: answers}, from: host})
	room.Send(ClientPacketEnvelope{packet: ClientPacket{Type: TypeSubmitAnswers, Data: answers}, from: joiner})
	room.Send(ClientPacketEnvelope{packet: ClientPacket{Type: TypeRoundStop}, from: host})

	// Both tied at the shared value: the whole roster is eliminated, and the
	// reveal delay must still carry everyone to the finale.
	frames := []frame{}
	require.Eventually(t, func() bool {
		room.Tick(time.Now())
		frames = append(frames, sentFrames(t, host)...)
		_, ok := lastFrameOfType(frames, TypeGameFinished)
		return ok
	}, time.Second*2, 10*time.Millisecond, "the finale must reach eliminated players")

	select {
	case <-removed:
	case <-time.After(time.Second):
		t.Fatal("the room must still tear itself down after the finale")
	}
	registry.AssertNotCalled(t, "AddCoins", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoom_LastPlayerLeavingFinishesForSpectators(t *testing.T) {
	room, players, registry := newTestRoom(t, survivalConfig(), "Ana", "Bruno")
	registry.On("AddCoins", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	players[0].score = 10
	players[1].score = 5
	room.eliminateLowest()
	require.Len(t, room.spectators, 1)
	drainAll(t, players)

	room.removePlayer(players[0])

	assert.True(t, room.finished)
	data, ok := lastFrameOfType(sentFrames(t, players[1]), TypeGameFinished)
	require.True(t, ok)
	payload := struct {
		Ranking []RankedPlayer `json:"ranking"`
	}{}
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Len(t, payload.Ranking, 1)
	assert.Equal(t, "user-2", payload.Ranking[0].UserId)
}

func TestRoom_SurvivalRoundResultAnnouncesEliminations(t *testing.T) {
	room, players, _ := newTestRoom(t, survivalConfig(), "Ana", "Bruno", "Caio")
	room.handleStart(players[0])
	submitAnswers(room, players[0], map[string]string{"Animal": "Bear"})
	submitAnswers(room, players[1], map[string]string{"Animal": "Bat"})
	submitAnswers(room, players[2], map[string]string{"Animal": "Cat"}) // wrong letter
	drainAll(t, players)

	room.handleStop(players[0])

	data, ok := lastFrameOfType(sentFrames(t, players[2]), TypeRoundResult)
	require.True(t, ok)
	payload := struct {
		Eliminated []RankedPlayer `json:"eliminated"`
		Players    []PlayerInfo   `json:"players"`
	}{}
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Len(t, payload.Eliminated, 1)
	assert.Equal(t, "user-3", payload.Eliminated[0].UserId)
	assert.Len(t, payload.Players, 2, "player list reflects the post-elimination roster")
}

func TestRoom_SurvivalFinishesWhenOnePlayerRemains(t *testing.T) {
	room, players, registry := newTestRoom(t, survivalConfig(), "Ana", "Bruno")
	registry.On("AddCoins", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	room.handleStart(players[0])
	submitAnswers(room, players[0], map[string]string{"Animal": "Bear"})
	submitAnswers(room, players[1], map[string]string{"Animal": "Cat"})
	room.handleStop(players[0])
	require.Equal(t, PHASE_REVEAL, room.phase)
	drainAll(t, players)

	for i := 0; i < revealDelaySeconds; i++ {
		room.handleTick()
	}

	assert.True(t, room.finished)
	registry.AssertCalled(t, "AddCoins", mock.Anything, "user-1", coinsVictory)
	registry.AssertCalled(t, "AddCoins", mock.Anything, "user-2", coinsParticipation)
}

func TestRoom_SurvivalIgnoresRoundTarget(t *testing.T) {
	cfg := NormalizeRoomConfig(RoomCreatePayload{Mode: ModeSurvival, MaxRounds: 1})
	room, players, _ := newTestRoom(t, cfg, "Ana", "Bruno", "Caio")
	room.handleStart(players[0])
	submitAnswers(room, players[0], map[string]string{"Animal": "Bear"})
	submitAnswers(room, players[1], map[string]string{"Animal": "Bat"})
	submitAnswers(room, players[2], map[string]string{"Animal": "Cat"})
	room.handleStop(players[0])

	for i := 0; i < revealDelaySeconds; i++ {
		room.handleTick()
	}

	assert.False(t, room.finished, "two players remain, the bracket continues past the round target")
	assert.Equal(t, 2, room.round)
	assert.Equal(t, PHASE_ACTIVE, room.phase)
}

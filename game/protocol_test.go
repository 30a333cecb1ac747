package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClientPacket(t *testing.T) {
	t.Parallel()

	t.Run("valid frame", func(t *testing.T) {
		pkt, err := DecodeClientPacket([]byte(`{"type":"room.join","data":{"roomId":"abc12345"}}`))
		require.NoError(t, err)
		assert.Equal(t, TypeRoomJoin, pkt.Type)

		payload := RoomJoinPayload{}
		require.NoError(t, pkt.DecodeInto(&payload))
		assert.Equal(t, "abc12345", payload.RoomId)
	})

	t.Run("missing data decodes as zero payload", func(t *testing.T) {
		pkt, err := DecodeClientPacket([]byte(`{"type":"round.stop"}`))
		require.NoError(t, err)

		payload := SubmitAnswersPayload{}
		require.NoError(t, pkt.DecodeInto(&payload))
		assert.Nil(t, payload.Answers)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := DecodeClientPacket([]byte("hello"))
		assert.ErrorIs(t, err, errBadPacket)
	})

	t.Run("empty type", func(t *testing.T) {
		_, err := DecodeClientPacket([]byte(`{"data":{}}`))
		assert.ErrorIs(t, err, errBadPacket)
	})

	t.Run("payload of the wrong shape", func(t *testing.T) {
		pkt, err := DecodeClientPacket([]byte(`{"type":"round.submitAnswers","data":{"answers":"not-a-map"}}`))
		require.NoError(t, err)

		payload := SubmitAnswersPayload{}
		assert.ErrorIs(t, pkt.DecodeInto(&payload), errBadPacket)
	})
}

func TestServerPacket(t *testing.T) {
	t.Parallel()

	raw := ServerPacket(TypeRoundTick, map[string]int{"remaining": 42})

	decoded := struct {
		Type string `json:"type"`
		Data struct {
			Remaining int `json:"remaining"`
		} `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, TypeRoundTick, decoded.Type)
	assert.Equal(t, 42, decoded.Data.Remaining)
}

func TestSanitizeLetter(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
	}{
		{"a", "A"},
		{"Z", "Z"},
		{"  b!", "B"},
		{"123x", "X"},
		{"banana", "B"},
		{"", ""},
		{"42", ""},
		{"!!!", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, SanitizeLetter(tc.input), "input %q", tc.input)
	}
}

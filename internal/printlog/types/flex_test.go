package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madebycotrim/printlog-v2-sub004/internal/printlog/types"
)

func TestMillis_UnmarshalJSON(t *testing.T) {
	at := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want types.Millis
	}{
		{`1234`, 1234},
		{`"1234"`, 1234},
		{`1.7e+12`, 1700000000000},
		{`"2026-03-02T10:30:00Z"`, types.MillisFrom(at)},
		{`"2026-03-02T07:30:00-03:00"`, types.MillisFrom(at)},
		{`"2026-03-02T10:30:00"`, types.MillisFrom(at)},
		{`"2026-03-02"`, types.MillisFrom(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))},
		{`null`, 0},
	}
	for _, tc := range cases {
		var m types.Millis
		require.NoError(t, json.Unmarshal([]byte(tc.in), &m), tc.in)
		assert.Equal(t, tc.want, m, tc.in)
	}

	for _, bad := range []string{`"ontem"`, `""`, `true`, `{}`, `1e400`} {
		var m types.Millis
		assert.Error(t, json.Unmarshal([]byte(bad), &m), bad)
	}
}

func TestMillis_MarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(struct {
		T types.Millis `json:"t"`
	}{T: 1234})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":1234}`, string(b))
	assert.Equal(t, int64(1234), types.Millis(1234).Time().UnixMilli())
}

func TestFlexString_UnmarshalJSON(t *testing.T) {
	var rec types.AccessRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":" a1 ","aluno_matricula":2024001}`), &rec))
	assert.Equal(t, types.FlexString("a1"), rec.ID)
	assert.Equal(t, "2024001", rec.StudentID.String())

	var fs types.FlexString
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &fs))
}

func TestMovementType_Valid(t *testing.T) {
	assert.True(t, types.MovementEntry.Valid())
	assert.True(t, types.MovementExit.Valid())
	assert.False(t, types.MovementType("Entrada").Valid())
	assert.False(t, types.MovementType("").Valid())
}

func TestAccessRecord_TimestampPresence(t *testing.T) {
	var absent, zero types.AccessRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a"}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","timestamp":0}`), &zero))

	assert.Nil(t, absent.Timestamp)
	require.NotNil(t, zero.Timestamp)
	assert.True(t, zero.Timestamp.IsZero())
}

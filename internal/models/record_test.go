package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID_Variants(t *testing.T) {
	tests := []struct {
		id          RecordID
		name        string
		wantString  string
		wantRemote  bool
		wantPending bool
	}{
		{
			name:       "remote id",
			id:         RemoteID(10),
			wantRemote: true,
			wantString: "10",
		},
		{
			name:        "pending id",
			id:          PendingID(1700000000000),
			wantPending: true,
			wantString:  "-1700000000000",
		},
		{
			name:       "zero id",
			id:         RecordID{},
			wantString: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRemote, tt.id.IsRemote())
			assert.Equal(t, tt.wantPending, tt.id.IsPending())
			assert.Equal(t, tt.wantString, tt.id.String())
		})
	}
}

func TestRecordID_RemoteAndLocalAccessors(t *testing.T) {
	remote, ok := RemoteID(7).Remote()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), remote)

	_, ok = RemoteID(7).Local()
	assert.False(t, ok)

	token, ok := PendingID(42).Local()
	assert.True(t, ok)
	assert.Equal(t, LocalToken(42), token)

	_, ok = PendingID(42).Remote()
	assert.False(t, ok)
}

func TestRecordIDFromInt64(t *testing.T) {
	id, err := RecordIDFromInt64(5)
	require.NoError(t, err)
	assert.Equal(t, RemoteID(5), id)

	id, err = RecordIDFromInt64(-5)
	require.NoError(t, err)
	assert.Equal(t, PendingID(5), id)

	_, err = RecordIDFromInt64(0)
	assert.ErrorIs(t, err, ErrInvalidRecordID)
}

func TestParseRecordID(t *testing.T) {
	id, err := ParseRecordID("12")
	require.NoError(t, err)
	assert.Equal(t, RemoteID(12), id)

	_, err = ParseRecordID("abc")
	assert.ErrorIs(t, err, ErrInvalidRecordID)
}

func TestRecord_JSONKeepsIntegerIDs(t *testing.T) {
	records := []Record{
		{ID: RemoteID(10), Payload: Payload{Name: "Laptop", Quantity: 2, Weight: 1.5}},
		NewPendingRecord(99, Payload{Name: "Mouse", Quantity: 1, Weight: 0.1}),
	}

	data, err := json.Marshal(records)
	require.NoError(t, err)

	// Проверяем, что id остаются целыми числами, а поля payload "плоские"
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, float64(10), raw[0]["id"])
	assert.Equal(t, float64(-99), raw[1]["id"])
	assert.Equal(t, "Laptop", raw[0]["name"])

	var decoded []Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, records, decoded)
}

func TestRecord_UnmarshalRejectsZeroID(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"id":0,"name":"x"}`), &rec)
	assert.ErrorIs(t, err, ErrInvalidRecordID)
}

func TestRecordID_MarshalZeroFails(t *testing.T) {
	_, err := json.Marshal(Record{})
	assert.Error(t, err)
}

func TestRecordID_RemoteAboveInt64Range(t *testing.T) {
	id := RemoteID(math.MaxInt64 + 1)

	assert.False(t, id.Valid())
	assert.True(t, id.IsRemote(), "Still a server id, never mistaken for a pending one")
	assert.Equal(t, "9223372036854775808", id.String())

	_, err := json.Marshal(Record{ID: id})
	assert.ErrorIs(t, err, ErrInvalidRecordID)

	assert.True(t, RemoteID(math.MaxInt64).Valid())
	assert.True(t, PendingID(1).Valid())
	assert.False(t, RecordID{}.Valid())
}

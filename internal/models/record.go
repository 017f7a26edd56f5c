package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// LocalToken локальный токен записи, созданной без связи с сервером.
// Выдается монотонными часами clock.Local.
type LocalToken uint64

// RecordID идентификатор записи: либо Remote (назначен сервером),
// либо Pending (локальный токен, сервер о записи еще не знает).
// Нулевое значение невалидно.
type RecordID struct {
	remote uint64
	local  LocalToken
}

// ErrInvalidRecordID is returned when an id is zero or cannot be decoded.
var ErrInvalidRecordID = errors.New("invalid record id")

// RemoteID returns an id assigned by the remote collaborator.
// Valid server ids are 1..math.MaxInt64; larger values have no integer
// form and fail to marshal.
func RemoteID(id uint64) RecordID {
	return RecordID{remote: id}
}

// PendingID returns a placeholder id for a record not yet confirmed by the server.
func PendingID(token LocalToken) RecordID {
	return RecordID{local: token}
}

// IsZero reports whether id is the invalid zero value.
func (id RecordID) IsZero() bool {
	return id.remote == 0 && id.local == 0
}

// IsRemote reports whether the record was confirmed by the server.
func (id RecordID) IsRemote() bool {
	return id.remote != 0
}

// IsPending reports whether id is a local placeholder.
func (id RecordID) IsPending() bool {
	return id.remote == 0 && id.local != 0
}

// Remote returns the server id and true for Remote ids.
func (id RecordID) Remote() (uint64, bool) {
	return id.remote, id.remote != 0
}

// Local returns the local token and true for Pending ids.
func (id RecordID) Local() (LocalToken, bool) {
	return id.local, id.IsPending()
}

// Valid reports whether id is non-zero and has an integer form.
func (id RecordID) Valid() bool {
	if id.remote != 0 {
		return id.remote <= math.MaxInt64
	}
	return id.local != 0 && id.local <= math.MaxInt64
}

// Int64 returns the persisted integer form: positive for Remote,
// negated token for Pending. Meaningful only for Valid ids.
func (id RecordID) Int64() int64 {
	if id.remote != 0 {
		return int64(id.remote)
	}
	return -int64(id.local)
}

// RecordIDFromInt64 is the inverse of Int64.
func RecordIDFromInt64(v int64) (RecordID, error) {
	switch {
	case v > 0:
		return RemoteID(uint64(v)), nil
	case v < 0:
		return PendingID(LocalToken(-v)), nil
	default:
		return RecordID{}, ErrInvalidRecordID
	}
}

// ParseRecordID parses the textual integer form (e.g. CLI arguments).
func ParseRecordID(s string) (RecordID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return RecordID{}, fmt.Errorf("%w: %q", ErrInvalidRecordID, s)
	}
	return RecordIDFromInt64(v)
}

func (id RecordID) String() string {
	if id.remote != 0 {
		return strconv.FormatUint(id.remote, 10)
	}
	return strconv.FormatInt(-int64(id.local), 10)
}

// MarshalJSON кодирует id как целое число (формат кэша не меняется)
func (id RecordID) MarshalJSON() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecordID, id)
	}
	return []byte(strconv.FormatInt(id.Int64(), 10)), nil
}

// UnmarshalJSON декодирует целое число в Remote или Pending
func (id *RecordID) UnmarshalJSON(data []byte) error {
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecordID, err)
	}
	parsed, err := RecordIDFromInt64(v)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Payload содержимое записи без идентификатора.
// В очереди офлайн-операций хранится именно Payload ("намерение создать").
type Payload struct {
	Name     string  `json:"name"`     // Name название товара
	Status   string  `json:"status"`   // Status статус: "available", "reserved", "out of stock"
	Category string  `json:"category"` // Category категория
	Supplier string  `json:"supplier"` // Supplier поставщик
	Weight   float64 `json:"weight"`   // Weight вес единицы
	Quantity int64   `json:"quantity"` // Quantity количество
}

// Record представляет товарную позицию в локальном репозитории.
type Record struct {
	ID RecordID `json:"id"`
	Payload
}

// Допустимые значения статуса позиции
const (
	StatusAvailable  = "available"
	StatusReserved   = "reserved"
	StatusOutOfStock = "out of stock"
)

// NewPendingRecord builds the placeholder shown while a payload waits in the queue.
func NewPendingRecord(token LocalToken, p Payload) Record {
	return Record{ID: PendingID(token), Payload: p}
}

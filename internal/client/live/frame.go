package live

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/stockkeeper/internal/models"
)

// ErrInvalidFrame входящее сообщение не является записью
var ErrInvalidFrame = errors.New("invalid frame")

// Frame результат разбора входящего сообщения: RecordFrame или UnparseableFrame
type Frame interface {
	frame()
}

// RecordFrame сообщение с валидной записью
type RecordFrame struct {
	Record models.Record
}

// UnparseableFrame сообщение, которое не удалось разобрать. Такие сообщения
// логируются и отбрасываются.
type UnparseableFrame struct {
	Err error
	Raw []byte
}

func (RecordFrame) frame()      {}
func (UnparseableFrame) frame() {}

// ParseFrame разбирает сообщение сервера. Ожидается JSON-объект записи с
// положительным целым id и непустым name.
func ParseFrame(raw []byte) Frame {
	rec, err := parseRecord(raw)
	if err != nil {
		return UnparseableFrame{Raw: raw, Err: err}
	}
	return RecordFrame{Record: rec}
}

func parseRecord(raw []byte) (models.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return models.Record{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if fields == nil {
		return models.Record{}, fmt.Errorf("%w: not an object", ErrInvalidFrame)
	}

	var (
		rec models.Record
		err error
	)

	id, err := integerField(fields, "id", true)
	if err != nil {
		return models.Record{}, err
	}
	if id <= 0 {
		return models.Record{}, fmt.Errorf("%w: id must be positive, got %d", ErrInvalidFrame, id)
	}
	rec.ID = models.RemoteID(uint64(id))

	if rec.Name, err = stringField(fields, "name"); err != nil {
		return models.Record{}, err
	}
	if rec.Name == "" {
		return models.Record{}, fmt.Errorf("%w: name is required", ErrInvalidFrame)
	}
	if rec.Status, err = stringField(fields, "status"); err != nil {
		return models.Record{}, err
	}
	if rec.Category, err = stringField(fields, "category"); err != nil {
		return models.Record{}, err
	}
	if rec.Supplier, err = stringField(fields, "supplier"); err != nil {
		return models.Record{}, err
	}
	if rec.Quantity, err = integerField(fields, "quantity", false); err != nil {
		return models.Record{}, err
	}
	if rec.Weight, err = numberField(fields, "weight"); err != nil {
		return models.Record{}, err
	}

	return rec, nil
}

func stringField(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidFrame, key)
	}
	return s, nil
}

func integerField(fields map[string]any, key string, required bool) (int64, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("%w: %s is required", ErrInvalidFrame, key)
		}
		return 0, nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidFrame, key)
	}
	i, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidFrame, key)
	}
	return i, nil
}

func numberField(fields map[string]any, key string) (float64, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return 0, nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidFrame, key)
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidFrame, key)
	}
	return f, nil
}

package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iudanet/stockkeeper/internal/models"
)

// ErrMissingFields не заполнены обязательные поля
var ErrMissingFields = errors.New("please fill in all details")

// ErrInvalidField значение поля недопустимо
var ErrInvalidField = errors.New("invalid field")

// Statuses допустимые статусы позиции
var Statuses = []string{models.StatusAvailable, models.StatusReserved, models.StatusOutOfStock}

// ItemInput сырые значения формы (флаги CLI, интерактивный ввод)
type ItemInput struct {
	Name     string
	Status   string
	Quantity string
	Category string
	Supplier string
	Weight   string
}

// ParseItem проверяет форму и преобразует ее в Payload.
// Статус по умолчанию "available".
func ParseItem(in ItemInput) (models.Payload, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	supplier := strings.TrimSpace(in.Supplier)
	quantity := strings.TrimSpace(in.Quantity)
	weight := strings.TrimSpace(in.Weight)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", name},
		{"quantity", quantity},
		{"category", category},
		{"supplier", supplier},
		{"weight", weight},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return models.Payload{}, fmt.Errorf("%w: missing %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	q, err := strconv.ParseInt(quantity, 10, 64)
	if err != nil {
		return models.Payload{}, fmt.Errorf("%w: quantity must be an integer", ErrInvalidField)
	}
	w, err := strconv.ParseFloat(weight, 64)
	if err != nil {
		return models.Payload{}, fmt.Errorf("%w: weight must be a number", ErrInvalidField)
	}

	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = models.StatusAvailable
	}

	p := models.Payload{
		Name:     name,
		Status:   status,
		Category: category,
		Supplier: supplier,
		Quantity: q,
		Weight:   w,
	}
	if err := ValidatePayload(p); err != nil {
		return models.Payload{}, err
	}
	return p, nil
}

// ValidatePayload проверяет уже разобранную позицию
func ValidatePayload(p models.Payload) error {
	if p.Name == "" || p.Category == "" || p.Supplier == "" {
		return ErrMissingFields
	}
	if err := ValidateStatus(p.Status); err != nil {
		return err
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidField)
	}
	if p.Weight < 0 || math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) {
		return fmt.Errorf("%w: weight must be a non-negative number", ErrInvalidField)
	}
	return nil
}

// ValidateStatus проверяет статус позиции
func ValidateStatus(status string) error {
	for _, s := range Statuses {
		if status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: status must be one of %q", ErrInvalidField, Statuses)
}

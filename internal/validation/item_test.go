package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/stockkeeper/internal/models"
)

func validInput() ItemInput {
	return ItemInput{
		Name:     "Laptop",
		Quantity: "3",
		Category: "Electronics",
		Supplier: "Acme",
		Weight:   "1.5",
	}
}

func TestParseItem(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(in *ItemInput)
		wantErr error
		want    models.Payload
	}{
		{
			name:   "valid with default status",
			modify: func(in *ItemInput) {},
			want: models.Payload{
				Name: "Laptop", Status: models.StatusAvailable, Category: "Electronics",
				Supplier: "Acme", Quantity: 3, Weight: 1.5,
			},
		},
		{
			name:   "explicit status is normalized",
			modify: func(in *ItemInput) { in.Status = " Out Of Stock " },
			want: models.Payload{
				Name: "Laptop", Status: models.StatusOutOfStock, Category: "Electronics",
				Supplier: "Acme", Quantity: 3, Weight: 1.5,
			},
		},
		{
			name:    "missing name",
			modify:  func(in *ItemInput) { in.Name = "  " },
			wantErr: ErrMissingFields,
		},
		{
			name:    "missing weight",
			modify:  func(in *ItemInput) { in.Weight = "" },
			wantErr: ErrMissingFields,
		},
		{
			name:    "quantity not a number",
			modify:  func(in *ItemInput) { in.Quantity = "many" },
			wantErr: ErrInvalidField,
		},
		{
			name:    "weight not a number",
			modify:  func(in *ItemInput) { in.Weight = "heavy" },
			wantErr: ErrInvalidField,
		},
		{
			name:    "negative quantity",
			modify:  func(in *ItemInput) { in.Quantity = "-1" },
			wantErr: ErrInvalidField,
		},
		{
			name:    "unknown status",
			modify:  func(in *ItemInput) { in.Status = "lost" },
			wantErr: ErrInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)

			got, err := ParseItem(in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseItem_ListsMissingFields(t *testing.T) {
	_, err := ParseItem(ItemInput{Name: "Laptop"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity, category, supplier, weight")
}

func TestValidateStatus(t *testing.T) {
	for _, s := range Statuses {
		assert.NoError(t, ValidateStatus(s))
	}
	assert.ErrorIs(t, ValidateStatus(""), ErrInvalidField)
}

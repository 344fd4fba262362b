package domain_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"persol/internal/domain"
)

func TestProductInput_Validate(t *testing.T) {
	valid := domain.ProductInput{Name: "PO3019S", Price: decimal.RequireFromString("899.90"), StockQuantity: 3}

	tests := []struct {
		name  string
		input func(in domain.ProductInput) domain.ProductInput
		want  error
	}{
		{name: "válido", input: func(in domain.ProductInput) domain.ProductInput { return in }},
		{name: "nome em branco", input: func(in domain.ProductInput) domain.ProductInput { in.Name = "   "; return in }, want: domain.ErrProductNameRequired},
		{name: "nome longo", input: func(in domain.ProductInput) domain.ProductInput { in.Name = strings.Repeat("á", 201); return in }, want: domain.ErrProductNameTooLong},
		{name: "preço zero", input: func(in domain.ProductInput) domain.ProductInput { in.Price = decimal.Zero; return in }, want: domain.ErrInvalidPrice},
		{name: "três casas", input: func(in domain.ProductInput) domain.ProductInput { in.Price = decimal.RequireFromString("9.999"); return in }, want: domain.ErrInvalidPrice},
		{name: "zero à direita", input: func(in domain.ProductInput) domain.ProductInput { in.Price = decimal.RequireFromString("9.990"); return in }},
		{name: "estoque negativo", input: func(in domain.ProductInput) domain.ProductInput { in.StockQuantity = -1; return in }, want: domain.ErrNegativeStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input(valid).Normalize().Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProductInput_NormalizeDropsNonPositiveReferences(t *testing.T) {
	zero, brand := int64(0), int64(4)

	in := domain.ProductInput{Name: "  PO0649 ", BrandID: &brand, CategoryID: &zero}.Normalize()

	assert.Equal(t, "PO0649", in.Name)
	assert.Equal(t, &brand, in.BrandID)
	assert.Nil(t, in.CategoryID)
}

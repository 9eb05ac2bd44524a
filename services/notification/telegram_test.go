package notification

import (
	"testing"

	"marketplace/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutTokenIsNop(t *testing.T) {
	n, err := New("", []int64{1})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, n)

	n, err = New("token", nil)
	require.NoError(t, err)
	assert.IsType(t, Nop{}, n)
}

func TestFormatOrder(t *testing.T) {
	o := &models.Order{
		OrderNumber: "CMD-1-2",
		TotalPrice:  12500,
		PromoAmount: 500,
		ShippingAddress: models.ShippingAddress{
			Name: "Awa", Phone: "0708", Address: "Rue 12", City: "Abidjan",
		},
		Products: []models.OrderProduct{{Name: "Sac", Quantity: 2, Price: 6500}},
	}

	text := FormatOrder(o)
	assert.Contains(t, text, "CMD-1-2")
	assert.Contains(t, text, "Client: Awa (0708)")
	assert.Contains(t, text, "Adresse: Rue 12, Abidjan")
	assert.Contains(t, text, "Sac x2 - 13000")
	assert.Contains(t, text, "Promo: -500")
	assert.Contains(t, text, "Total: 12500 FCFA")
}

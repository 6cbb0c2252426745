package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ticketgenie/internal/models"
	"ticketgenie/internal/pricing"
)

func TestTotalIsLinear(t *testing.T) {
	show := &models.Show{ID: 1, Name: "Dune", Price: 200}

	single := pricing.Total(show, 1)
	for n := 1; n <= 10; n++ {
		assert.Equal(t, float64(n)*single, pricing.Total(show, n))
	}
	assert.Equal(t, 400.0, pricing.Total(show, 2))
}

func TestTotalDegenerateInputs(t *testing.T) {
	show := &models.Show{ID: 1, Price: 150}

	assert.Equal(t, 0.0, pricing.Total(nil, 3))
	assert.Equal(t, 0.0, pricing.Total(show, 0))
	assert.Equal(t, 0.0, pricing.Total(show, -2))
}

// Package pricing computes booking totals. Prices are linear in the ticket
// count; there are no discounts or fees.
package pricing

import "ticketgenie/internal/models"

func Total(show *models.Show, ticketCount int) float64 {
	if show == nil || ticketCount <= 0 {
		return 0
	}
	return show.Price * float64(ticketCount)
}

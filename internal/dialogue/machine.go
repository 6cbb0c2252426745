// Package dialogue implements the conversational booking state machine.
// One user input drives exactly one transition: the machine reads the
// session state, runs the matching handler, appends the user turn and the
// assistant reply to the transcript, and moves to the next state.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ticketgenie/internal/logger"
	"ticketgenie/internal/models"
	"ticketgenie/internal/pricing"
)

const (
	replyGenericFailure = "⚠️ Something went wrong on our side. Please try again."
	replyMoviePrompt    = "Please enter a valid numeric movie ID."
	replyTicketPrompt   = "Please enter a valid number for tickets."
	replyContactPrompt  = "Please enter **Name, Email, and Phone** properly, separated by commas."
	replyBookingPrompt  = "Please enter a valid Booking ID."
	replyDeleteAsk      = "Please enter the Booking ID you want to delete."
	replyClosing        = "Alright! Thanks for using our service! 🎬✨"
	replyDeleteOffer    = "\n\n❓ Do you want to delete any ticket? (yes/no)"
	replyDeliveryWarn   = "\n\n⚠️ We could not email your ticket right now; your booking is confirmed and the ticket can be downloaded here."
)

type Catalog interface {
	ListShows(ctx context.Context) ([]models.Show, error)
	GetShow(ctx context.Context, id int64) (*models.Show, error)
}

type Issuer interface {
	Issue(ctx context.Context, showID int64, ticketCount int, name, email, phone string) (*models.BookingReceipt, error)
	Cancel(ctx context.Context, bookingID int64) error
}

// Responder handles free text the machine has no structured expectation
// for.
type Responder interface {
	Respond(text string) string
}

type Machine struct {
	Catalog  Catalog
	Issuer   Issuer
	Fallback Responder
	Logger   *logger.Logger
}

func NewMachine(catalog Catalog, issuer Issuer, fallback Responder, log *logger.Logger) *Machine {
	return &Machine{Catalog: catalog, Issuer: issuer, Fallback: fallback, Logger: log}
}

// Handle evaluates one input against the session's current state. It
// appends the user turn, then the assistant turn, in that order.
func (m *Machine) Handle(ctx context.Context, sess *Session, input string) models.ChatResponse {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.appendTurn(models.RoleUser, input)

	var reply string
	var bookingID int64

	switch sess.State {
	case StateIdle:
		reply = m.handleIdle(ctx, sess, input)
	case StateAwaitingMovieID:
		reply = m.handleMovieID(ctx, sess, input)
	case StateAwaitingTicketCount:
		reply = m.handleTicketCount(sess, input)
	case StateAwaitingContactInfo:
		reply, bookingID = m.handleContactInfo(ctx, sess, input)
	case StateAwaitingDeleteConfirm:
		reply = m.handleDeleteConfirm(sess, input)
	case StateAwaitingBookingIDToDelete:
		reply = m.handleBookingIDToDelete(ctx, sess, input)
	default:
		sess.resetFlow()
		reply = replyGenericFailure
	}

	sess.appendTurn(models.RoleAssistant, reply)
	if m.Logger != nil {
		m.Logger.LogDialogue(sess.ID, sess.State.String(), fmt.Sprintf("%d transcript turns", len(sess.Transcript)))
	}

	return models.ChatResponse{
		Reply:     reply,
		State:     sess.State.String(),
		BookingID: bookingID,
	}
}

func (m *Machine) handleIdle(ctx context.Context, sess *Session, input string) string {
	lowered := strings.ToLower(input)
	if strings.Contains(lowered, "book movie") || strings.Contains(lowered, "book ticket") || strings.Contains(lowered, "book a movie") {
		shows, err := m.Catalog.ListShows(ctx)
		if err != nil {
			return replyGenericFailure
		}
		sess.State = StateAwaitingMovieID
		return formatShowList(shows)
	}
	return m.Fallback.Respond(input)
}

func (m *Machine) handleMovieID(ctx context.Context, sess *Session, input string) string {
	id, ok := parseNumber(input)
	if !ok {
		return replyMoviePrompt
	}

	show, err := m.Catalog.GetShow(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return "💔 Invalid movie ID. Please try again."
	}
	if err != nil {
		return replyGenericFailure
	}

	if show.AvailableSeats == 0 {
		// The id is deliberately not remembered; the user picks again.
		return fmt.Sprintf("💔 Sorry, **%s** has **no available seats**. Please select another movie.", show.Name)
	}

	sess.SelectedShow = show
	sess.State = StateAwaitingTicketCount
	return fmt.Sprintf("You selected **%s**.\n\nHow many tickets would you like to book? (Available: %d)", show.Name, show.AvailableSeats)
}

func (m *Machine) handleTicketCount(sess *Session, input string) string {
	n, ok := parseNumber(input)
	if !ok {
		return replyTicketPrompt
	}

	available := sess.SelectedShow.AvailableSeats
	if n < 1 || n > int64(available) {
		return fmt.Sprintf("⚠️ Please enter a number between 1 and %d.", available)
	}

	sess.TicketCount = int(n)
	total := pricing.Total(sess.SelectedShow, sess.TicketCount)
	sess.State = StateAwaitingContactInfo
	return fmt.Sprintf("Great! The total price for %d tickets is ₹%.0f. Now, please enter your **Name, Email, and Phone**, separated by commas.", sess.TicketCount, total)
}

func (m *Machine) handleContactInfo(ctx context.Context, sess *Session, input string) (string, int64) {
	parts := strings.Split(input, ",")
	if len(parts) != 3 {
		return replyContactPrompt, 0
	}
	name := strings.TrimSpace(parts[0])
	email := strings.TrimSpace(parts[1])
	phone := strings.TrimSpace(parts[2])

	receipt, err := m.Issuer.Issue(ctx, sess.SelectedShow.ID, sess.TicketCount, name, email, phone)
	switch {
	case errors.Is(err, models.ErrValidation):
		return replyContactPrompt, 0
	case errors.Is(err, models.ErrCapacity):
		return "💔 Sorry, those seats were just taken. Please try a smaller number or another movie.", 0
	case errors.Is(err, models.ErrDelivery):
		// The booking itself succeeded; confirm it and warn about the mail.
		sess.LastBookingID = receipt.BookingID
		sess.State = StateAwaitingDeleteConfirm
		return confirmationReply(receipt) + replyDeliveryWarn + replyDeleteOffer, receipt.BookingID
	case err != nil:
		return replyGenericFailure, 0
	}

	sess.LastBookingID = receipt.BookingID
	sess.State = StateAwaitingDeleteConfirm
	return confirmationReply(receipt) + replyDeleteOffer, receipt.BookingID
}

func (m *Machine) handleDeleteConfirm(sess *Session, input string) string {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "yes", "y":
		sess.State = StateAwaitingBookingIDToDelete
		if sess.LastBookingID != 0 {
			return fmt.Sprintf("%s (Your last booking ID is %d.)", replyDeleteAsk, sess.LastBookingID)
		}
		return replyDeleteAsk
	default:
		sess.resetFlow()
		return replyClosing
	}
}

func (m *Machine) handleBookingIDToDelete(ctx context.Context, sess *Session, input string) string {
	id, ok := parseNumber(input)
	if !ok {
		return replyBookingPrompt
	}

	err := m.Issuer.Cancel(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		sess.resetFlow()
		return fmt.Sprintf("💔 No booking found with ID %d.", id)
	}
	if err != nil {
		return replyGenericFailure
	}

	sess.resetFlow()
	return fmt.Sprintf("✅ Successfully deleted booking with ID %d!", id)
}

func parseNumber(input string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatShowList(shows []models.Show) string {
	if len(shows) == 0 {
		return "There are no movies on right now. Please check back later."
	}
	var b strings.Builder
	b.WriteString("Here are the available movies:\n\n")
	for _, s := range shows {
		fmt.Fprintf(&b, "%d. %s (%s, Rating: %.1f, Date: %s Showtime: %s, Price: %.0f, Available Seats: %d)\n",
			s.ID, s.Name, s.Genre, s.Rating, s.Date.Format("02-Jan-2006"), s.Showtime, s.Price, s.AvailableSeats)
	}
	b.WriteString("\nPlease enter the **Movie ID** to book.")
	return b.String()
}

func confirmationReply(receipt *models.BookingReceipt) string {
	return fmt.Sprintf(
		"📧 **Booking Successful!**\n🆔 Booking ID: %d\n🎬 Movie: %s\n📅 Date: %s\n⏰ Time: %s\n👤 Name: %s\n📧 Email: %s\n📞 Phone: %s",
		receipt.BookingID,
		receipt.Movie,
		receipt.ShowDate.Format("02-Jan-2006"),
		receipt.Showtime,
		receipt.Name,
		receipt.Email,
		receipt.Phone,
	)
}

// Package issuance turns a confirmed dialogue into a booking: the ledger
// insert, the seat decrement, the rendered ticket and the email dispatch
// form one logical operation with a defined consistency contract. The
// booking row and the seat decrement either both happen or neither does;
// rendering and delivery are best-effort post-commit steps.
package issuance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ticketgenie/internal/config"
	"ticketgenie/internal/logger"
	"ticketgenie/internal/models"
	"ticketgenie/internal/pricing"
)

type CatalogStore interface {
	GetShow(ctx context.Context, id int64) (*models.Show, error)
	ReserveSeats(ctx context.Context, id int64, n int) error
	ReleaseSeats(ctx context.Context, id int64, n int) error
}

type BookingLedger interface {
	Insert(ctx context.Context, booking *models.Booking) error
	Get(ctx context.Context, id int64) (*models.Booking, error)
	Delete(ctx context.Context, id int64) error
}

type ShowLock interface {
	LockShow(ctx context.Context, showID int64, token string) (bool, error)
	UnlockShow(ctx context.Context, showID int64, token string) error
}

type Renderer interface {
	Render(receipt models.BookingReceipt) ([]byte, error)
}

type Notifier interface {
	Send(ctx context.Context, recipient string, document []byte, filename string) error
}

type EventPublisher interface {
	Publish(topic string, key string, value []byte) error
}

type Service struct {
	Catalog  CatalogStore
	Ledger   BookingLedger
	Lock     ShowLock
	Renderer Renderer
	Notifier Notifier
	Events   EventPublisher
	Topics   config.TopicConfig
	Logger   *logger.Logger

	// DeliveryTimeout bounds the render+send tail of an issuance.
	DeliveryTimeout time.Duration
}

func NewService(catalog CatalogStore, ledger BookingLedger, lock ShowLock, renderer Renderer, notifier Notifier, events EventPublisher, topics config.TopicConfig, log *logger.Logger) *Service {
	return &Service{
		Catalog:         catalog,
		Ledger:          ledger,
		Lock:            lock,
		Renderer:        renderer,
		Notifier:        notifier,
		Events:          events,
		Topics:          topics,
		Logger:          log,
		DeliveryTimeout: 15 * time.Second,
	}
}

// Issue books ticketCount seats on the show for the given contact. On an
// ErrDelivery return the receipt is still valid: the reservation holds,
// only the ticket document failed to reach the customer.
func (s *Service) Issue(ctx context.Context, showID int64, ticketCount int, name, email, phone string) (*models.BookingReceipt, error) {
	if ticketCount <= 0 {
		return nil, fmt.Errorf("ticket count %d: %w", ticketCount, models.ErrValidation)
	}
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required: %w", models.ErrValidation)
	}

	// Re-validate against a fresh read; the dialogue's selected show may be
	// stale by the time the contact info arrives.
	show, err := s.Catalog.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	if ticketCount > show.AvailableSeats {
		return nil, fmt.Errorf("show %d has %d seats left: %w", showID, show.AvailableSeats, models.ErrCapacity)
	}

	// The show lock shortens the race window across processes. Losing it is
	// not fatal: the conditional decrement below is the actual guarantee.
	token := uuid.NewString()
	if s.Lock != nil {
		locked, lockErr := s.Lock.LockShow(ctx, showID, token)
		if lockErr != nil {
			s.Logger.Warn("LOCK", fmt.Sprintf("show %d lock unavailable: %v", showID, lockErr))
		} else if locked {
			defer func() {
				if unlockErr := s.Lock.UnlockShow(ctx, showID, token); unlockErr != nil {
					s.Logger.Warn("LOCK", fmt.Sprintf("show %d unlock failed: %v", showID, unlockErr))
				}
			}()
		}
	}

	booking := &models.Booking{
		Name:        name,
		Email:       email,
		Phone:       phone,
		ShowID:      showID,
		TicketCount: ticketCount,
		CreatedAt:   time.Now(),
	}
	if err := s.Ledger.Insert(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.Catalog.ReserveSeats(ctx, showID, ticketCount); err != nil {
		// The booking row must not outlive a refused reservation.
		if delErr := s.Ledger.Delete(ctx, booking.BookingID); delErr != nil {
			s.Logger.Error("BOOKING", fmt.Sprintf("orphaned booking %d after reserve failure: %v", booking.BookingID, delErr))
		}
		return nil, err
	}

	receipt := &models.BookingReceipt{
		BookingID:   booking.BookingID,
		Name:        name,
		Email:       email,
		Phone:       phone,
		Movie:       show.Name,
		ShowDate:    show.Date,
		Showtime:    show.Showtime,
		TicketCount: ticketCount,
		TotalPrice:  pricing.Total(show, ticketCount),
		CreatedAt:   booking.CreatedAt,
	}

	s.Logger.LogBooking("ISSUE", booking.BookingID, fmt.Sprintf("%d tickets for %q to %s", ticketCount, show.Name, email))
	s.publish(s.Topics.BookingCreated, receipt)

	if err := s.deliver(ctx, receipt); err != nil {
		// The reservation already holds; report the failed delivery and
		// leave the booking and seats as they are.
		return receipt, err
	}
	return receipt, nil
}

func (s *Service) deliver(ctx context.Context, receipt *models.BookingReceipt) error {
	ctx, cancel := context.WithTimeout(ctx, s.DeliveryTimeout)
	defer cancel()

	document, err := s.Renderer.Render(*receipt)
	if err != nil {
		s.Logger.Error("DELIVERY", fmt.Sprintf("render for booking %d failed: %v", receipt.BookingID, err))
		return fmt.Errorf("%w: render: %v", models.ErrDelivery, err)
	}

	if err := s.Notifier.Send(ctx, receipt.Email, document, Filename(receipt.Name)); err != nil {
		s.Logger.Error("DELIVERY", fmt.Sprintf("send for booking %d failed: %v", receipt.BookingID, err))
		if errors.Is(err, models.ErrDelivery) {
			return err
		}
		return fmt.Errorf("%w: send: %v", models.ErrDelivery, err)
	}

	s.Logger.LogDelivery(receipt.Email, fmt.Sprintf("ticket for booking %d sent", receipt.BookingID))
	return nil
}

// Cancel deletes a booking and restores the show's seats by the booking's
// own stored ticket count, never by anything the caller supplies.
func (s *Service) Cancel(ctx context.Context, bookingID int64) error {
	booking, err := s.Ledger.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := s.Ledger.Delete(ctx, bookingID); err != nil {
		return err
	}
	if err := s.Catalog.ReleaseSeats(ctx, booking.ShowID, booking.TicketCount); err != nil {
		s.Logger.Error("BOOKING", fmt.Sprintf("cancel %d: seats not released for show %d: %v", bookingID, booking.ShowID, err))
		return err
	}

	s.Logger.LogBooking("CANCEL", bookingID, fmt.Sprintf("%d seats restored to show %d", booking.TicketCount, booking.ShowID))
	s.publish(s.Topics.BookingCancelled, &models.BookingReceipt{
		BookingID:   booking.BookingID,
		Name:        booking.Name,
		Email:       booking.Email,
		Phone:       booking.Phone,
		TicketCount: booking.TicketCount,
		CreatedAt:   booking.CreatedAt,
	})
	return nil
}

func (s *Service) publish(topic string, receipt *models.BookingReceipt) {
	if s.Events == nil || topic == "" {
		return
	}
	value, err := json.Marshal(receipt)
	if err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("marshal booking %d event: %v", receipt.BookingID, err))
		return
	}
	if err := s.Events.Publish(topic, fmt.Sprintf("%d", receipt.BookingID), value); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("publish %s for booking %d: %v", topic, receipt.BookingID, err))
	}
}

// Filename names the emailed attachment after the customer, the way the
// printed stubs are labeled.
func Filename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	if cleaned == "" {
		cleaned = "customer"
	}
	return fmt.Sprintf("ticket_%s.pdf", cleaned)
}

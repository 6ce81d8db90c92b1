package service

import (
	"context"

	"resortdesk/internal/domain"
	"resortdesk/internal/events"
	"resortdesk/internal/models"
	"resortdesk/internal/validation"

	"github.com/rs/zerolog"
)

type CartService struct {
	repo     domain.CartRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewCartService(repo domain.CartRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *CartService {
	return &CartService{repo: repo, eventBus: eventBus, logger: logger}
}

func (s *CartService) List(ctx context.Context) ([]*models.CartItem, error) {
	return s.repo.ListCartItems(ctx)
}

func (s *CartService) Add(ctx context.Context, in models.CartItemInput) (*models.CartItem, error) {
	item, errs := validation.CartItem(in)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if err := s.repo.AddCartItem(ctx, &item); err != nil {
		return nil, err
	}
	s.publish(events.EventCartItemAdded, events.CartEventPayload{ItemID: item.ItemID, Quantity: item.Quantity})
	return &item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, itemID string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, validation.Errors{"quantity": "Quantity must be at least 1"}
	}
	item, err := s.repo.UpdateCartQuantity(ctx, itemID, quantity)
	if err != nil {
		return nil, err
	}
	s.publish(events.EventCartItemUpdated, events.CartEventPayload{ItemID: itemID, Quantity: quantity})
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, itemID string) error {
	if err := s.repo.DeleteCartItem(ctx, itemID); err != nil {
		return err
	}
	s.publish(events.EventCartItemRemoved, events.CartEventPayload{ItemID: itemID})
	return nil
}

func (s *CartService) Clear(ctx context.Context) (int64, error) {
	removed, err := s.repo.ClearCart(ctx)
	if err != nil {
		return 0, err
	}
	s.publish(events.EventCartCleared, events.CartEventPayload{Removed: removed})
	return removed, nil
}

// Total sums price times quantity over the cart.
func (s *CartService) Total(ctx context.Context) (models.CartTotal, error) {
	items, err := s.repo.ListCartItems(ctx)
	if err != nil {
		return models.CartTotal{}, err
	}
	total := models.CartTotal{}
	for _, item := range items {
		total.Items += item.Quantity
		total.Total += item.Subtotal()
	}
	return total, nil
}

func (s *CartService) publish(eventType string, payload events.CartEventPayload) {
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}

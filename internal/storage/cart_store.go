package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/lumera/internal/models"
)

const (
	cartKeyPrefix = "lumera:cart:"
	// Every read and write slides the TTL; an untouched cart evaporates.
	cartTTL = 5 * time.Minute
)

// CartStore keeps carts in Redis as JSON blobs keyed per customer.
type CartStore struct {
	client *redis.Client
}

func NewCartStore(client *redis.Client) *CartStore {
	return &CartStore{client: client}
}

func cartKey(customerID uuid.UUID) string {
	return cartKeyPrefix + customerID.String()
}

// Get returns the customer's cart, or an empty cart when none is stored.
// A hit refreshes the TTL.
func (s *CartStore) Get(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	key := cartKey(customerID)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &models.Cart{}, nil
		}
		return nil, fmt.Errorf("get cart %s: %w", key, err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", key, err)
	}

	s.client.Expire(ctx, key, cartTTL)
	return &cart, nil
}

func (s *CartStore) Save(ctx context.Context, customerID uuid.UUID, cart *models.Cart) error {
	if cart == nil || len(cart.Items) == 0 {
		return s.Clear(ctx, customerID)
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.client.Set(ctx, cartKey(customerID), data, cartTTL).Err()
}

// RemoveItems drops the given products from the cart, keeping the rest.
func (s *CartStore) RemoveItems(ctx context.Context, customerID uuid.UUID, productIDs []uuid.UUID) error {
	cart, err := s.Get(ctx, customerID)
	if err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		return nil
	}

	drop := make(map[uuid.UUID]bool, len(productIDs))
	for _, id := range productIDs {
		drop[id] = true
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if !drop[item.ProductID] {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	return s.Save(ctx, customerID, cart)
}

func (s *CartStore) Clear(ctx context.Context, customerID uuid.UUID) error {
	return s.client.Del(ctx, cartKey(customerID)).Err()
}

package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"golang.org/x/sync/singleflight"
)

type Service struct {
	repo  Repository
	cache Cache
	sfg   singleflight.Group // collapses concurrent cache misses per user
}

func NewService(repo Repository, cache Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// GetCart returns the user's cart, an empty cart if none exists yet.
func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errors.Is(errGet, ErrCartNotFound) {
			return &domain.Cart{
				UserID:    userID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *Service) AddItem(ctx context.Context, userID string, item domain.CartItem) error {
	if err := s.repo.AddItem(ctx, userID, item); err != nil {
		log.Printf("repo add item error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) UpdateQuantity(ctx context.Context, userID string, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	if err := s.repo.UpdateItemQuantity(ctx, userID, productID, quantity); err != nil {
		log.Printf("repo update item quantity error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) RemoveItem(ctx context.Context, userID string, productID string) error {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		log.Printf("repo remove item error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// ClearCart empties the user's cart. The checkout flow calls this after a
// ledger write that fulfilled at least one line.
func (s *Service) ClearCart(ctx context.Context, userID string) error {
	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

package wishlist

import (
	"context"
	"fmt"
	"time"

	"github.com/aarsha-api/internal/domain"
)

// Store is the wishlist persistence the service needs.
type Store interface {
	Put(ctx context.Context, item *domain.WishlistItem) error
	ListByEmail(ctx context.Context, email string) ([]domain.WishlistItem, error)
	Delete(ctx context.Context, email, bookID string) error
}

// BookGetter checks referential existence of a book before it is saved.
type BookGetter interface {
	Get(ctx context.Context, bookID string) (*domain.Book, error)
}

type Service interface {
	Add(ctx context.Context, email, bookID string) (*domain.WishlistItem, error)
	List(ctx context.Context, email string) ([]domain.WishlistItem, error)
	Remove(ctx context.Context, email, bookID string) error
}

type ServiceDeps struct {
	Store Store
	Books BookGetter
	Now   func() time.Time // defaults to time.Now
}

type service struct {
	store Store
	books BookGetter
	now   func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{store: deps.Store, books: deps.Books, now: deps.Now}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Add(ctx context.Context, email, bookID string) (*domain.WishlistItem, error) {
	if bookID == "" {
		return nil, fmt.Errorf("book id is required: %w", domain.ErrBadRequest)
	}
	if _, err := s.books.Get(ctx, bookID); err != nil {
		return nil, err
	}
	item := &domain.WishlistItem{
		Email:   email,
		BookID:  bookID,
		AddedAt: s.now().UTC(),
	}
	if err := s.store.Put(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) List(ctx context.Context, email string) ([]domain.WishlistItem, error) {
	return s.store.ListByEmail(ctx, email)
}

func (s *service) Remove(ctx context.Context, email, bookID string) error {
	if bookID == "" {
		return fmt.Errorf("book id is required: %w", domain.ErrBadRequest)
	}
	return s.store.Delete(ctx, email, bookID)
}

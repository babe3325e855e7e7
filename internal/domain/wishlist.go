package domain

import "time"

// WishlistItem marks a book saved by a user.
// PK: email, SK: book_id.
type WishlistItem struct {
	Email   string    `json:"email" dynamodbav:"email"`
	BookID  string    `json:"book_id" dynamodbav:"book_id"`
	AddedAt time.Time `json:"added" dynamodbav:"added_at"`
}

type AddWishlistRequest struct {
	BookID string `json:"book_id" validate:"required"`
}

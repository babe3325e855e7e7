package domain

import "time"

// Book is a catalog entry. CoverKey is the stored object key of the cover
// image; CoverURL is resolved from it at read time and never persisted.
type Book struct {
	BookID    string    `json:"id" dynamodbav:"book_id"`
	Title     string    `json:"title" dynamodbav:"title"`
	Author    string    `json:"author" dynamodbav:"author"`
	Year      int       `json:"year" dynamodbav:"year"`
	CoverKey  *string   `json:"-" dynamodbav:"cover_key"`
	CoverURL  *string   `json:"cover_url,omitempty" dynamodbav:"-"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateBookRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Year   int    `json:"year" validate:"required"`
}

type UpdateBookRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Year   *int    `json:"year"`
}

package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aarsha-api/internal/domain"
	"github.com/aarsha-api/internal/pkg/id"
	"github.com/aarsha-api/internal/pkg/validate"
)

// coverURLTTL bounds how long a resolved cover link stays fetchable.
const coverURLTTL = 15 * time.Minute

// BookStore is the book persistence the service needs.
type BookStore interface {
	Put(ctx context.Context, b *domain.Book) error
	Get(ctx context.Context, bookID string) (*domain.Book, error)
	Scan(ctx context.Context) ([]domain.Book, error)
	Update(ctx context.Context, bookID string, updates map[string]interface{}) error
}

// ChapterStore is the chapter persistence the service needs.
type ChapterStore interface {
	Put(ctx context.Context, c *domain.Chapter) error
	ListByBook(ctx context.Context, bookID string) ([]domain.Chapter, error)
	UpdateTitle(ctx context.Context, bookID string, pageNumber int, title string) error
}

// ChapterDetailStore is the chapter-detail persistence the service needs.
type ChapterDetailStore interface {
	Get(ctx context.Context, bookID, chapterID string) (*domain.ChapterDetail, error)
	Upsert(ctx context.Context, d *domain.ChapterDetail) (created bool, err error)
}

// CoverStore holds cover images. Objects are private; reads go through
// time-limited links resolved per request.
type CoverStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
	CreateBook(ctx context.Context, req domain.CreateBookRequest) (*domain.Book, error)
	UpdateBook(ctx context.Context, bookID string, req domain.UpdateBookRequest) error
	SetCover(ctx context.Context, bookID, filename, contentType string, r io.Reader) (string, error)

	ListChapters(ctx context.Context, bookID string) ([]domain.Chapter, error)
	AddChapter(ctx context.Context, req domain.AddChapterRequest) (*domain.Chapter, error)
	UpdateChapterTitle(ctx context.Context, bookID string, pageNumber int, title string) error

	GetChapterDetail(ctx context.Context, bookID, chapterID string) (*domain.ChapterDetail, error)
	UpsertChapterDetail(ctx context.Context, req domain.UpsertChapterDetailRequest) (created bool, err error)
}

type ServiceDeps struct {
	Books    BookStore
	Chapters ChapterStore
	Details  ChapterDetailStore
	Covers   CoverStore
	Now      func() time.Time // defaults to time.Now
}

type service struct {
	books    BookStore
	chapters ChapterStore
	details  ChapterDetailStore
	covers   CoverStore
	now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		books:    deps.Books,
		chapters: deps.Chapters,
		details:  deps.Details,
		covers:   deps.Covers,
		now:      deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ListBooks returns all books with their cover keys resolved to fetchable
// links. A failed resolution drops the link, not the book.
func (s *service) ListBooks(ctx context.Context) ([]domain.Book, error) {
	books, err := s.books.Scan(ctx)
	if err != nil {
		return nil, err
	}
	for i := range books {
		if books[i].CoverKey == nil {
			continue
		}
		url, err := s.covers.PresignedURL(ctx, *books[i].CoverKey, coverURLTTL)
		if err != nil {
			slog.Warn("could not resolve cover link", "book_id", books[i].BookID, "err", err)
			continue
		}
		books[i].CoverURL = &url
	}
	return books, nil
}

func (s *service) CreateBook(ctx context.Context, req domain.CreateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	now := s.now().UTC()
	b := &domain.Book{
		BookID:    id.New(),
		Title:     req.Title,
		Author:    req.Author,
		Year:      req.Year,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.books.Put(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) UpdateBook(ctx context.Context, bookID string, req domain.UpdateBookRequest) error {
	if bookID == "" {
		return fmt.Errorf("book id is required: %w", domain.ErrBadRequest)
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Author != nil {
		updates["author"] = *req.Author
	}
	if req.Year != nil {
		updates["year"] = *req.Year
	}
	if len(updates) == 0 {
		return fmt.Errorf("no updatable fields in request: %w", domain.ErrBadRequest)
	}
	updates["updated_at"] = s.now().UTC().Format(time.RFC3339)
	return s.books.Update(ctx, bookID, updates)
}

// SetCover uploads the image, records its key on the book, removes the
// object it replaced and returns a fetchable link to the new cover.
func (s *service) SetCover(ctx context.Context, bookID, filename, contentType string, r io.Reader) (string, error) {
	b, err := s.books.Get(ctx, bookID)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("covers/%s/%s", bookID, sanitizeFilename(filename))
	if _, err := s.covers.Upload(ctx, key, r, contentType); err != nil {
		return "", err
	}
	if err := s.books.Update(ctx, bookID, map[string]interface{}{
		"cover_key":  key,
		"updated_at": s.now().UTC().Format(time.RFC3339),
	}); err != nil {
		return "", err
	}
	if b.CoverKey != nil && *b.CoverKey != key {
		// The old object is unreferenced now; losing the delete only leaks
		// storage, so it does not fail the request.
		if err := s.covers.Delete(ctx, *b.CoverKey); err != nil {
			slog.Warn("could not delete replaced cover", "book_id", bookID, "key", *b.CoverKey, "err", err)
		}
	}
	return s.covers.PresignedURL(ctx, key, coverURLTTL)
}

func (s *service) ListChapters(ctx context.Context, bookID string) ([]domain.Chapter, error) {
	if bookID == "" {
		return nil, fmt.Errorf("book id is required: %w", domain.ErrBadRequest)
	}
	chapters, err := s.chapters.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("no chapters found for book %s: %w", bookID, domain.ErrNotFound)
	}
	return chapters, nil
}

func (s *service) AddChapter(ctx context.Context, req domain.AddChapterRequest) (*domain.Chapter, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	c := &domain.Chapter{
		BookID:     req.BookID,
		Title:      req.Title,
		PageNumber: *req.PageNumber,
	}
	if err := s.chapters.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) UpdateChapterTitle(ctx context.Context, bookID string, pageNumber int, title string) error {
	if bookID == "" || title == "" {
		return fmt.Errorf("book id and title are required: %w", domain.ErrBadRequest)
	}
	return s.chapters.UpdateTitle(ctx, bookID, pageNumber, title)
}

func (s *service) GetChapterDetail(ctx context.Context, bookID, chapterID string) (*domain.ChapterDetail, error) {
	if bookID == "" || chapterID == "" {
		return nil, fmt.Errorf("book id and chapter id are required: %w", domain.ErrBadRequest)
	}
	return s.details.Get(ctx, bookID, chapterID)
}

func (s *service) UpsertChapterDetail(ctx context.Context, req domain.UpsertChapterDetailRequest) (bool, error) {
	if err := validate.Struct(&req); err != nil {
		return false, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	return s.details.Upsert(ctx, &domain.ChapterDetail{
		BookID:          req.BookID,
		ChapterID:       req.ChapterID,
		Title:           req.Title,
		TotalPages:      *req.TotalPages,
		BackgroundImage: req.BackgroundImage,
		ChapterDetails:  req.ChapterDetails,
	})
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	if name == "" {
		name = "cover"
	}
	return name
}

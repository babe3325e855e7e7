package domain

// Chapter is one entry in a book's table of contents.
// PK: book_id, SK: page_number. A book has at most one chapter per page.
type Chapter struct {
	BookID     string `json:"book_id" dynamodbav:"book_id"`
	PageNumber int    `json:"pageNumber" dynamodbav:"page_number"`
	Title      string `json:"title" dynamodbav:"title"`
}

type AddChapterRequest struct {
	BookID     string `json:"book_id" validate:"required"`
	Title      string `json:"title" validate:"required"`
	PageNumber *int   `json:"pageNumber" validate:"required"`
}

// ChapterDetail holds the reader payload for a single chapter.
// PK: book_id, SK: chapter_id.
type ChapterDetail struct {
	BookID          string `json:"bookId" dynamodbav:"book_id"`
	ChapterID       string `json:"chapterId" dynamodbav:"chapter_id"`
	Title           string `json:"title" dynamodbav:"title"`
	TotalPages      int    `json:"totalPages" dynamodbav:"total_pages"`
	BackgroundImage string `json:"backgroundImage" dynamodbav:"background_image"`
	ChapterDetails  string `json:"chapterDetails" dynamodbav:"chapter_details"`
}

type UpsertChapterDetailRequest struct {
	ChapterID       string `json:"chapterId" validate:"required"`
	BookID          string `json:"bookId" validate:"required"`
	Title           string `json:"title" validate:"required"`
	TotalPages      *int   `json:"totalPages" validate:"required"`
	BackgroundImage string `json:"backgroundImage" validate:"required"`
	ChapterDetails  string `json:"chapterDetails" validate:"required"`
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aarsha-api/internal/application/catalog"
	"github.com/aarsha-api/internal/domain"
	s3infra "github.com/aarsha-api/internal/infrastructure/s3"
	"github.com/go-chi/chi/v5"
)

// maxCoverSize caps cover uploads at 5 MiB.
const maxCoverSize = 5 << 20

// CatalogHandler handles book, chapter and chapter-detail endpoints.
type CatalogHandler struct {
	svc catalog.Service
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler { return &CatalogHandler{svc: svc} }

func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooks(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	if books == nil {
		books = []domain.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *CatalogHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b, err := h.svc.CreateBook(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Message string `json:"message"`
		BookID  string `json:"bookId"`
	}{Message: "Book created successfully", BookID: b.BookID})
}

func (h *CatalogHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.UpdateBook(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Book updated successfully"})
}

func (h *CatalogHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxCoverSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("cover")
	if err != nil {
		writeError(w, http.StatusBadRequest, "cover file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = s3infra.DetectContentType(header.Filename)
	}
	url, err := h.svc.SetCover(r.Context(), chi.URLParam(r, "id"), header.Filename, contentType, file)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message  string `json:"message"`
		CoverURL string `json:"cover_url"`
	}{Message: "Cover uploaded successfully", CoverURL: url})
}

func (h *CatalogHandler) ListChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := h.svc.ListChapters(r.Context(), chi.URLParam(r, "bookId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chapters)
}

func (h *CatalogHandler) AddChapter(w http.ResponseWriter, r *http.Request) {
	var req domain.AddChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := h.svc.AddChapter(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Message string `json:"message"`
		BookID  string `json:"book_id"`
		Page    int    `json:"pageNumber"`
	}{Message: "Chapter added successfully", BookID: c.BookID, Page: c.PageNumber})
}

func (h *CatalogHandler) UpdateChapter(w http.ResponseWriter, r *http.Request) {
	pageNumber, err := strconv.Atoi(chi.URLParam(r, "pageNumber"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page number")
		return
	}
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.UpdateChapterTitle(r.Context(), chi.URLParam(r, "bookId"), pageNumber, body.Title); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Chapter updated successfully"})
}

func (h *CatalogHandler) GetChapterDetail(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetChapterDetail(r.Context(), chi.URLParam(r, "bookId"), chi.URLParam(r, "chapterId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *CatalogHandler) UpsertChapterDetail(w http.ResponseWriter, r *http.Request) {
	var req domain.UpsertChapterDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.UpsertChapterDetail(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	if created {
		writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "Chapter details created successfully"})
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Chapter details updated successfully"})
}

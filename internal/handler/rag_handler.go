package handler

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/docqa-ai/docqa/internal/domain"
	"github.com/docqa-ai/docqa/internal/port"
	"github.com/docqa-ai/docqa/internal/service"
)

// RAGHandler exposes the document question-answering endpoints.
type RAGHandler struct {
	rag        *service.RAGService
	extractors map[string]port.Extractor // keyed by lowercase file extension
}

// NewRAGHandler creates a handler. extractors maps file extensions
// (".pdf", ".zip") to the document extractor handling them.
func NewRAGHandler(rag *service.RAGService, extractors map[string]port.Extractor) *RAGHandler {
	return &RAGHandler{rag: rag, extractors: extractors}
}

// Register sets up the routes.
func (h *RAGHandler) Register(router fiber.Router) {
	router.Post("/documents", h.Upload)
	router.Post("/ask", h.Ask)
}

// Ask answers a question against the already-ingested documents.
func (h *RAGHandler) Ask(c fiber.Ctx) error {
	var body struct {
		Question string `json:"question"`
		TopK     int    `json:"top_k"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Question) == "" {
		return writeError(c, port.ErrEmptyQuestion)
	}

	answer, sources, err := h.rag.Ask(c.Context(), body.Question, body.TopK)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"answer":  answer,
		"sources": sourcesPayload(sources),
	})
}

// Upload ingests a document (multipart field "file") and optionally answers
// a question about it in the same request (form field "question").
func (h *RAGHandler) Upload(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing file field"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	extractor, ok := h.extractors[ext]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported file type: " + ext})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable upload"})
	}
	defer file.Close()

	text, err := extractor.Extract(file, fileHeader.Size)
	if err != nil {
		return writeError(c, err)
	}

	sourceID := fileHeader.Filename
	if sourceID == "" {
		sourceID = uuid.NewString()
	}

	added, err := h.rag.Ingest(c.Context(), sourceID, text)
	if err != nil {
		return writeError(c, err)
	}

	resp := fiber.Map{
		"source_id":    sourceID,
		"chunks_added": added,
	}

	if question := strings.TrimSpace(c.FormValue("question")); question != "" {
		answer, sources, err := h.rag.Ask(c.Context(), question, domain.DefaultTopK)
		if err != nil {
			return writeError(c, err)
		}
		resp["answer"] = answer
		resp["sources"] = sourcesPayload(sources)
	}

	return c.JSON(resp)
}

func sourcesPayload(sources []domain.ScoredChunk) []fiber.Map {
	out := make([]fiber.Map, len(sources))
	for i, sc := range sources {
		out[i] = fiber.Map{
			"source_id":  sc.SourceID,
			"ordinal":    sc.Ordinal,
			"text":       sc.Text,
			"similarity": sc.Similarity,
		}
	}
	return out
}

// writeError maps core failures onto the client-error vs server-error
// classes. Backend failures expose only their stage category.
func writeError(c fiber.Ctx, err error) error {
	var be *port.BackendError
	switch {
	case errors.Is(err, port.ErrNoText):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "no recoverable text in document"})
	case errors.Is(err, port.ErrEmptyQuestion):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "question is required"})
	case errors.As(err, &be):
		slog.Error("backend failure", "stage", string(be.Stage), "error", be.Err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": string(be.Stage) + " backend unavailable"})
	default:
		slog.Error("request failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

const (
	defaultArticleLimit = 100
	maxArticleLimit     = 1000
	storeTimeout        = 5 * time.Second
)

// ArchiveHandler exposes read-only archive endpoints.
type ArchiveHandler struct {
	store   walkthrough.ArchiveStore
	timeout time.Duration
	logger  *zap.Logger
}

// NewArchiveHandler wires the store and logger.
func NewArchiveHandler(store walkthrough.ArchiveStore, logger *zap.Logger) *ArchiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveHandler{
		store:   store,
		timeout: storeTimeout,
		logger:  logger,
	}
}

type issueDTO struct {
	Issue    string `json:"issue"`
	Articles int    `json:"articles"`
}

// Ready handles GET /readyz. It answers 200 once the store can be read, even
// if nothing has been crawled yet.
func (h *ArchiveHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.load(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// GetArchive handles GET /v1/archive. It returns the stored archive, or 404
// when nothing has been crawled yet.
func (h *ArchiveHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	archive, found, ok := h.load(w, r)
	if !ok {
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "archive not found")
		return
	}
	writeJSON(w, http.StatusOK, archive)
}

// ListIssues handles GET /v1/issues. It returns {"issues": [...]} in sorted
// issue order.
func (h *ArchiveHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	archive, found, ok := h.load(w, r)
	if !ok {
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "archive not found")
		return
	}
	issues := make([]issueDTO, 0, len(archive))
	for _, issue := range archive.Issues() {
		issues = append(issues, issueDTO{Issue: issue, Articles: len(archive[issue])})
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": issues})
}

// ListArticles handles GET /v1/articles?issue=&limit=&offset=. Without an
// issue filter it pages through every article in sorted issue order.
func (h *ArchiveHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parseLimitOffset(r, defaultArticleLimit, maxArticleLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	archive, found, ok := h.load(w, r)
	if !ok {
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "archive not found")
		return
	}

	var articles []walkthrough.Article
	if issue := strings.TrimSpace(r.URL.Query().Get("issue")); issue != "" {
		list, exists := archive[issue]
		if !exists {
			writeError(w, http.StatusNotFound, "issue not found")
			return
		}
		articles = list
	} else {
		articles = archive.Articles()
	}

	total := len(articles)
	start := min(offset, total)
	end := min(start+limit, total)
	page := make([]walkthrough.Article, 0, end-start)
	page = append(page, articles[start:end]...)
	writeJSON(w, http.StatusOK, map[string]any{
		"articles": page,
		"total":    total,
	})
}

// load reads the archive and writes a 500 response when the store fails.
func (h *ArchiveHandler) load(w http.ResponseWriter, r *http.Request) (walkthrough.Archive, bool, bool) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "archive store unavailable")
		return nil, false, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	archive, found, err := h.store.Load(ctx)
	if err != nil {
		h.logger.Error("load archive failed", zap.Error(err), zap.String("request_id", RequestID(r.Context())))
		writeError(w, http.StatusInternalServerError, "failed to load archive")
		return nil, false, false
	}
	return archive, found, true
}

func parseLimitOffset(r *http.Request, def, maxLimit int) (int, int, error) {
	q := r.URL.Query()
	limit := def
	if limStr := q.Get("limit"); limStr != "" {
		val, err := strconv.Atoi(limStr)
		if err != nil || val <= 0 {
			return 0, 0, errors.New("invalid limit")
		}
		if val > maxLimit {
			val = maxLimit
		}
		limit = val
	}
	offset := 0
	if offStr := q.Get("offset"); offStr != "" {
		val, err := strconv.Atoi(offStr)
		if err != nil || val < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = val
	}
	return limit, offset, nil
}

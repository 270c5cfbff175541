package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"furniture-catalog/internal/domain"
	"furniture-catalog/internal/enrich"
	"furniture-catalog/internal/export"
)

const maxImportBytes = 16 << 20

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog     Catalog
	suggester   *enrich.PriceSuggester
	fetcher     *enrich.ImageFetcher
	importLimit int
	sheets      SheetsExporter
	checks      map[string]HealthChecker
	validate    *validator.Validate
	log         *slog.Logger
}

type HandlerOption func(*HTTPHandler)

// WithImageFetcher looks up product images for new and imported items,
// at most limit pages at a time during an import.
func WithImageFetcher(f *enrich.ImageFetcher, limit int) HandlerOption {
	return func(h *HTTPHandler) {
		h.fetcher = f
		h.importLimit = limit
	}
}

func WithSuggester(s *enrich.PriceSuggester) HandlerOption {
	return func(h *HTTPHandler) { h.suggester = s }
}

func WithSheetsExporter(s SheetsExporter) HandlerOption {
	return func(h *HTTPHandler) { h.sheets = s }
}

// WithHealthCheck adds a dependency probed by /healthz.
func WithHealthCheck(name string, c HealthChecker) HandlerOption {
	return func(h *HTTPHandler) { h.checks[name] = c }
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(c Catalog, log *slog.Logger, opts ...HandlerOption) *HTTPHandler {
	if log == nil {
		log = slog.Default()
	}
	h := &HTTPHandler{
		catalog:   c,
		suggester: enrich.DefaultPriceSuggester(),
		checks:    make(map[string]HealthChecker),
		validate:  validator.New(),
		log:       log.With("component", "http"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// respondWithDomainError maps engine and store failures onto status codes.
func (h *HTTPHandler) respondWithDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		notFound *domain.ItemNotFoundError
		invalid  *domain.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		respondWithError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &invalid):
		respondWithError(w, http.StatusBadRequest, invalid.Error())
	case errors.Is(err, domain.ErrCorruptData):
		h.log.ErrorContext(r.Context(), op+" failed: stored data is corrupt", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Stored item data is corrupt")
	case errors.Is(err, domain.ErrPersistence):
		h.log.ErrorContext(r.Context(), op+" failed: storage unavailable", "error", err)
		respondWithError(w, http.StatusServiceUnavailable, "Item storage is unavailable")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondWithError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		h.log.ErrorContext(r.Context(), op+" failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to "+op)
	}
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
func (h *HTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

func itemID(r *http.Request) string {
	return chi.URLParam(r, "itemId")
}

// --- Budget Handlers ---

func (h *HTTPHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	snap, err := h.catalog.Budget(r.Context())
	if err != nil {
		h.respondWithDomainError(w, r, "compute budget", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newBudgetResponse(snap))
}

func (h *HTTPHandler) respondWithBudget(w http.ResponseWriter, r *http.Request, op string, snap *domain.BudgetSnapshot, err error) {
	if err != nil {
		h.respondWithDomainError(w, r, op, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newBudgetResponse(snap))
}

func (h *HTTPHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var input PriceInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	snap, err := h.catalog.UpdatePrice(r.Context(), itemID(r), input.Price)
	h.respondWithBudget(w, r, "update price", snap, err)
}

func (h *HTTPHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var input QuantityInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	snap, err := h.catalog.UpdateQuantity(r.Context(), itemID(r), *input.Quantity)
	h.respondWithBudget(w, r, "update quantity", snap, err)
}

func (h *HTTPHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	var input RoomInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	snap, err := h.catalog.UpdateRoom(r.Context(), itemID(r), input.Room)
	h.respondWithBudget(w, r, "update room", snap, err)
}

func (h *HTTPHandler) UpdateRoomNumber(w http.ResponseWriter, r *http.Request) {
	var input RoomNumberInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	snap, err := h.catalog.UpdateRoomNumber(r.Context(), itemID(r), input.RoomNumber)
	h.respondWithBudget(w, r, "update room number", snap, err)
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	snap, err := h.catalog.DeleteItem(r.Context(), itemID(r))
	h.respondWithBudget(w, r, "delete item", snap, err)
}

// ExportCSV streams the budget as a CSV attachment.
func (h *HTTPHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, err := h.catalog.Budget(r.Context())
	if err != nil {
		h.respondWithDomainError(w, r, "export budget", err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, snap); err != nil {
		h.respondWithDomainError(w, r, "export budget", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(snap)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *HTTPHandler) ExportSheets(w http.ResponseWriter, r *http.Request) {
	if h.sheets == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Google Sheets export is not configured")
		return
	}
	snap, err := h.catalog.Budget(r.Context())
	if err != nil {
		h.respondWithDomainError(w, r, "export budget", err)
		return
	}
	rows, err := h.sheets.Export(r.Context(), snap)
	if err != nil {
		h.log.ErrorContext(r.Context(), "sheets export failed", "error", err)
		respondWithError(w, http.StatusBadGateway, "Google Sheets export failed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"rows": rows})
}

// SuggestPrices fills empty prices from the keyword table. With
// ?dryRun=true nothing is saved and the guesses are returned instead.
func (h *HTTPHandler) SuggestPrices(w http.ResponseWriter, r *http.Request) {
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dryRun"))
	if dryRun {
		items, err := h.catalog.ListItems(r.Context(), domain.ItemFilter{})
		if err != nil {
			h.respondWithDomainError(w, r, "suggest prices", err)
			return
		}
		out := []SuggestionResponse{}
		for _, it := range items {
			if strings.TrimSpace(it.Price) != "" {
				continue
			}
			if sug, ok := h.suggester.Suggest(it.Title, it.URL); ok {
				resp := suggestionResponse(it.Title, sug)
				resp.ItemID = it.ID
				out = append(out, resp)
			}
		}
		respondWithJSON(w, http.StatusOK, out)
		return
	}

	snap, updated, err := h.catalog.EnrichItems(r.Context(), h.suggester.Enricher())
	if err != nil {
		h.respondWithDomainError(w, r, "suggest prices", err)
		return
	}
	respondWithJSON(w, http.StatusOK, struct {
		Updated int            `json:"updated"`
		Budget  BudgetResponse `json:"budget"`
	}{updated, newBudgetResponse(snap)})
}

// SuggestPrice guesses a price for ?title= sold at ?url=.
func (h *HTTPHandler) SuggestPrice(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		respondWithError(w, http.StatusBadRequest, "title query parameter is required")
		return
	}
	sug, ok := h.suggester.Suggest(title, r.URL.Query().Get("url"))
	if !ok {
		respondWithError(w, http.StatusNotFound, "No price suggestion for this title")
		return
	}
	respondWithJSON(w, http.StatusOK, suggestionResponse(title, sug))
}

func suggestionResponse(title string, s enrich.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		Title:      title,
		Keyword:    s.Keyword,
		Price:      s.Price(),
		Amount:     money(s.Amount),
		Min:        s.Range.Min,
		Max:        s.Range.Max,
		Multiplier: s.Multiplier.InexactFloat64(),
	}
}

// --- Item Handlers ---

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	favOnly, _ := strconv.ParseBool(q.Get("favorite"))
	items, err := h.catalog.ListItems(r.Context(), domain.ItemFilter{
		Search:       q.Get("search"),
		Category:     q.Get("category"),
		FavoriteOnly: favOnly,
	})
	if err != nil {
		h.respondWithDomainError(w, r, "list items", err)
		return
	}
	if items == nil {
		items = []domain.FurnitureItem{}
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.GetItem(r.Context(), itemID(r))
	if err != nil {
		h.respondWithDomainError(w, r, "get item", err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

// CreateItem adds an item. A missing store is derived from the URL and a
// missing image is looked up on the product page when a fetcher is set.
func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var input ItemCreateInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	in := input.toNewItem()
	if in.Store == "" {
		in.Store = enrich.StoreFromURL(in.URL)
	}
	if in.ImageURL == "" && h.fetcher != nil {
		img, err := h.fetcher.FetchImage(r.Context(), in.URL)
		if err != nil {
			h.log.DebugContext(r.Context(), "image lookup failed", "url", in.URL, "error", err)
		}
		in.ImageURL = img
	}

	item, err := h.catalog.AddItem(r.Context(), in)
	if err != nil {
		h.respondWithDomainError(w, r, "create item", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var input ItemUpdateInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	item, err := h.catalog.UpdateItem(r.Context(), itemID(r), input.toPatch())
	if err != nil {
		h.respondWithDomainError(w, r, "update item", err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (h *HTTPHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.ToggleFavorite(r.Context(), itemID(r))
	if err != nil {
		h.respondWithDomainError(w, r, "toggle favorite", err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

// ImportBookmarks accepts a browser bookmark export, either as the "file"
// field of a multipart form or as the raw request body. ?folder= narrows
// the import to matching bookmark folders.
func (h *HTTPHandler) ImportBookmarks(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	defer r.Body.Close()

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Missing bookmarks file: "+err.Error())
			return
		}
		defer file.Close()
		src = file
	}

	bms, err := enrich.ParseBookmarks(src)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Could not parse bookmarks: "+err.Error())
		return
	}
	bms = enrich.FilterByFolder(bms, r.URL.Query().Get("folder"))
	if len(bms) == 0 {
		respondWithJSON(w, http.StatusOK, ImportResponse{})
		return
	}

	candidates := enrich.ImportCandidates(r.Context(), bms, h.fetcher, h.importLimit, h.log)
	n, err := h.catalog.ImportItems(r.Context(), candidates)
	if err != nil {
		h.respondWithDomainError(w, r, "import bookmarks", err)
		return
	}
	h.log.InfoContext(r.Context(), "bookmarks imported", "found", len(bms), "imported", n)
	respondWithJSON(w, http.StatusCreated, ImportResponse{Found: len(bms), Imported: n})
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.respondWithDomainError(w, r, "list categories", err)
		return
	}
	respondWithJSON(w, http.StatusOK, cats)
}

func (h *HTTPHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.catalog.Rooms(r.Context())
	if err != nil {
		h.respondWithDomainError(w, r, "list rooms", err)
		return
	}
	respondWithJSON(w, http.StatusOK, rooms)
}

// Healthz pings every registered dependency.
func (h *HTTPHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := map[string]string{}
	for name, c := range h.checks {
		if err := c.Ping(ctx); err != nil {
			h.log.WarnContext(ctx, "health check failed", "check", name, "error", err)
			report[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "ok"
	}
	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	respondWithJSON(w, status, map[string]any{"status": overall, "checks": report})
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", h.Healthz)
		r.Get("/categories", h.ListCategories)
		r.Get("/rooms", h.ListRooms)
		r.Get("/suggest-price", h.SuggestPrice)

		r.Route("/budget", func(r chi.Router) {
			r.Get("/", h.GetBudget)
			r.Get("/export.csv", h.ExportCSV)
			r.Post("/export/sheets", h.ExportSheets)
			r.Post("/suggest-prices", h.SuggestPrices)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.ListItems)
			r.Post("/", h.CreateItem)
			r.Post("/import", h.ImportBookmarks)

			r.Route("/{itemId}", func(r chi.Router) {
				r.Get("/", h.GetItem)
				r.Put("/", h.UpdateItem)
				r.Delete("/", h.DeleteItem)
				r.Put("/price", h.UpdatePrice)
				r.Put("/quantity", h.UpdateQuantity)
				r.Put("/room", h.UpdateRoom)
				r.Put("/room-number", h.UpdateRoomNumber)
				r.Post("/favorite", h.ToggleFavorite)
			})
		})
	})
}

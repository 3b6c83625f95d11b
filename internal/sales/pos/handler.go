package pos

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tienda-pos/tienda/internal/catalog/products"
	"github.com/tienda-pos/tienda/internal/platform/httpx"
	"github.com/tienda-pos/tienda/internal/sales/customers"
	"github.com/tienda-pos/tienda/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	products  *products.Service
	customers *customers.Service
	validate  *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, productSvc *products.Service, customerSvc *customers.Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		products:  productSvc,
		customers: customerSvc,
		validate:  validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/new", h.New)
	r.Get("/{id}", h.Show)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	sales, total, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("list sales failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"sales":      sales,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

// New serves the register bootstrap payload: sellable products plus the
// customer list for the cart form.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	sellable, err := h.products.ListSellable(r.Context())
	if err != nil {
		h.logger.Error("list sellable products failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	custs, _, err := h.customers.List(r.Context(), 1, 0, "")
	if err != nil {
		h.logger.Error("list customers failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":  sellable,
		"customers": custs,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.FieldErrors{"body": "malformed JSON body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		errs := shared.FieldErrors{}
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs[fieldErr.Field()] = "failed " + fieldErr.Tag() + " validation"
		}
		httpx.RespondError(w, errs)
		return
	}

	sale, err := h.service.Create(r.Context(), req, shared.ActorID(r.Context()))
	if err != nil {
		h.logger.Error("create sale failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

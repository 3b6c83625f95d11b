package products

import (
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tienda-pos/tienda/internal/catalog/shared"
	"github.com/tienda-pos/tienda/internal/catalog/uploads"
	"github.com/tienda-pos/tienda/internal/money"
	"github.com/tienda-pos/tienda/internal/platform/httpx"
	internalshared "github.com/tienda-pos/tienda/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	uploads  *uploads.Store
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, uploadStore *uploads.Store) *Handler {
	return &Handler{logger: logger, service: service, uploads: uploadStore, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/low-stock", h.LowStock)
	r.Get("/{id}", h.Show)
	r.Post("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ListFilters{
		Page:    queryInt(r, "page", shared.DefaultPage),
		Limit:   queryInt(r, "limit", shared.DefaultLimit),
		Search:  r.URL.Query().Get("search"),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("dir"),
	}
	if v := r.URL.Query().Get("category_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.CategoryID = &id
		}
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active := v == "true"
		filters.IsActive = &active
	}

	list, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":   list,
		"pagination": internalshared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	product, err := h.decodeProduct(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), product)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	product, err := h.decodeProduct(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if product.Image == nil {
		// keep the existing image reference when no new upload arrives
		if existing, err := h.service.Get(r.Context(), id); err == nil {
			product.Image = existing.Image
		}
	}
	if err := h.service.Update(r.Context(), id, product); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListLowStock(r.Context())
	if err != nil {
		h.logger.Error("low stock query failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": list})
}

// decodeProduct accepts either a JSON body or a multipart form with an
// optional image file.
func (h *Handler) decodeProduct(r *http.Request) (Product, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var form ProductForm
	var imageRef *string

	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(uploads.MaxImageSize + 1<<20); err != nil {
			return Product{}, internalshared.FieldErrors{"body": "malformed multipart body"}
		}
		form = ProductForm{
			Code:   r.PostFormValue("code"),
			Name:   r.PostFormValue("name"),
			Price:  r.PostFormValue("price"),
			Cost:   r.PostFormValue("cost"),
			Stock:  formInt(r, "stock"),
			Active: r.PostFormValue("active") != "false",
		}
		if v := r.PostFormValue("min_stock"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				form.MinStock = &n
			}
		}
		if v := r.PostFormValue("description"); v != "" {
			form.Description = &v
		}
		form.CategoryID, _ = strconv.ParseInt(r.PostFormValue("category_id"), 10, 64)

		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			ref, err := h.uploads.SaveProductImage(header.Filename, file)
			if err != nil {
				return Product{}, internalshared.FieldErrors{"image": err.Error()}
			}
			imageRef = &ref
		}
	} else {
		if err := httpx.DecodeJSON(r, &form); err != nil {
			return Product{}, internalshared.FieldErrors{"body": "malformed JSON body"}
		}
	}

	if err := h.validate.Struct(form); err != nil {
		errs := internalshared.FieldErrors{}
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs[fieldErr.Field()] = "failed " + fieldErr.Tag() + " validation"
		}
		return Product{}, errs
	}

	price, err := money.Parse(form.Price)
	if err != nil {
		return Product{}, internalshared.FieldErrors{"price": "must be a non-negative decimal"}
	}
	cost, err := money.Parse(form.Cost)
	if err != nil {
		return Product{}, internalshared.FieldErrors{"cost": "must be a non-negative decimal"}
	}

	// An absent min_stock falls back to the default; an explicit 0 is kept.
	minStock := DefaultMinStock
	if form.MinStock != nil {
		minStock = *form.MinStock
	}

	return Product{
		Code:        strings.TrimSpace(form.Code),
		Name:        strings.TrimSpace(form.Name),
		Description: form.Description,
		Price:       price,
		Cost:        cost,
		Stock:       form.Stock,
		MinStock:    minStock,
		CategoryID:  form.CategoryID,
		Image:       imageRef,
		Active:      form.Active,
	}, nil
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return 0, false
	}
	return id, true
}

func formInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.PostFormValue(key))
	return v
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/fishmarket/backend/internal/web"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		web.Message(w, h.logger, http.StatusBadRequest, "category name is required")
		return
	}

	category, err := h.store.CreateCategory(r.Context(), req.Name)
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	h.logger.Info("category created", "category_id", category.ID, "name", category.Name)
	web.JSON(w, h.logger, http.StatusCreated, category)
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		web.Message(w, h.logger, http.StatusBadRequest, "category name is required")
		return
	}

	if err := h.store.UpdateCategory(r.Context(), id, req.Name); err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, map[string]int64{"id": id})
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		web.Error(w, h.logger, err)
		return
	}

	h.logger.Info("category deleted", "category_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, categories)
}

type sizePayload struct {
	Label         string          `json:"label"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}

type productRequest struct {
	CategoryID  int64         `json:"category_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Sizes       []sizePayload `json:"sizes"`
}

func (r productRequest) sizes() []SizeRequest {
	sizes := make([]SizeRequest, 0, len(r.Sizes))
	for _, s := range r.Sizes {
		sizes = append(sizes, SizeRequest{Label: s.Label, Price: s.Price, StockQuantity: s.StockQuantity})
	}
	return sizes
}

func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Message(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.store.CreateProduct(r.Context(), CreateProductRequest{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Sizes:       req.sizes(),
	})
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	web.JSON(w, h.logger, http.StatusCreated, product)
}

func (h *Handler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Message(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.store.UpdateProduct(r.Context(), id, UpdateProductRequest{
		Name:        req.Name,
		Description: req.Description,
		Sizes:       req.sizes(),
	})
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, map[string]int64{"id": id})
}

func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		web.Error(w, h.logger, err)
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, product)
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	categoryID, _ := strconv.ParseInt(query.Get("category_id"), 10, 64)
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	result, err := h.store.ListProducts(r.Context(), categoryID, page, pageSize)
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, result)
}

func (h *Handler) requireManager(w http.ResponseWriter, r *http.Request) bool {
	if !web.IdentityFrom(r).Privileged() {
		web.Message(w, h.logger, http.StatusUnauthorized, "manager role required")
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		web.Message(w, h.logger, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

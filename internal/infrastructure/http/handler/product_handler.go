package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mrops-br/produtos-api/internal/app/dto"
	"github.com/mrops-br/produtos-api/internal/app/service"
	"github.com/mrops-br/produtos-api/internal/domain"
	"github.com/mrops-br/produtos-api/internal/infrastructure/http/response"
)

const (
	requestPartName = "produtoRequest"
	imagePartName   = "imagem"
)

var (
	errMissingRequestPart = errors.New("multipart part \"produtoRequest\" is required")
	errInvalidID          = errors.New("product id must be an integer")
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service         *service.ProductService
	validate        *validator.Validate
	uploadMaxMemory int64
	uploadMaxSize   int64
	logger          *slog.Logger
}

// NewProductHandler creates a new product handler. Register bodies above
// uploadMaxSize bytes are rejected; up to uploadMaxMemory bytes are buffered in memory.
func NewProductHandler(service *service.ProductService, uploadMaxMemory, uploadMaxSize int64, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:         service,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		uploadMaxMemory: uploadMaxMemory,
		uploadMaxSize:   uploadMaxSize,
		logger:          logger,
	}
}

// RegisterProduct handles POST /produtos (multipart: produtoRequest JSON + imagem file)
func (h *ProductHandler) RegisterProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxSize)
	if err := r.ParseMultipartForm(h.uploadMaxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.WarnContext(r.Context(), "Upload exceeds size limit",
				slog.Int64("limit_bytes", tooLarge.Limit),
			)
			response.Error(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		h.badRequest(w, r, "Failed to parse multipart form", err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	raw, err := requestPart(r)
	if err != nil {
		h.badRequest(w, r, "Failed to read product payload", err)
		return
	}

	var req dto.ProductRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.badRequest(w, r, "Failed to decode product payload", err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.badRequest(w, r, "Product payload failed validation", err)
		return
	}

	file, header, err := r.FormFile(imagePartName)
	if err != nil {
		h.badRequest(w, r, "Image part is missing", domain.ErrImageRequired)
		return
	}
	defer file.Close()

	product, err := h.service.RegisterProduct(r.Context(), &req, &dto.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, product)
}

// ListProducts handles GET /produtos
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

// GetProduct handles GET /produtos/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// SearchProducts handles GET /produtos/pesquisa?nome=&descricao=
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	products, err := h.service.SearchProducts(r.Context(), domain.NewTextQuery(query.Get("nome"), query.Get("descricao")))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

// UpdateProduct handles PUT /produtos/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req dto.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, r, "Failed to decode request body", err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.badRequest(w, r, "Product payload failed validation", err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /produtos/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.serviceError(w, err)
		return
	}

	response.NoContent(w)
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, r, "Invalid product id", errInvalidID)
		return 0, false
	}
	return id, true
}

// requestPart reads produtoRequest either as a form field or as a JSON file part
func requestPart(r *http.Request) ([]byte, error) {
	if values := r.MultipartForm.Value[requestPartName]; len(values) > 0 {
		return []byte(values[0]), nil
	}

	files := r.MultipartForm.File[requestPartName]
	if len(files) == 0 {
		return nil, errMissingRequestPart
	}

	f, err := files[0].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s part: %w", requestPartName, err)
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (h *ProductHandler) badRequest(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		slog.String("error", err.Error()),
	)
	response.Error(w, http.StatusBadRequest, err)
}

// serviceError maps service failures to status codes
func (h *ProductHandler) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		response.Error(w, http.StatusNotFound, err)
	case domain.IsValidationError(err):
		response.Error(w, http.StatusBadRequest, err)
	default:
		response.Error(w, http.StatusInternalServerError, err)
	}
}

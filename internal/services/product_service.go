package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"inventory/internal/apperrors"
	"inventory/internal/models"
	"inventory/internal/repositories"
)

const (
	maxNameLength    = 100
	allProductsKey   = "products:all"
	productKeyPrefix = "product:"
	uploadURLPrefix  = "/uploads/"
)

// EventPublisher sends product lifecycle events to the broker.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// FileRemover deletes a previously uploaded file by its stored name.
type FileRemover interface {
	Delete(filename string) error
}

// Cache is the subset of the cache client used for product reads.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
	files    FileRemover
	events   EventPublisher
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
}

// ProductOption configures optional collaborators of a ProductService.
type ProductOption func(*ProductService)

// WithFileRemover enables cleanup of uploaded files on image replacement and delete.
func WithFileRemover(files FileRemover) ProductOption {
	return func(s *ProductService) { s.files = files }
}

// WithEventPublisher enables product lifecycle events.
func WithEventPublisher(events EventPublisher) ProductOption {
	return func(s *ProductService) { s.events = events }
}

// WithCache enables read-through caching of product reads.
func WithCache(cache Cache, ttl time.Duration) ProductOption {
	return func(s *ProductService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithClock overrides the time source used for lastUpdate.
func WithClock(now func() time.Time) ProductOption {
	return func(s *ProductService) { s.now = now }
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, opts ...ProductOption) *ProductService {
	s := &ProductService{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every product, most recently updated first.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if s.cacheGet(ctx, allProductsKey, &cached) {
		return cached, nil
	}

	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	s.cacheSet(ctx, allProductsKey, products)
	return products, nil
}

// Get returns a single product.
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var cached models.Product
	if s.cacheGet(ctx, productKey(id), &cached) {
		return &cached, nil
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, productKey(id), product)
	return product, nil
}

// Create validates and stores a new product. Missing price and stock
// default to zero and status defaults to Active.
func (s *ProductService) Create(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{Status: models.DefaultStatus}
	applyInput(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.LastUpdate = s.now()

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.invalidate(ctx, product.ID)
	s.publish(models.EventProductCreated, product)
	return product, nil
}

// Update merges the fields present in input over the stored product. The
// name must always be sent; other absent fields keep their stored values.
// When the request replaces a stored image, the previously uploaded file is
// removed after the row is written.
func (s *ProductService) Update(ctx context.Context, id uint, input models.ProductInput) (*models.Product, error) {
	if input.Name == nil {
		return nil, apperrors.ErrNameRequired
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	applyInput(&updated, input)
	if err := validateProduct(&updated); err != nil {
		return nil, err
	}
	updated.LastUpdate = s.now()

	var staleFile string
	oldImage := deref(current.Image)
	if input.Image != nil && oldImage != "" && *input.Image != oldImage {
		staleFile = uploadedFileName(deref(current.FileName), oldImage)
		if input.FileName == nil {
			updated.FileName = nil
		}
		if input.FileType == nil {
			updated.FileType = nil
		}
		if input.FileSize == nil {
			updated.FileSize = nil
		}
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	if staleFile != "" {
		s.removeFile(staleFile)
	}
	s.invalidate(ctx, id)
	s.publish(models.EventProductUpdated, &updated)
	return &updated, nil
}

// Delete removes a product and its uploaded file, if any.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, apperrors.ErrProductNotFound) {
		return err
	}

	// The delete itself decides not-found; the row may vanish between the two calls.
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	deleted := &models.Product{ID: id}
	if current != nil {
		deleted = current
		if name := uploadedFileName(deref(current.FileName), deref(current.Image)); name != "" {
			s.removeFile(name)
		}
	}
	s.invalidate(ctx, id)
	s.publishEvent(models.EventProductDeleted, deleted)
	return nil
}

func (s *ProductService) validateInput(input models.ProductInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err)
	}
	switch verrs[0].Field() {
	case "Stock":
		return apperrors.ErrInvalidStock
	default:
		return fmt.Errorf("%w: %s failed %s", apperrors.ErrInvalidRequest, verrs[0].Field(), verrs[0].Tag())
	}
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return apperrors.ErrNameRequired
	}
	if utf8.RuneCountInString(p.Name) > maxNameLength {
		return apperrors.ErrNameTooLong
	}
	if p.Price.IsNegative() {
		return apperrors.ErrInvalidPrice
	}
	if p.Stock < 0 {
		return apperrors.ErrInvalidStock
	}
	return nil
}

func applyInput(p *models.Product, in models.ProductInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Category != nil {
		p.Category = in.Category
	}
	if in.Location != nil {
		p.Location = in.Location
	}
	if in.Image != nil {
		p.Image = in.Image
	}
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		p.Status = strings.TrimSpace(*in.Status)
	}
	if in.Brand != nil {
		p.Brand = in.Brand
	}
	if in.Sizes != nil {
		p.Sizes = in.Sizes
	}
	if in.ProductCode != nil {
		p.ProductCode = in.ProductCode
	}
	if in.OrderName != nil {
		p.OrderName = in.OrderName
	}
	if in.StoreAvailability != nil {
		p.StoreAvailability = in.StoreAvailability
	}
	if in.FileType != nil {
		p.FileType = in.FileType
	}
	if in.FileName != nil {
		p.FileName = in.FileName
	}
	if in.FileSize != nil {
		p.FileSize = in.FileSize
	}
}

// uploadedFileName returns the stored name of a file this service uploaded,
// or "" when the image points somewhere else.
func uploadedFileName(fileName, image string) string {
	if fileName != "" {
		return path.Base(fileName)
	}
	if strings.HasPrefix(image, uploadURLPrefix) {
		return path.Base(image)
	}
	return ""
}

func (s *ProductService) removeFile(name string) {
	if s.files == nil {
		return
	}
	if err := s.files.Delete(name); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("failed to remove uploaded file")
	}
}

func (s *ProductService) publish(eventType string, p *models.Product) {
	s.publishEvent(eventType, p)
	if p.LowStock() {
		s.publishEvent(models.EventProductLowStock, p)
	}
}

func (s *ProductService) publishEvent(eventType string, p *models.Product) {
	if s.events == nil {
		return
	}
	event := models.ProductEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ProductID:  p.ID,
		Name:       p.Name,
		Stock:      p.Stock,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.PublishProductEvent(event); err != nil {
		log.Warn().Err(err).Str("type", eventType).Uint("product_id", p.ID).Msg("failed to publish product event")
	}
}

func (s *ProductService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, _ := s.cache.Get(ctx, key)
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("discarding unreadable cache entry")
		return false
	}
	return true
}

func (s *ProductService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, data, s.cacheTTL)
}

func (s *ProductService) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, allProductsKey, productKey(id))
}

func productKey(id uint) string {
	return productKeyPrefix + strconv.FormatUint(uint64(id), 10)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inventory/internal/apperrors"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFileRemover records file deletions.
type MockFileRemover struct {
	mock.Mock
}

func (m *MockFileRemover) Delete(filename string) error {
	args := m.Called(filename)
	return args.Error(0)
}

// MockPublisher records published product events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductEvent(event models.ProductEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(e models.ProductEvent) bool { return e.Type == eventType })
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func int64Ptr(i int64) *int64 { return &i }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, opts ...services.ProductOption) (*services.ProductService, *repositories.MemoryProductRepository) {
	t.Helper()
	repo := repositories.NewMemoryProductRepository()
	opts = append([]services.ProductOption{services.WithClock(func() time.Time { return fixedNow })}, opts...)
	return services.NewProductService(repo, opts...), repo
}

func TestProductService_CreateAppliesDefaults(t *testing.T) {
	service, _ := newService(t)

	product, err := service.Create(context.Background(), models.ProductInput{Name: strPtr("  Tent  ")})
	require.NoError(t, err)

	assert.NotZero(t, product.ID)
	assert.Equal(t, "Tent", product.Name)
	assert.True(t, product.Price.IsZero())
	assert.Equal(t, 0, product.Stock)
	assert.Equal(t, models.DefaultStatus, product.Status)
	assert.Equal(t, fixedNow, product.LastUpdate)
}

func TestProductService_CreateValidation(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input models.ProductInput
		want  error
	}{
		{"missing name", models.ProductInput{}, apperrors.ErrNameRequired},
		{"blank name", models.ProductInput{Name: strPtr("   ")}, apperrors.ErrNameRequired},
		{"long name", models.ProductInput{Name: strPtr(strings.Repeat("x", 101))}, apperrors.ErrNameTooLong},
		{"negative price", models.ProductInput{Name: strPtr("A"), Price: decPtr("-0.01")}, apperrors.ErrInvalidPrice},
		{"negative stock", models.ProductInput{Name: strPtr("A"), Stock: intPtr(-1)}, apperrors.ErrInvalidStock},
		{"negative file size", models.ProductInput{Name: strPtr("A"), FileSize: int64Ptr(-3)}, apperrors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProductService_NameLengthCountsCharacters(t *testing.T) {
	service, _ := newService(t)

	// 100 multi-byte characters is still a valid name.
	_, err := service.Create(context.Background(), models.ProductInput{Name: strPtr(strings.Repeat("é", 100))})
	assert.NoError(t, err)
}

func TestProductService_CreatePublishesEvents(t *testing.T) {
	publisher := new(MockPublisher)
	service, _ := newService(t, services.WithEventPublisher(publisher))

	publisher.On("PublishProductEvent", eventOfType(models.EventProductCreated)).Return(nil).Twice()
	publisher.On("PublishProductEvent", eventOfType(models.EventProductLowStock)).Return(nil).Once()

	_, err := service.Create(context.Background(), models.ProductInput{Name: strPtr("Plenty"), Stock: intPtr(50)})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), models.ProductInput{Name: strPtr("Scarce"), Stock: intPtr(4)})
	require.NoError(t, err)

	publisher.AssertExpectations(t)
}

func TestProductService_PublishFailureDoesNotFailWrite(t *testing.T) {
	publisher := new(MockPublisher)
	service, repo := newService(t, services.WithEventPublisher(publisher))

	publisher.On("PublishProductEvent", mock.Anything).Return(errors.New("broker down"))

	product, err := service.Create(context.Background(), models.ProductInput{Name: strPtr("A"), Stock: intPtr(10)})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", stored.Name)
}

func TestProductService_GetNotFound(t *testing.T) {
	service, _ := newService(t)

	product, err := service.Get(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
	assert.Nil(t, product)
}

func TestProductService_ListOrdersByLastUpdate(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	clock := fixedNow
	service := services.NewProductService(repo, services.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	ctx := context.Background()

	first, err := service.Create(ctx, models.ProductInput{Name: strPtr("first")})
	require.NoError(t, err)
	second, err := service.Create(ctx, models.ProductInput{Name: strPtr("second")})
	require.NoError(t, err)

	products, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, second.ID, products[0].ID)

	_, err = service.Update(ctx, first.ID, models.ProductInput{Name: strPtr("first"), Stock: intPtr(3)})
	require.NoError(t, err)

	products, err = service.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, products[0].ID)
}

func TestProductService_ListEmpty(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("GetAll", mock.Anything).Return(nil, nil).Once()

	products, err := service.List(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateMergesPresentFields(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, models.ProductInput{
		Name:        strPtr("Jacket"),
		Description: strPtr("warm"),
		Price:       decPtr("89.90"),
		Stock:       intPtr(12),
		Category:    strPtr("Outerwear"),
	})
	require.NoError(t, err)

	updated, err := service.Update(ctx, created.ID, models.ProductInput{Name: strPtr("Jacket"), Stock: intPtr(2)})
	require.NoError(t, err)

	assert.Equal(t, "Jacket", updated.Name)
	assert.Equal(t, "warm", *updated.Description)
	assert.True(t, decimal.RequireFromString("89.90").Equal(updated.Price))
	assert.Equal(t, 2, updated.Stock)
	assert.Equal(t, "Outerwear", *updated.Category)
}

func TestProductService_UpdateRejectsEmptyName(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, models.ProductInput{Name: strPtr("Jacket")})
	require.NoError(t, err)

	_, err = service.Update(ctx, created.ID, models.ProductInput{Name: strPtr(" ")})
	assert.ErrorIs(t, err, apperrors.ErrNameRequired)

	stored, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jacket", stored.Name)
}

func TestProductService_UpdateRequiresName(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	_, err := service.Update(context.Background(), 1, models.ProductInput{Stock: intPtr(9)})
	assert.ErrorIs(t, err, apperrors.ErrNameRequired)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_UpdateNotFound(t *testing.T) {
	files := new(MockFileRemover)
	service, _ := newService(t, services.WithFileRemover(files))

	_, err := service.Update(context.Background(), 42, models.ProductInput{Name: strPtr("ghost")})
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
	files.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestProductService_UpdateReplacingImageRemovesOldFileOnce(t *testing.T) {
	files := new(MockFileRemover)
	service, _ := newService(t, services.WithFileRemover(files))
	ctx := context.Background()

	created, err := service.Create(ctx, models.ProductInput{
		Name:     strPtr("Boot"),
		Image:    strPtr("/uploads/images/boot_1-aaaaaaaaaaaa.png"),
		FileName: strPtr("boot_1-aaaaaaaaaaaa.png"),
		FileType: strPtr("image/png"),
		FileSize: int64Ptr(2048),
	})
	require.NoError(t, err)

	files.On("Delete", "boot_1-aaaaaaaaaaaa.png").Return(nil).Once()

	updated, err := service.Update(ctx, created.ID, models.ProductInput{
		Name:  strPtr("Boot"),
		Image: strPtr("/uploads/images/boot_2-bbbbbbbbbbbb.png"),
	})
	require.NoError(t, err)

	assert.Equal(t, "/uploads/images/boot_2-bbbbbbbbbbbb.png", *updated.Image)
	assert.Nil(t, updated.FileName)
	assert.Nil(t, updated.FileType)
	assert.Nil(t, updated.FileSize)
	files.AssertExpectations(t)
	files.AssertNumberOfCalls(t, "Delete", 1)
}

func TestProductService_UpdateFallsBackToImagePath(t *testing.T) {
	files := new(MockFileRemover)
	service, _ := newService(t, services.WithFileRemover(files))
	ctx := context.Background()

	created, err := service.Create(ctx, models.ProductInput{
		Name:  strPtr("Boot"),
		Image: strPtr("/uploads/images/old.png"),
	})
	require.NoError(t, err)

	files.On("Delete", "old.png").Return(errors.New("permission denied")).Once()

	// A failed removal is logged, not returned.
	_, err = service.Update(ctx, created.ID, models.ProductInput{Name: strPtr("Boot"), Image: strPtr("/uploads/images/new.png")})
	require.NoError(t, err)
	files.AssertExpectations(t)
}

func TestProductService_UpdateWithoutImageChangeKeepsFile(t *testing.T) {
	files := new(MockFileRemover)
	service, _ := newService(t, services.WithFileRemover(files))
	ctx := context.Background()

	image := "/uploads/images/keep.png"
	created, err := service.Create(ctx, models.ProductInput{Name: strPtr("Boot"), Image: strPtr(image)})
	require.NoError(t, err)

	_, err = service.Update(ctx, created.ID, models.ProductInput{Name: strPtr("Boot"), Stock: intPtr(9)})
	require.NoError(t, err)
	_, err = service.Update(ctx, created.ID, models.ProductInput{Name: strPtr("Boot"), Image: strPtr(image)})
	require.NoError(t, err)

	files.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestProductService_UpdateExternalImageIsNotDeleted(t *testing.T) {
	files := new(MockFileRemover)
	service, _ := newService(t, services.WithFileRemover(files))
	ctx := context.Background()

	created, err := service.Create(ctx, models.ProductInput{
		Name:  strPtr("Boot"),
		Image: strPtr("https://cdn.example.com/boot.png"),
	})
	require.NoError(t, err)

	_, err = service.Update(ctx, created.ID, models.ProductInput{Name: strPtr("Boot"), Image: strPtr("/uploads/images/new.png")})
	require.NoError(t, err)
	files.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestProductService_UpdateFailureKeepsOldFile(t *testing.T) {
	mockRepo := new(MockProductRepository)
	files := new(MockFileRemover)
	service := services.NewProductService(mockRepo, services.WithFileRemover(files))

	current := &models.Product{ID: 1, Name: "Boot", Image: strPtr("/uploads/images/old.png"), Status: "Active"}
	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(current, nil).Once()
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Product")).Return(errors.New("database error")).Once()

	_, err := service.Update(context.Background(), 1, models.ProductInput{Name: strPtr("Boot"), Image: strPtr("/uploads/images/new.png")})
	assert.Error(t, err)
	files.AssertNotCalled(t, "Delete", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Delete(t *testing.T) {
	files := new(MockFileRemover)
	publisher := new(MockPublisher)
	service, _ := newService(t, services.WithFileRemover(files), services.WithEventPublisher(publisher))
	ctx := context.Background()

	publisher.On("PublishProductEvent", mock.Anything).Return(nil)

	created, err := service.Create(ctx, models.ProductInput{
		Name:     strPtr("Boot"),
		Stock:    intPtr(10),
		Image:    strPtr("/uploads/images/boot.png"),
		FileName: strPtr("boot.png"),
	})
	require.NoError(t, err)

	files.On("Delete", "boot.png").Return(nil).Once()

	require.NoError(t, service.Delete(ctx, created.ID))
	files.AssertExpectations(t)
	publisher.AssertCalled(t, "PublishProductEvent", eventOfType(models.EventProductDeleted))

	_, err = service.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)

	// second delete reports not found
	err = service.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
	files.AssertNumberOfCalls(t, "Delete", 1)
}

func TestProductService_DeleteReferenced(t *testing.T) {
	mockRepo := new(MockProductRepository)
	files := new(MockFileRemover)
	service := services.NewProductService(mockRepo, services.WithFileRemover(files))

	mockRepo.On("GetByID", mock.Anything, uint(7)).Return(&models.Product{ID: 7, FileName: strPtr("x.png")}, nil).Once()
	mockRepo.On("Delete", mock.Anything, uint(7)).Return(apperrors.ErrProductReferenced).Once()

	err := service.Delete(context.Background(), 7)
	assert.ErrorIs(t, err, apperrors.ErrProductReferenced)
	files.AssertNotCalled(t, "Delete", mock.Anything)
	mockRepo.AssertExpectations(t)
}

// memoryCache is a map-backed services.Cache.
type memoryCache struct {
	data map[string][]byte
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	return c.data[key], nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func TestProductService_CacheIsInvalidatedOnWrite(t *testing.T) {
	mockRepo := new(MockProductRepository)
	cache := &memoryCache{data: map[string][]byte{}}
	service := services.NewProductService(mockRepo, services.WithCache(cache, time.Minute))
	ctx := context.Background()

	product := &models.Product{ID: 1, Name: "Cap", Status: "Active", Stock: 8}
	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(product, nil).Once()

	got, err := service.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Cap", got.Name)

	// served from cache, the repository expectation above is used only once
	got, err = service.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Cap", got.Name)
	assert.Contains(t, cache.data, "product:1")

	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(product, nil).Once()
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	_, err = service.Update(ctx, 1, models.ProductInput{Name: strPtr("Hat")})
	require.NoError(t, err)
	assert.NotContains(t, cache.data, "product:1")
	mockRepo.AssertExpectations(t)
}

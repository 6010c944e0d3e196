package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"inventory/internal/apperrors"
	"inventory/internal/models"
	"inventory/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	productService *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// RegisterRoutes registers the product routes, guarded by the given handlers.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	productRoutes := router.Group("/products", guards...)
	productRoutes.Get("/", h.HandleList)
	productRoutes.Get("/:id", h.HandleGet)
	productRoutes.Post("/", h.HandleCreate)
	productRoutes.Put("/:id", h.HandleUpdate)
	productRoutes.Delete("/:id", h.HandleDelete)
}

// HandleList returns every product, most recently updated first.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	products, err := h.productService.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleGet returns a single product. A malformed id cannot match a row and
// is reported as not found.
func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return apperrors.ErrProductNotFound
	}
	product, err := h.productService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleCreate stores a new product.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	input, err := parseProductInput(c)
	if err != nil {
		return err
	}
	product, err := h.productService.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"productId": product.ID,
	})
}

// HandleUpdate patches an existing product.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return apperrors.ErrProductNotFound
	}
	input, err := parseProductInput(c)
	if err != nil {
		return err
	}
	product, err := h.productService.Update(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"productId": product.ID,
	})
}

// HandleDelete removes a product.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return apperrors.ErrInvalidProductID
	}
	if err := h.productService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"productId": id,
		"message":   "product deleted successfully",
	})
}

func parseProductInput(c *fiber.Ctx) (models.ProductInput, error) {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return input, fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err)
	}
	return input, nil
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

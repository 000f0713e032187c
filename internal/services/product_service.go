package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"sklep/internal/apierror"
	"sklep/internal/models"
	"sklep/internal/repositories"
)

// descriptionCacheTTL bounds how long a generated product description is
// served from cache before it is regenerated.
const descriptionCacheTTL = 24 * time.Hour

// DescriptionGenerator produces marketing copy from a prompt. It is an
// opaque prompt-in/text-out call to an external language-model API.
type DescriptionGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// DescriptionCache stores generated descriptions keyed by product id. Get
// returns an empty string on a miss. A nil cache disables caching.
type DescriptionCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// ProductService handles business logic related to the product catalog.
type ProductService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	generator    DescriptionGenerator
	cache        DescriptionCache
}

// NewProductService creates a new ProductService. generator and cache may be
// nil; the AI description endpoint then fails gracefully or skips caching.
func NewProductService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, generator DescriptionGenerator, cache DescriptionCache) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		generator:    generator,
		cache:        cache,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	products, err := s.productRepo.GetAll()
	if err != nil {
		return nil, apierror.Internal("failed to list products", err)
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apierror.NotFound("product with ID %s not found", id)
		}
		return nil, apierror.Internal("failed to get product", err)
	}
	return product, nil
}

// CreateProduct creates a new product. The referenced category must exist.
func (s *ProductService) CreateProduct(product *models.Product) error {
	category, err := s.categoryRepo.GetByID(product.CategoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierror.Validation("invalid category ID: %s", product.CategoryID)
		}
		return apierror.Internal("failed to resolve category", err)
	}
	product.Category = *category
	if err := s.productRepo.Create(product); err != nil {
		return apierror.Internal("failed to create product", err)
	}
	return nil
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if product.CategoryID != "" {
		category, err := s.categoryRepo.GetByID(product.CategoryID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apierror.Validation("invalid category ID: %s", product.CategoryID)
			}
			return apierror.Internal("failed to resolve category", err)
		}
		product.Category = *category
	}
	if err := s.productRepo.Update(product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierror.NotFound("product with ID %s not found", product.ID)
		}
		return apierror.Internal("failed to update product", err)
	}
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierror.NotFound("product with ID %s not found", id)
		}
		return apierror.Internal("failed to delete product", err)
	}
	return nil
}

// GetCategories retrieves the fixed set of product categories.
func (s *ProductService) GetCategories() ([]models.Category, error) {
	categories, err := s.categoryRepo.GetAll()
	if err != nil {
		return nil, apierror.Internal("failed to list categories", err)
	}
	return categories, nil
}

// GenerateDescription returns an SEO-friendly HTML description of a product,
// generated by the external text-generation API and cached per product.
func (s *ProductService) GenerateDescription(ctx context.Context, productID string) (string, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apierror.NotFound("product with ID %s not found", productID)
		}
		return "", apierror.Internal("failed to get product", err)
	}

	cacheKey := "ai-description:" + product.ID
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err != nil {
			log.Printf("Description cache lookup failed for product %s: %v", product.ID, err)
		} else if cached != "" {
			return cached, nil
		}
	}

	if s.generator == nil {
		return "", apierror.Internal("description generator is not configured", nil)
	}

	details, err := json.Marshal(product)
	if err != nil {
		return "", apierror.Internal("failed to encode product details", err)
	}
	prompt := fmt.Sprintf(
		"Create an SEO-friendly description for the following product. Put only the description, nothing else. Product details: %s",
		details,
	)

	description, err := s.generator.Complete(ctx, prompt)
	if err != nil {
		return "", apierror.Internal("failed to generate AI description", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, description, descriptionCacheTTL); err != nil {
			log.Printf("Failed to cache description for product %s: %v", product.ID, err)
		}
	}
	return description, nil
}

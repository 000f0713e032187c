package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"sklep/internal/apierror"
	"sklep/internal/models"
	"sklep/internal/repositories"
)

// ProductImport is one row of a bulk product import, with the category given
// by name rather than id.
type ProductImport struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Weight      float64 `json:"weight"`
	Category    string  `json:"category"`
}

// ImportService seeds the product catalog from a JSON array or a CSV file.
// It only runs against an empty catalog.
type ImportService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
}

// NewImportService creates a new ImportService.
func NewImportService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository) *ImportService {
	return &ImportService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// InitProducts inserts the given rows into an empty catalog. Rows referencing
// an unknown category are skipped with a warning, matching the tolerant
// semantics of a bulk seed. It returns how many products were created.
func (s *ImportService) InitProducts(rows []ProductImport) (int, error) {
	count, err := s.productRepo.Count()
	if err != nil {
		return 0, apierror.Internal("failed to inspect catalog", err)
	}
	if count > 0 {
		return 0, apierror.Validation("database already initialized")
	}

	var products []models.Product
	for _, row := range rows {
		category, err := s.categoryRepo.GetByName(row.Category)
		if err != nil {
			log.Printf("Skipping product %q: category not found: %s", row.Name, row.Category)
			continue
		}
		if row.Name == "" || row.Price <= 0 || row.Weight <= 0 {
			log.Printf("Skipping product %q: invalid name, price or weight", row.Name)
			continue
		}
		products = append(products, models.Product{
			Name:        row.Name,
			Description: row.Description,
			Price:       row.Price,
			Weight:      row.Weight,
			CategoryID:  category.ID,
			Category:    *category,
		})
	}

	if len(products) == 0 {
		return 0, apierror.Validation("no valid products to add")
	}

	created := 0
	for i := range products {
		if err := s.productRepo.Create(&products[i]); err != nil {
			return created, apierror.Internal("failed to insert imported products", err)
		}
		created++
	}
	return created, nil
}

// ParseCSV reads import rows from CSV data. The first record must be a header
// containing the columns name, description, price, weight and category, in
// any order. Rows with unparsable numbers are skipped with a warning.
func ParseCSV(r io.Reader) ([]ProductImport, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "description", "price", "weight", "category"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("CSV header is missing column %q", required)
		}
	}

	var rows []ProductImport
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		price, perr := strconv.ParseFloat(record[index["price"]], 64)
		weight, werr := strconv.ParseFloat(record[index["weight"]], 64)
		if perr != nil || werr != nil {
			log.Printf("Skipping CSV row %v: unparsable price or weight", record)
			continue
		}
		rows = append(rows, ProductImport{
			Name:        record[index["name"]],
			Description: record[index["description"]],
			Price:       price,
			Weight:      weight,
			Category:    record[index["category"]],
		})
	}
	return rows, nil
}

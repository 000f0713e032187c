package services_test

import (
	"strings"
	"testing"

	"sklep/internal/apierror"
	"sklep/internal/models"
	"sklep/internal/repositories"
	"sklep/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImportService(t *testing.T) (*services.ImportService, *repositories.MockProductRepository) {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	categoryRepo := repositories.NewMockCategoryRepository()
	require.NoError(t, categoryRepo.Create(&models.Category{Name: "Electronics"}))
	require.NoError(t, categoryRepo.Create(&models.Category{Name: "Books"}))
	return services.NewImportService(productRepo, categoryRepo), productRepo
}

func TestImportService_InitProducts(t *testing.T) {
	service, productRepo := newImportService(t)

	rows := []services.ProductImport{
		{Name: "Laptop", Description: "15-inch", Price: 3499.99, Weight: 2.1, Category: "Electronics"},
		{Name: "Novel", Description: "paperback", Price: 29.99, Weight: 0.4, Category: "Books"},
		{Name: "Sofa", Description: "three-seater", Price: 1999.99, Weight: 45, Category: "Furniture"}, // unknown category, skipped
		{Name: "", Price: 10, Weight: 1, Category: "Books"},                                            // invalid row, skipped
	}

	created, err := service.InitProducts(rows)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	count, err := productRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestImportService_InitProducts_AlreadyInitialized(t *testing.T) {
	service, productRepo := newImportService(t)
	require.NoError(t, productRepo.Create(&models.Product{Name: "Existing", Price: 1, Weight: 1}))

	_, err := service.InitProducts([]services.ProductImport{
		{Name: "Laptop", Price: 3499.99, Weight: 2.1, Category: "Electronics"},
	})
	assert.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestImportService_InitProducts_NoValidRows(t *testing.T) {
	service, _ := newImportService(t)

	_, err := service.InitProducts([]services.ProductImport{
		{Name: "Sofa", Price: 1999.99, Weight: 45, Category: "Furniture"},
	})
	assert.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	_, err = service.InitProducts(nil)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestParseCSV(t *testing.T) {
	data := `name,description,price,weight,category
Laptop,15-inch,3499.99,2.1,Electronics
Novel,paperback,29.99,0.4,Books
Broken,row,not-a-price,0.4,Books
`
	rows, err := services.ParseCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, services.ProductImport{Name: "Laptop", Description: "15-inch", Price: 3499.99, Weight: 2.1, Category: "Electronics"}, rows[0])
	assert.Equal(t, "Books", rows[1].Category)
}

func TestParseCSV_HeaderOrderIndependent(t *testing.T) {
	data := `category,weight,price,description,name
Electronics,2.1,3499.99,15-inch,Laptop
`
	rows, err := services.ParseCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Laptop", rows[0].Name)
	assert.Equal(t, 3499.99, rows[0].Price)
}

func TestParseCSV_MissingColumn(t *testing.T) {
	data := `name,price,weight
Laptop,3499.99,2.1
`
	_, err := services.ParseCSV(strings.NewReader(data))
	assert.Error(t, err)
}

package services_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"catalog-console/internal/ledger"
	"catalog-console/internal/models"
	"catalog-console/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageBody(ids ...int) string {
	items := make([]string, 0, len(ids))
	for _, id := range ids {
		items = append(items, fmt.Sprintf(`{"id": %d, "name": "p%d"}`, id, id))
	}
	return fmt.Sprintf(`{"items": [%s], "total": 25}`, strings.Join(items, ","))
}

func TestCatalog_FetchAndAppend(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle(http.MethodGet, "/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(pageBody(1, 2)))
		case "2":
			_, _ = w.Write([]byte(pageBody(3)))
		}
	})
	products := ledger.NewProductLedger(nil)
	catalog := services.NewCatalogService(backend.client(nil), products, 2)

	state, err := catalog.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, state.HasMore)
	assert.Equal(t, 25, state.Total)
	assert.Len(t, state.Items, 2)

	state, err = catalog.Append(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, state.Page)
	assert.False(t, state.HasMore, "a short page ends the listing")
	assert.Len(t, state.Items, 3)

	calls := backend.callsTo(http.MethodGet, "/products")
	require.Len(t, calls, 2)
	assert.Equal(t, "page=1&page_size=2", calls[0].Query)
}

func TestCatalog_SetFiltersMergesAndResetsPage(t *testing.T) {
	backend := newFakeBackend(t)
	backend.reply(http.MethodGet, "/products", http.StatusOK, pageBody(1))
	catalog := services.NewCatalogService(backend.client(nil), ledger.NewProductLedger(nil), 10)

	_, err := catalog.SetPage(context.Background(), 3)
	require.NoError(t, err)
	_, err = catalog.SetFilters(context.Background(), models.FilterUpdate{Stall: name("A12")})
	require.NoError(t, err)
	state, err := catalog.SetFilters(context.Background(), models.FilterUpdate{FromDate: name("2024-04-01"), SortBy: name("price")})
	require.NoError(t, err)

	assert.Equal(t, 1, state.Page)
	assert.Equal(t, models.ProductQuery{Stall: "A12", FromDate: "2024-04-01", SortBy: "price"}, state.Filters)
	calls := backend.callsTo(http.MethodGet, "/products")
	assert.Equal(t, "from_date=2024-04-01&page=1&page_size=10&sort_by=price&stall=A12", calls[len(calls)-1].Query)

	state, err = catalog.ResetFilters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ProductQuery{}, state.Filters)
}

func TestCatalog_SetFiltersClearsSubmittedEmptyField(t *testing.T) {
	backend := newFakeBackend(t)
	backend.reply(http.MethodGet, "/products", http.StatusOK, pageBody(1))
	catalog := services.NewCatalogService(backend.client(nil), ledger.NewProductLedger(nil), 10)

	_, err := catalog.SetFilters(context.Background(), models.FilterUpdate{Name: name("shirt")})
	require.NoError(t, err)
	state, err := catalog.SetFilters(context.Background(), models.FilterUpdate{Name: name(""), Stall: name("A")})
	require.NoError(t, err)

	assert.Equal(t, models.ProductQuery{Stall: "A"}, state.Filters)
	calls := backend.callsTo(http.MethodGet, "/products")
	assert.Equal(t, "page=1&page_size=10&stall=A", calls[len(calls)-1].Query)
}

func TestCatalog_ErrorKeptInState(t *testing.T) {
	backend := newFakeBackend(t)
	backend.reply(http.MethodGet, "/products", http.StatusServiceUnavailable, `{"detail": "maintenance"}`)
	catalog := services.NewCatalogService(backend.client(nil), ledger.NewProductLedger(nil), 10)

	state, err := catalog.Fetch(context.Background())

	require.Error(t, err)
	assert.Contains(t, state.LastError, "maintenance")
}

func TestCatalog_FetchKeepsUnsavedProduct(t *testing.T) {
	backend := newFakeBackend(t)
	backend.reply(http.MethodGet, "/products", http.StatusOK, pageBody(1, 2))
	products := ledger.NewProductLedger(nil)
	_, err := products.NewTemporary()
	require.NoError(t, err)
	catalog := services.NewCatalogService(backend.client(nil), products, 10)

	state, err := catalog.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, state.Items, 3)
	assert.Equal(t, models.TemporaryID, state.Items[0].ID)
}

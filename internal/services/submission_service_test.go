package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"catalog-console/internal/ledger"
	"catalog-console/internal/models"
	"catalog-console/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend    *fakeBackend
	products   *ledger.ProductLedger
	images     *ledger.ImageLedger
	submission *services.SubmissionService
}

func newFixture(t *testing.T) *fixture {
	backend := newFakeBackend(t)
	events := ledger.NewEvents()
	products := ledger.NewProductLedger(events)
	images := ledger.NewImageLedger(nil, events)
	return &fixture{
		backend:    backend,
		products:   products,
		images:     images,
		submission: services.NewSubmissionService(backend.client(nil), products, images),
	}
}

func name(s string) *string { return &s }

var (
	yes = services.ConfirmFunc(func(context.Context, string) bool { return true })
	no  = services.ConfirmFunc(func(context.Context, string) bool { return false })
)

func TestSubmit_CreatesProductThenImages(t *testing.T) {
	f := newFixture(t)
	f.backend.reply(http.MethodPost, "/products", http.StatusCreated,
		`{"id": 42, "name": "Test Shirt", "item_status": "product", "created_at": "2024-05-01T10:00:00"}`)
	f.backend.handle(http.MethodPost, "/product-image/process", func(w http.ResponseWriter, r *http.Request) {
		var subs []map[string]interface{}
		if !assert.NoError(t, json.Unmarshal([]byte(r.FormValue("images")), &subs)) || !assert.Len(t, subs, 1) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"images": [{"id": 501, "temp_id": "` + subs[0]["temp_id"].(string) +
			`", "file_name": "front.jpg", "url": "https://cdn/501.jpg", "is_main": false, "is_selected": true}], "message": {}, "error": {}}`))
	})

	_, err := f.products.NewTemporary()
	require.NoError(t, err)
	_, err = f.products.SetDraft(models.TemporaryID, models.ProductPatch{Name: name("Test Shirt")})
	require.NoError(t, err)
	img, err := f.images.Add(context.Background(), models.TemporaryID, models.ImageFile{Name: "front.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")})
	require.NoError(t, err)

	result, err := f.submission.Submit(context.Background(), models.TemporaryID)
	require.NoError(t, err)
	require.NoError(t, result.ImageErr)
	assert.Equal(t, int64(42), result.Product.ID)

	creates := f.backend.callsTo(http.MethodPost, "/products")
	require.Len(t, creates, 1)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(creates[0].Body), &body))
	assert.NotContains(t, body, "id")
	assert.NotContains(t, body, "created_at")
	assert.Equal(t, "Test Shirt", body["name"])

	saves := f.backend.callsTo(http.MethodPost, "/product-image/process")
	require.Len(t, saves, 1)
	assert.Equal(t, []string{"42"}, saves[0].Form["product_id"])
	assert.Equal(t, "front.jpg:jpeg", saves[0].Files["file_"+img.TempID])

	assert.Empty(t, f.images.List(models.TemporaryID))
	list := f.images.List(42)
	require.Len(t, list, 1)
	assert.Equal(t, int64(501), list[0].ID)
	assert.Equal(t, models.ImageActionOriginal, list[0].Action)
	assert.Empty(t, list[0].TempID)

	assert.False(t, f.products.HasTemporary())
	p, ok := f.products.Get(42)
	require.True(t, ok)
	assert.Equal(t, "2024-05-01T10:00:00", p.CreatedAt)
}

func TestSubmit_ImageFailureKeepsProductUpdate(t *testing.T) {
	f := newFixture(t)
	f.backend.reply(http.MethodPut, "/products/7", http.StatusOK, `{"id": 7, "name": "Renamed"}`)
	f.backend.reply(http.MethodPost, "/product-image/process", http.StatusInternalServerError, `{"detail": "storage offline"}`)

	existing := models.NewProduct()
	existing.ID = 7
	existing.Name = "Original"
	f.products.Upsert(existing)
	f.images.Load(7, []models.ServerImage{
		{ID: 1, FileName: "a.jpg", URL: "https://cdn/a.jpg", IsMain: true, IsSelected: true},
		{ID: 2, FileName: "b.jpg", URL: "https://cdn/b.jpg"},
	})
	require.NoError(t, f.images.ToggleSelected(7, "2"))
	before := f.images.List(7)

	_, err := f.products.SetDraft(7, models.ProductPatch{Name: name("Renamed")})
	require.NoError(t, err)

	result, err := f.submission.Submit(context.Background(), 7)
	require.NoError(t, err)
	require.Error(t, result.ImageErr)
	assert.Contains(t, result.ImageErr.Error(), "storage offline")

	p, ok := f.products.Get(7)
	require.True(t, ok)
	assert.Equal(t, "Renamed", p.Name)
	assert.Equal(t, before, f.images.List(7))
}

func TestSubmit_CreateFailureLeavesDraftTemporary(t *testing.T) {
	f := newFixture(t)
	f.backend.reply(http.MethodPost, "/products", http.StatusBadRequest, `{"message": "stall name is required"}`)

	_, err := f.products.NewTemporary()
	require.NoError(t, err)
	_, err = f.products.SetDraft(models.TemporaryID, models.ProductPatch{Name: name("Test Shirt")})
	require.NoError(t, err)
	_, err = f.images.Add(context.Background(), models.TemporaryID, models.ImageFile{Name: "a.jpg", ContentType: "image/jpeg", Data: []byte("a")})
	require.NoError(t, err)

	_, err = f.submission.Submit(context.Background(), models.TemporaryID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stall name is required")

	assert.Empty(t, f.backend.callsTo(http.MethodPost, "/product-image/process"))
	assert.True(t, f.products.HasTemporary())
	draft, err := f.products.GetDraft(models.TemporaryID)
	require.NoError(t, err)
	assert.Equal(t, "Test Shirt", draft.Name)
	assert.Len(t, f.images.List(models.TemporaryID), 1)
}

func TestSubmit_UpdateFailureSkipsImages(t *testing.T) {
	f := newFixture(t)
	f.backend.reply(http.MethodPut, "/products/7", http.StatusInternalServerError, ``)

	existing := models.NewProduct()
	existing.ID = 7
	existing.Name = "Original"
	f.products.Upsert(existing)
	f.images.Load(7, []models.ServerImage{{ID: 1, URL: "https://cdn/a.jpg"}})
	require.NoError(t, f.images.MarkDeleted(7, "1"))

	_, err := f.submission.Submit(context.Background(), 7)
	require.Error(t, err)

	assert.Empty(t, f.backend.callsTo(http.MethodPost, "/product-image/process"))
	list := f.images.List(7)
	require.Len(t, list, 1)
	assert.Equal(t, models.ImageActionDelete, list[0].Action)
}

func TestSubmit_ValidationBlocksNetwork(t *testing.T) {
	f := newFixture(t)
	_, err := f.products.NewTemporary()
	require.NoError(t, err)

	_, err = f.submission.Submit(context.Background(), models.TemporaryID)

	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Empty(t, f.backend.recorded())
}

func TestSubmit_NoImageChangesSkipsImageSave(t *testing.T) {
	f := newFixture(t)
	f.backend.reply(http.MethodPut, "/products/7", http.StatusOK, `{"id": 7, "name": "Same"}`)

	existing := models.NewProduct()
	existing.ID = 7
	existing.Name = "Same"
	f.products.Upsert(existing)
	f.images.Load(7, []models.ServerImage{{ID: 1, URL: "https://cdn/a.jpg"}})

	result, err := f.submission.Submit(context.Background(), 7)
	require.NoError(t, err)
	assert.NoError(t, result.ImageErr)
	assert.Empty(t, f.backend.callsTo(http.MethodPost, "/product-image/process"))
}

func TestSubmit_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.submission.Submit(context.Background(), 99)

	assert.ErrorIs(t, err, ledger.ErrProductNotFound)
}

func TestDeleteProduct_DeclinedMakesNoCall(t *testing.T) {
	f := newFixture(t)
	existing := models.NewProduct()
	existing.ID = 7
	f.products.Upsert(existing)

	err := f.submission.DeleteProduct(context.Background(), 7, no)

	assert.ErrorIs(t, err, services.ErrNotConfirmed)
	assert.Empty(t, f.backend.recorded())
	_, ok := f.products.Get(7)
	assert.True(t, ok)

	assert.ErrorIs(t, f.submission.DeleteProduct(context.Background(), 7, nil), services.ErrNotConfirmed)
}

func TestDeleteProduct_Confirmed(t *testing.T) {
	f := newFixture(t)
	f.backend.reply(http.MethodDelete, "/products/7", http.StatusNoContent, ``)
	existing := models.NewProduct()
	existing.ID = 7
	f.products.Upsert(existing)
	f.images.Load(7, []models.ServerImage{{ID: 1}})

	require.NoError(t, f.submission.DeleteProduct(context.Background(), 7, yes))

	_, ok := f.products.Get(7)
	assert.False(t, ok)
	assert.Empty(t, f.images.List(7))
}

func TestDeleteProduct_FailureKeepsLedger(t *testing.T) {
	f := newFixture(t)
	f.backend.reply(http.MethodDelete, "/products/7", http.StatusForbidden, `{"detail": "not allowed"}`)
	existing := models.NewProduct()
	existing.ID = 7
	f.products.Upsert(existing)

	err := f.submission.DeleteProduct(context.Background(), 7, yes)

	require.Error(t, err)
	_, ok := f.products.Get(7)
	assert.True(t, ok)
}

func TestDeleteProduct_TemporaryIsLocal(t *testing.T) {
	f := newFixture(t)
	_, err := f.products.NewTemporary()
	require.NoError(t, err)

	require.NoError(t, f.submission.DeleteProduct(context.Background(), models.TemporaryID, yes))

	assert.False(t, f.products.HasTemporary())
	assert.Empty(t, f.backend.recorded())
}

func TestBatchDelete_KeepsFailedIDs(t *testing.T) {
	f := newFixture(t)
	f.backend.reply(http.MethodPost, "/products/batch-delete", http.StatusOK,
		`{"total": 3, "success_count": 2, "failed_count": 1, "failed_ids": [6]}`)
	for _, id := range []int64{5, 6, 7} {
		p := models.NewProduct()
		p.ID = id
		f.products.Upsert(p)
	}

	result, err := f.submission.BatchDelete(context.Background(), []int64{5, 6, 7}, yes)
	require.NoError(t, err)
	assert.Equal(t, []int64{6}, result.FailedIDs)

	calls := f.backend.callsTo(http.MethodPost, "/products/batch-delete")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `[5, 6, 7]`, calls[0].Body)

	var remaining []int64
	for _, p := range f.products.Items() {
		remaining = append(remaining, p.ID)
	}
	assert.Equal(t, []int64{6}, remaining)
}

func TestBatchDelete_RequiresSelectionAndConfirmation(t *testing.T) {
	f := newFixture(t)

	_, err := f.submission.BatchDelete(context.Background(), nil, yes)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = f.submission.BatchDelete(context.Background(), []int64{1}, no)
	assert.ErrorIs(t, err, services.ErrNotConfirmed)
	assert.Empty(t, f.backend.recorded())
}

func TestValidateProduct(t *testing.T) {
	p := models.NewProduct()
	p.Name = "  "
	assert.ErrorIs(t, services.ValidateProduct(p), services.ErrValidation)

	p.Name = "Shirt"
	assert.NoError(t, services.ValidateProduct(p))

	price := -1.0
	p.Price = &price
	err := services.ValidateProduct(p)
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Contains(t, err.Error(), "price")
}

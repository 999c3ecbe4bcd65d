package ledger_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"catalog-console/internal/ledger"
	"catalog-console/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePreviews struct {
	mu       sync.Mutex
	staged   map[string]models.ImageFile
	released []string
	failWith error
}

func newFakePreviews() *fakePreviews {
	return &fakePreviews{staged: map[string]models.ImageFile{}}
}

func (f *fakePreviews) Stage(_ context.Context, tempID string, file models.ImageFile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	f.staged[tempID] = file
	return "/previews/" + tempID, nil
}

func (f *fakePreviews) Release(_ context.Context, tempID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.staged, tempID)
	f.released = append(f.released, tempID)
	return nil
}

func serverImages() []models.ServerImage {
	return []models.ServerImage{
		{ID: 1, FileName: "a.jpg", URL: "https://cdn/a.jpg", IsMain: true, IsSelected: true},
		{ID: 2, FileName: "b.jpg", URL: "https://cdn/b.jpg", IsSelected: true},
		{ID: 3, FileName: "c.jpg", URL: "https://cdn/c.jpg"},
	}
}

func loadedLedger(t *testing.T) (*ledger.ImageLedger, *fakePreviews) {
	t.Helper()
	previews := newFakePreviews()
	l := ledger.NewImageLedger(previews, ledger.NewEvents())
	l.Load(7, serverImages())
	return l, previews
}

func jpeg(name string) models.ImageFile {
	return models.ImageFile{Name: name, ContentType: "image/jpeg", Data: []byte(name)}
}

func TestImageLedger_ListEmptyForUnknownProduct(t *testing.T) {
	l := ledger.NewImageLedger(nil, nil)
	assert.Empty(t, l.List(99))
}

func TestImageLedger_LoadMarksOriginal(t *testing.T) {
	l, _ := loadedLedger(t)

	list := l.List(7)
	require.Len(t, list, 3)
	for _, img := range list {
		assert.Equal(t, models.ImageActionOriginal, img.Action)
		assert.Equal(t, int64(7), img.ProductID)
	}
}

func TestImageLedger_AddAppendsNewSelectedImage(t *testing.T) {
	l, previews := loadedLedger(t)

	img, err := l.Add(context.Background(), 7, jpeg("d.jpg"))
	require.NoError(t, err)

	assert.NotEmpty(t, img.TempID)
	assert.Equal(t, models.ImageActionNew, img.Action)
	assert.True(t, img.IsSelected)
	assert.False(t, img.IsMain)
	assert.Equal(t, "/previews/"+img.TempID, img.URL)
	assert.Contains(t, previews.staged, img.TempID)

	list := l.List(7)
	require.Len(t, list, 4)
	assert.Equal(t, img.TempID, list[3].TempID)
}

func TestImageLedger_AddGeneratesUniqueTempIDs(t *testing.T) {
	l := ledger.NewImageLedger(newFakePreviews(), nil)

	a, err := l.Add(context.Background(), 1, jpeg("a.jpg"))
	require.NoError(t, err)
	b, err := l.Add(context.Background(), 1, jpeg("b.jpg"))
	require.NoError(t, err)

	assert.NotEqual(t, a.TempID, b.TempID)
}

func TestImageLedger_AddFailsWhenPreviewCannotBeStaged(t *testing.T) {
	previews := newFakePreviews()
	previews.failWith = errors.New("bucket unavailable")
	l := ledger.NewImageLedger(previews, nil)

	_, err := l.Add(context.Background(), 1, jpeg("a.jpg"))

	assert.Error(t, err)
	assert.Empty(t, l.List(1))
}

func TestImageLedger_MutationsUpgradeOriginal(t *testing.T) {
	l, _ := loadedLedger(t)

	require.NoError(t, l.ToggleSelected(7, "2"))
	require.NoError(t, l.SetMain(7, "3"))

	byID := map[int64]models.ProductImage{}
	for _, img := range l.List(7) {
		byID[img.ID] = img
	}

	assert.Equal(t, models.ImageActionUpdate, byID[1].Action, "lost main flag")
	assert.False(t, byID[1].IsMain)
	assert.Equal(t, models.ImageActionUpdate, byID[2].Action)
	assert.False(t, byID[2].IsSelected)
	assert.Equal(t, models.ImageActionUpdate, byID[3].Action)
	assert.True(t, byID[3].IsMain)
}

func TestImageLedger_MutationsKeepNewAndDelete(t *testing.T) {
	l, _ := loadedLedger(t)
	img, err := l.Add(context.Background(), 7, jpeg("d.jpg"))
	require.NoError(t, err)
	require.NoError(t, l.MarkDeleted(7, "2"))

	require.NoError(t, l.SetMain(7, img.TempID))
	require.NoError(t, l.ToggleSelected(7, img.TempID))
	require.NoError(t, l.ToggleSelected(7, "2"))

	for _, rec := range l.List(7) {
		switch {
		case rec.TempID == img.TempID:
			assert.Equal(t, models.ImageActionNew, rec.Action)
		case rec.ID == 2:
			assert.Equal(t, models.ImageActionDelete, rec.Action)
		}
	}
}

func TestImageLedger_MarkDeletedIsUnconditional(t *testing.T) {
	l, _ := loadedLedger(t)
	img, err := l.Add(context.Background(), 7, jpeg("d.jpg"))
	require.NoError(t, err)
	require.NoError(t, l.ToggleSelected(7, "1"))

	for _, key := range []string{"1", "3", img.TempID} {
		require.NoError(t, l.MarkDeleted(7, key))
	}

	for _, rec := range l.List(7) {
		if rec.ID == 2 {
			continue
		}
		assert.Equal(t, models.ImageActionDelete, rec.Action)
	}
}

func TestImageLedger_UnknownKey(t *testing.T) {
	l, _ := loadedLedger(t)

	assert.ErrorIs(t, l.SetMain(7, "404"), ledger.ErrImageNotFound)
	assert.ErrorIs(t, l.ToggleSelected(7, "404"), ledger.ErrImageNotFound)
	assert.ErrorIs(t, l.MarkDeleted(7, "404"), ledger.ErrImageNotFound)
	assert.ErrorIs(t, l.SetMain(8, "1"), ledger.ErrImageNotFound)
}

func TestImageLedger_SetMainKeepsSingleMain(t *testing.T) {
	l, _ := loadedLedger(t)
	img, err := l.Add(context.Background(), 7, jpeg("d.jpg"))
	require.NoError(t, err)

	for _, key := range []string{"2", img.TempID, "3", "1", img.TempID, "2"} {
		require.NoError(t, l.SetMain(7, key))

		mains := 0
		for _, rec := range l.List(7) {
			if rec.IsMain && rec.Action != models.ImageActionDelete {
				mains++
				assert.True(t, rec.Matches(key))
			}
		}
		assert.Equal(t, 1, mains)
	}
}

func TestImageLedger_RebindMovesEverything(t *testing.T) {
	l := ledger.NewImageLedger(newFakePreviews(), nil)
	a, err := l.Add(context.Background(), models.TemporaryID, jpeg("a.jpg"))
	require.NoError(t, err)
	b, err := l.Add(context.Background(), models.TemporaryID, jpeg("b.jpg"))
	require.NoError(t, err)

	l.Rebind(models.TemporaryID, 42)

	assert.Empty(t, l.List(models.TemporaryID))
	moved := l.List(42)
	require.Len(t, moved, 2)
	assert.Equal(t, a.TempID, moved[0].TempID)
	assert.Equal(t, b.TempID, moved[1].TempID)
	for _, img := range moved {
		assert.Equal(t, int64(42), img.ProductID)
	}
}

func TestImageLedger_BuildSubmission(t *testing.T) {
	l, _ := loadedLedger(t)
	img, err := l.Add(context.Background(), 7, jpeg("d.jpg"))
	require.NoError(t, err)
	require.NoError(t, l.MarkDeleted(7, "3"))
	require.NoError(t, l.ToggleSelected(7, "2"))

	subs, files := l.BuildSubmission(7)

	assert.ElementsMatch(t, []models.ImageSubmission{
		{ID: 2, Action: models.ImageActionUpdate, IsSelected: false},
		{ID: 3, Action: models.ImageActionDelete},
		{TempID: img.TempID, Action: models.ImageActionNew, IsSelected: true},
	}, subs)
	require.Len(t, files, 1)
	assert.Equal(t, "d.jpg", files[img.TempID].Name)
}

func TestImageLedger_BuildSubmissionEmptyWhenUnchanged(t *testing.T) {
	l, _ := loadedLedger(t)

	subs, files := l.BuildSubmission(7)

	assert.Empty(t, subs)
	assert.Empty(t, files)
}

func TestImageLedger_ReconcileUpdatesInPlaceAndPrunes(t *testing.T) {
	l, previews := loadedLedger(t)
	img, err := l.Add(context.Background(), 7, jpeg("d.jpg"))
	require.NoError(t, err)
	require.NoError(t, l.MarkDeleted(7, "3"))
	require.NoError(t, l.SetMain(7, img.TempID))

	server := []models.ServerImage{
		{ID: 1, FileName: "a.jpg", URL: "https://cdn/a.jpg", IsSelected: true},
		{ID: 2, FileName: "b.jpg", URL: "https://cdn/b.jpg", IsSelected: true},
		{ID: 10, TempID: img.TempID, FileName: "d.jpg", URL: "https://cdn/d.jpg", IsMain: true, IsSelected: true},
	}
	l.Reconcile(context.Background(), 7, server)

	list := l.List(7)
	require.Len(t, list, 3)
	ids := []int64{}
	for _, rec := range list {
		ids = append(ids, rec.ID)
		assert.Equal(t, models.ImageActionOriginal, rec.Action)
		assert.Empty(t, rec.TempID)
		assert.Nil(t, rec.File)
	}
	assert.Equal(t, []int64{1, 2, 10}, ids)
	assert.Equal(t, "https://cdn/d.jpg", list[2].URL)
	assert.True(t, list[2].IsMain)
	assert.Contains(t, previews.released, img.TempID)
}

func TestImageLedger_ReconcileInsertsUnknownServerImages(t *testing.T) {
	l, _ := loadedLedger(t)

	server := append(serverImages(), models.ServerImage{ID: 11, FileName: "e.jpg", URL: "https://cdn/e.jpg"})
	l.Reconcile(context.Background(), 7, server)

	list := l.List(7)
	require.Len(t, list, 4)
	assert.Equal(t, int64(11), list[3].ID)
	assert.Equal(t, models.ImageActionOriginal, list[3].Action)
}

func TestImageLedger_ReconcileIsIdempotent(t *testing.T) {
	l, _ := loadedLedger(t)
	img, err := l.Add(context.Background(), 7, jpeg("d.jpg"))
	require.NoError(t, err)
	require.NoError(t, l.MarkDeleted(7, "2"))

	server := []models.ServerImage{
		{ID: 1, FileName: "a.jpg", URL: "https://cdn/a.jpg", IsMain: true, IsSelected: true},
		{ID: 3, FileName: "c.jpg", URL: "https://cdn/c.jpg"},
		{ID: 12, TempID: img.TempID, FileName: "d.jpg", URL: "https://cdn/d.jpg", IsSelected: true},
		{FileName: "e.jpg", URL: "https://cdn/e.jpg"},
	}
	l.Reconcile(context.Background(), 7, server)
	once := l.List(7)
	l.Reconcile(context.Background(), 7, server)

	assert.Equal(t, once, l.List(7))
	assert.Len(t, once, 3)
	for _, rec := range once {
		assert.NotEqual(t, models.ImageActionDelete, rec.Action)
		assert.NotEqual(t, "https://cdn/e.jpg", rec.URL, "entries without id or tempId are skipped")
	}
}

func TestImageLedger_PreviewURL(t *testing.T) {
	l, _ := loadedLedger(t)

	url, ok := l.PreviewURL(7)
	require.True(t, ok)
	assert.Equal(t, "https://cdn/a.jpg", url)

	require.NoError(t, l.MarkDeleted(7, "1"))
	url, ok = l.PreviewURL(7)
	require.True(t, ok)
	assert.Equal(t, "https://cdn/b.jpg", url, "falls back to the first non-deleted image")

	require.NoError(t, l.MarkDeleted(7, "2"))
	require.NoError(t, l.MarkDeleted(7, "3"))
	_, ok = l.PreviewURL(7)
	assert.False(t, ok)
}

func TestImageLedger_ClearReleasesPreviews(t *testing.T) {
	l, previews := loadedLedger(t)
	img, err := l.Add(context.Background(), 7, jpeg("d.jpg"))
	require.NoError(t, err)

	l.Clear(context.Background(), 7)

	assert.Empty(t, l.List(7))
	assert.NotContains(t, previews.staged, img.TempID)
}

func TestImageLedger_PublishesChanges(t *testing.T) {
	events := ledger.NewEvents()
	var seen []int64
	require.NoError(t, events.SubscribeImages(func(productID int64) {
		seen = append(seen, productID)
	}))
	l := ledger.NewImageLedger(nil, events)

	l.Load(5, serverImages())
	require.NoError(t, l.ToggleSelected(5, strconv.Itoa(1)))
	l.Rebind(5, 6)

	assert.Equal(t, []int64{5, 5, 5, 6}, seen)
}

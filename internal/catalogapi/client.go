package catalogapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"catalog-console/internal/models"
	"catalog-console/internal/wire"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client exposes the catalog backend's endpoints with typed payloads.
type Client struct {
	wire *wire.Client
}

func NewClient(w *wire.Client) *Client {
	return &Client{wire: w}
}

// ListProducts runs a filtered, paginated listing query.
func (c *Client) ListProducts(ctx context.Context, query models.ProductQuery, page, pageSize int) (*models.ProductList, error) {
	params := query.Params()
	params["page"] = page
	params["pageSize"] = pageSize

	var result models.ProductList
	if err := c.wire.Do(ctx, http.MethodGet, "/products", nil, &wire.RequestOptions{Query: params}, &result); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &result, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var result models.Product
	if err := c.wire.Do(ctx, http.MethodGet, productPath(id), nil, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &result, nil
}

// CreateProduct posts the product without its id; the backend assigns one.
func (c *Client) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	var result models.Product
	if err := c.wire.Do(ctx, http.MethodPost, "/products", p.Input(), nil, &result); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	if result.ID <= 0 {
		return nil, fmt.Errorf("failed to create product: %w: missing product id", wire.ErrResponseFormat)
	}
	return &result, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, p models.Product) (*models.Product, error) {
	var result models.Product
	if err := c.wire.Do(ctx, http.MethodPut, productPath(id), p.Input(), nil, &result); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	if result.ID == 0 {
		result.ID = id
	}
	return &result, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.wire.Do(ctx, http.MethodDelete, productPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

func (c *Client) BatchDelete(ctx context.Context, ids []int64) (*models.BatchDeleteResult, error) {
	body := make([]interface{}, len(ids))
	for i, id := range ids {
		body[i] = id
	}

	var result models.BatchDeleteResult
	if err := c.wire.Do(ctx, http.MethodPost, "/products/batch-delete", body, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to batch delete products: %w", err)
	}
	return &result, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var result []string
	if err := c.wire.Do(ctx, http.MethodGet, "/product-categories", nil, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return result, nil
}

// ProcessImages submits an image diff. files is keyed by tempId.
func (c *Client) ProcessImages(ctx context.Context, productID int64, subs []models.ImageSubmission, files map[string]models.ImageFile) (*models.ProcessImagesResponse, error) {
	tree, err := wire.ToTree(subs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image submission: %w", err)
	}
	metadata, err := json.Marshal(wire.ToWireFormat(tree))
	if err != nil {
		return nil, fmt.Errorf("failed to encode image submission: %w", err)
	}

	form := wire.NewMultipart().
		AddField("product_id", strconv.FormatInt(productID, 10)).
		AddField("images", string(metadata))
	for _, sub := range subs {
		f, ok := files[sub.TempID]
		if !ok || sub.TempID == "" {
			continue
		}
		form.AddFile("file_"+sub.TempID, f.Name, f.ContentType, f.Data)
	}

	var result models.ProcessImagesResponse
	if err := c.wire.Do(ctx, http.MethodPost, "/product-image/process", form, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to save images for product %d: %w", productID, err)
	}
	if len(result.Error) > 0 {
		zap.L().Warn("backend reported image processing errors",
			zap.Int64("product_id", productID),
			zap.Any("errors", result.Error),
		)
	}
	return &result, nil
}

func (c *Client) ListProductImages(ctx context.Context, productID int64) ([]models.ServerImage, error) {
	var result []models.ServerImage
	path := "/product-image/product/" + strconv.FormatInt(productID, 10)
	if err := c.wire.Do(ctx, http.MethodGet, path, nil, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to list images for product %d: %w", productID, err)
	}
	return result, nil
}

// Login exchanges credentials for an access token. The form is multipart so
// the transport negotiates the boundary.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	form := wire.NewMultipart().
		AddField("username", username).
		AddField("password", password)

	var result models.LoginResponse
	if err := c.wire.Do(ctx, http.MethodPost, "/auth/login", form, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	return &result, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*models.CurrentUser, error) {
	var result models.CurrentUser
	if err := c.wire.Do(ctx, http.MethodGet, "/auth/me", nil, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return &result, nil
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}

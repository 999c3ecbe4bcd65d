package models

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TemporaryID identifies the single product that exists only in the console
// and has not been created on the backend yet.
const TemporaryID int64 = -1

// Product is a catalog entry as the console edits it. Field names follow the
// console's camelCase convention; the wire layer converts them.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	PurchasePrice *float64 `json:"purchasePrice"`
	TotalCost     *float64 `json:"totalCost"`
	Price         *float64 `json:"price"`

	StallName string `json:"stallName"`
	Source    string `json:"source"`
	SourceURL string `json:"sourceUrl"`

	CustomType  string            `json:"customType"`
	Material    string            `json:"material"`
	SizeMetrics map[string]string `json:"sizeMetrics"`
	SizeNote    string            `json:"sizeNote"`
	RealStock   *int              `json:"realStock"`
	ItemStatus  string            `json:"itemStatus"`

	ItemFolder     string   `json:"itemFolder"`
	MainImage      string   `json:"mainImage"`
	SelectedImages []string `json:"selectedImages"`

	Colors []string `json:"colors"`
	Sizes  []string `json:"sizes"`

	ShopeeCategoryID *int64 `json:"shopeeCategoryId,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// NewProduct returns the defaulted draft used when the operator adds a product.
func NewProduct() Product {
	return Product{
		ID:             TemporaryID,
		ItemStatus:     ItemStatusProduct,
		SizeMetrics:    map[string]string{},
		SelectedImages: []string{},
		Colors:         []string{},
		Sizes:          []string{},
	}
}

const ItemStatusProduct = "product"

func (p Product) IsTemporary() bool {
	return p.ID == TemporaryID
}

// Clone returns a copy that shares no slices or maps with p.
func (p Product) Clone() Product {
	out := p
	if p.SizeMetrics != nil {
		out.SizeMetrics = make(map[string]string, len(p.SizeMetrics))
		for k, v := range p.SizeMetrics {
			out.SizeMetrics[k] = v
		}
	}
	out.SelectedImages = cloneStrings(p.SelectedImages)
	out.Colors = cloneStrings(p.Colors)
	out.Sizes = cloneStrings(p.Sizes)
	out.PurchasePrice = cloneFloat(p.PurchasePrice)
	out.TotalCost = cloneFloat(p.TotalCost)
	out.Price = cloneFloat(p.Price)
	if p.RealStock != nil {
		v := *p.RealStock
		out.RealStock = &v
	}
	if p.ShopeeCategoryID != nil {
		v := *p.ShopeeCategoryID
		out.ShopeeCategoryID = &v
	}
	return out
}

// ProductInput is the body sent on create and update: the product without
// its identity and server-managed timestamps.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	PurchasePrice *float64 `json:"purchasePrice"`
	TotalCost     *float64 `json:"totalCost"`
	Price         *float64 `json:"price"`

	StallName string `json:"stallName"`
	Source    string `json:"source"`
	SourceURL string `json:"sourceUrl"`

	CustomType  string            `json:"customType"`
	Material    string            `json:"material"`
	SizeMetrics map[string]string `json:"sizeMetrics"`
	SizeNote    string            `json:"sizeNote"`
	RealStock   *int              `json:"realStock"`
	ItemStatus  string            `json:"itemStatus"`

	ItemFolder     string   `json:"itemFolder"`
	MainImage      string   `json:"mainImage"`
	SelectedImages []string `json:"selectedImages"`

	Colors []string `json:"colors"`
	Sizes  []string `json:"sizes"`

	ShopeeCategoryID *int64 `json:"shopeeCategoryId,omitempty"`
}

func (p Product) Input() ProductInput {
	c := p.Clone()
	return ProductInput{
		Name:             c.Name,
		Description:      c.Description,
		PurchasePrice:    c.PurchasePrice,
		TotalCost:        c.TotalCost,
		Price:            c.Price,
		StallName:        c.StallName,
		Source:           c.Source,
		SourceURL:        c.SourceURL,
		CustomType:       c.CustomType,
		Material:         c.Material,
		SizeMetrics:      c.SizeMetrics,
		SizeNote:         c.SizeNote,
		RealStock:        c.RealStock,
		ItemStatus:       c.ItemStatus,
		ItemFolder:       c.ItemFolder,
		MainImage:        c.MainImage,
		SelectedImages:   c.SelectedImages,
		Colors:           c.Colors,
		Sizes:            c.Sizes,
		ShopeeCategoryID: c.ShopeeCategoryID,
	}
}

// ProductPatch is a field-level edit. Nil fields are left untouched; the
// optional numeric fields sent as an explicit JSON null are reset to unset.
type ProductPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`

	PurchasePrice *float64 `json:"purchasePrice,omitempty"`
	TotalCost     *float64 `json:"totalCost,omitempty"`
	Price         *float64 `json:"price,omitempty"`

	StallName *string `json:"stallName,omitempty"`
	Source    *string `json:"source,omitempty"`
	SourceURL *string `json:"sourceUrl,omitempty"`

	CustomType  *string           `json:"customType,omitempty"`
	Material    *string           `json:"material,omitempty"`
	SizeMetrics map[string]string `json:"sizeMetrics,omitempty"`
	SizeNote    *string           `json:"sizeNote,omitempty"`
	RealStock   *int              `json:"realStock,omitempty"`
	ItemStatus  *string           `json:"itemStatus,omitempty"`

	ItemFolder     *string  `json:"itemFolder,omitempty"`
	MainImage      *string  `json:"mainImage,omitempty"`
	SelectedImages []string `json:"selectedImages,omitempty"`

	Colors []string `json:"colors,omitempty"`
	Sizes  []string `json:"sizes,omitempty"`

	ShopeeCategoryID *int64 `json:"shopeeCategoryId,omitempty"`

	// Null holds the JSON keys of optional fields to reset.
	Null map[string]bool `json:"-"`
}

var nullablePatchKeys = []string{"purchasePrice", "totalCost", "price", "realStock", "shopeeCategoryId"}

func (patch *ProductPatch) UnmarshalJSON(data []byte) error {
	type plain ProductPatch
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range nullablePatchKeys {
		if v, ok := raw[key]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			if p.Null == nil {
				p.Null = make(map[string]bool)
			}
			p.Null[key] = true
		}
	}
	*patch = ProductPatch(p)
	return nil
}

// Apply merges the patch into p and returns the result. p is not modified.
func (patch ProductPatch) Apply(p Product) Product {
	out := p.Clone()
	setString(&out.Name, patch.Name)
	setString(&out.Description, patch.Description)
	if patch.PurchasePrice != nil {
		out.PurchasePrice = cloneFloat(patch.PurchasePrice)
	}
	if patch.TotalCost != nil {
		out.TotalCost = cloneFloat(patch.TotalCost)
	}
	if patch.Price != nil {
		out.Price = cloneFloat(patch.Price)
	}
	setString(&out.StallName, patch.StallName)
	setString(&out.Source, patch.Source)
	setString(&out.SourceURL, patch.SourceURL)
	setString(&out.CustomType, patch.CustomType)
	setString(&out.Material, patch.Material)
	if patch.SizeMetrics != nil {
		out.SizeMetrics = make(map[string]string, len(patch.SizeMetrics))
		for k, v := range patch.SizeMetrics {
			out.SizeMetrics[k] = v
		}
	}
	setString(&out.SizeNote, patch.SizeNote)
	if patch.RealStock != nil {
		v := *patch.RealStock
		out.RealStock = &v
	}
	setString(&out.ItemStatus, patch.ItemStatus)
	setString(&out.ItemFolder, patch.ItemFolder)
	setString(&out.MainImage, patch.MainImage)
	if patch.SelectedImages != nil {
		out.SelectedImages = cloneStrings(patch.SelectedImages)
	}
	if patch.Colors != nil {
		out.Colors = cloneStrings(patch.Colors)
	}
	if patch.Sizes != nil {
		out.Sizes = cloneStrings(patch.Sizes)
	}
	if patch.ShopeeCategoryID != nil {
		v := *patch.ShopeeCategoryID
		out.ShopeeCategoryID = &v
	}

	if patch.Null["purchasePrice"] {
		out.PurchasePrice = nil
	}
	if patch.Null["totalCost"] {
		out.TotalCost = nil
	}
	if patch.Null["price"] {
		out.Price = nil
	}
	if patch.Null["realStock"] {
		out.RealStock = nil
	}
	if patch.Null["shopeeCategoryId"] {
		out.ShopeeCategoryID = nil
	}
	return out
}

// ProductQuery holds the listing filters. Zero values are not sent.
type ProductQuery struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Stall     string `json:"stall,omitempty"`
	FromDate  string `json:"fromDate,omitempty"`
	Source    string `json:"source,omitempty"`
	SortBy    string `json:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder,omitempty"`
}

// FilterUpdate is a filter form submission. A nil field keeps the current
// filter; a non-nil field replaces it, so an empty value clears it.
type FilterUpdate struct {
	ID        *int64  `json:"id,omitempty"`
	Name      *string `json:"name,omitempty"`
	Stall     *string `json:"stall,omitempty"`
	FromDate  *string `json:"fromDate,omitempty"`
	Source    *string `json:"source,omitempty"`
	SortBy    *string `json:"sortBy,omitempty"`
	SortOrder *string `json:"sortOrder,omitempty"`
}

// Empty reports whether the update touches no filter.
func (u FilterUpdate) Empty() bool {
	return u == FilterUpdate{}
}

// Apply returns q with the fields present in u replaced.
func (q ProductQuery) Apply(u FilterUpdate) ProductQuery {
	if u.ID != nil {
		q.ID = *u.ID
	}
	setString(&q.Name, u.Name)
	setString(&q.Stall, u.Stall)
	setString(&q.FromDate, u.FromDate)
	setString(&q.Source, u.Source)
	setString(&q.SortBy, u.SortBy)
	setString(&q.SortOrder, u.SortOrder)
	return q
}

// Params returns the query as camelCase request parameters.
func (q ProductQuery) Params() map[string]interface{} {
	params := map[string]interface{}{}
	if q.ID != 0 {
		params["id"] = q.ID
	}
	if q.Name != "" {
		params["name"] = q.Name
	}
	if q.Stall != "" {
		params["stall"] = q.Stall
	}
	if q.FromDate != "" {
		params["fromDate"] = q.FromDate
	}
	if q.Source != "" {
		params["source"] = q.Source
	}
	if q.SortBy != "" {
		params["sortBy"] = q.SortBy
	}
	if q.SortOrder != "" {
		params["sortOrder"] = q.SortOrder
	}
	return params
}

type ProductList struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
}

type BatchDeleteResult struct {
	Total        int     `json:"total"`
	SuccessCount int     `json:"successCount"`
	FailedCount  int     `json:"failedCount"`
	FailedIDs    []int64 `json:"failedIds"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

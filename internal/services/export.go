package services

import (
	"fmt"
	"io"
	"strings"

	"catalog-console/internal/fields"
	"catalog-console/internal/models"

	"github.com/gocarina/gocsv"
)

type productRow struct {
	ID            int64    `csv:"id"`
	Name          string   `csv:"name"`
	CustomType    string   `csv:"custom_type"`
	Price         *float64 `csv:"price"`
	PurchasePrice *float64 `csv:"purchase_price"`
	TotalCost     *float64 `csv:"total_cost"`
	StallName     string   `csv:"stall_name"`
	Source        string   `csv:"source"`
	SourceURL     string   `csv:"source_url"`
	Material      string   `csv:"material"`
	SizeMetrics   string   `csv:"size_metrics"`
	Colors        string   `csv:"colors"`
	Sizes         string   `csv:"sizes"`
	RealStock     *int     `csv:"real_stock"`
	ItemStatus    string   `csv:"item_status"`
	CreatedAt     string   `csv:"created_at"`
	UpdatedAt     string   `csv:"updated_at"`
}

// ExportCSV writes products as CSV, one row per product, skipping the
// unsaved one. Size metrics are written as "label:value" pairs in form order.
func ExportCSV(w io.Writer, products []models.Product, registry *fields.Registry) error {
	rows := make([]*productRow, 0, len(products))
	for _, p := range products {
		if p.IsTemporary() {
			continue
		}
		rows = append(rows, &productRow{
			ID:            p.ID,
			Name:          p.Name,
			CustomType:    p.CustomType,
			Price:         p.Price,
			PurchasePrice: p.PurchasePrice,
			TotalCost:     p.TotalCost,
			StallName:     p.StallName,
			Source:        p.Source,
			SourceURL:     p.SourceURL,
			Material:      p.Material,
			SizeMetrics:   formatMetrics(registry.OrderedMetrics(p.CustomType, p.SizeMetrics)),
			Colors:        strings.Join(p.Colors, "|"),
			Sizes:         strings.Join(p.Sizes, "|"),
			RealStock:     p.RealStock,
			ItemStatus:    p.ItemStatus,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func formatMetrics(metrics []fields.Metric) string {
	parts := make([]string, 0, len(metrics))
	for _, m := range metrics {
		parts = append(parts, m.Label+":"+m.Value)
	}
	return strings.Join(parts, "; ")
}

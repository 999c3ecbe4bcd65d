package wire_test

import (
	"encoding/json"
	"testing"

	"catalog-console/internal/wire"

	"github.com/stretchr/testify/assert"
)

func TestSnakeKey(t *testing.T) {
	cases := map[string]string{
		"name":             "name",
		"purchasePrice":    "purchase_price",
		"sourceUrl":        "source_url",
		"shopeeCategoryId": "shopee_category_id",
		"isMain":           "is_main",
		"tempId":           "temp_id",
	}
	for in, want := range cases {
		assert.Equal(t, want, wire.SnakeKey(in), in)
	}
}

func TestCamelKey(t *testing.T) {
	cases := map[string]string{
		"name":               "name",
		"purchase_price":     "purchasePrice",
		"failed_ids":         "failedIds",
		"access_token":       "accessToken",
		"size_1":             "size_1",
		"skirt_length":       "skirtLength",
		"shopee_category_id": "shopeeCategoryId",
	}
	for in, want := range cases {
		assert.Equal(t, want, wire.CamelKey(in), in)
	}
}

func TestToWireFormat_Nested(t *testing.T) {
	in := map[string]interface{}{
		"stallName": "A12",
		"sizeMetrics": map[string]interface{}{
			"skirtLength": "60",
		},
		"images": []interface{}{
			map[string]interface{}{"tempId": "t-1", "isMain": true},
			map[string]interface{}{"tempId": "t-2", "isMain": false},
		},
		"colors": []interface{}{"red", "blue"},
		"price":  json.Number("12.5"),
	}

	out := wire.ToWireFormat(in).(map[string]interface{})

	assert.Equal(t, "A12", out["stall_name"])
	assert.Equal(t, map[string]interface{}{"skirt_length": "60"}, out["size_metrics"])
	images := out["images"].([]interface{})
	assert.Len(t, images, 2)
	assert.Equal(t, "t-1", images[0].(map[string]interface{})["temp_id"])
	assert.Equal(t, "t-2", images[1].(map[string]interface{})["temp_id"])
	assert.Equal(t, []interface{}{"red", "blue"}, out["colors"])
	assert.Equal(t, json.Number("12.5"), out["price"])
}

func TestWireFormat_RoundTrip(t *testing.T) {
	trees := []interface{}{
		map[string]interface{}{},
		map[string]interface{}{
			"id":            json.Number("7"),
			"purchasePrice": json.Number("100"),
			"itemFolder":    "2024/top",
			"sizeMetrics":   map[string]interface{}{"shoulder": "40", "skirtLength": "55"},
			"colors":        []interface{}{"red"},
			"mainImage":     nil,
		},
		[]interface{}{
			map[string]interface{}{"isSelected": true, "fileName": "a.jpg"},
			"scalar",
			json.Number("3"),
		},
		"plain",
	}

	for _, tree := range trees {
		assert.Equal(t, tree, wire.FromWireFormat(wire.ToWireFormat(tree)))
	}
}

func TestFromWireFormat_ScalarsUntouched(t *testing.T) {
	assert.Equal(t, "snake_value", wire.FromWireFormat("snake_value"))
	assert.Equal(t, true, wire.FromWireFormat(true))
	assert.Nil(t, wire.FromWireFormat(nil))
}

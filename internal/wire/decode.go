package wire

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode maps a camelCase tree onto a typed value using its json tags.
// Numbers, booleans and strings are converted loosely.
func Decode(tree interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(tree); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseFormat, err)
	}
	return nil
}

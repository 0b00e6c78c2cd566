// Package importer parses externally supplied node data: simulation node lists and
// GeoNames city dumps.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned for input that cannot be imported.
var ErrMalformed = errors.New("malformed input")

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*f = ""
		return nil
	}

	// Try string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	// Try number
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// FlexibleFloat can unmarshal from a JSON number or a numeric string.
type FlexibleFloat struct {
	Value float64
	Set   bool // false when the field was absent or null
}

func (f *FlexibleFloat) UnmarshalJSON(data []byte) error {
	var s FlexibleString
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = FlexibleFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s.String()), 64)
	if err != nil {
		return fmt.Errorf("cannot unmarshal %s into FlexibleFloat", string(data))
	}
	*f = FlexibleFloat{Value: v, Set: true}
	return nil
}

// FlexibleInt can unmarshal from a JSON integer or an integer string.
type FlexibleInt struct {
	Value int
	Set   bool
}

func (f *FlexibleInt) UnmarshalJSON(data []byte) error {
	var s FlexibleString
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = FlexibleInt{}
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s.String()))
	if err != nil {
		return fmt.Errorf("cannot unmarshal %s into FlexibleInt", string(data))
	}
	*f = FlexibleInt{Value: v, Set: true}
	return nil
}

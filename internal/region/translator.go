// Package region maps the region names reported by the reverse geocoder to the
// utility's metropolitan region codes (metroCd).
package region

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("region not found")

// defaultCodes maps region names to metroCd. Several names share a code where a
// province was renamed but the utility kept the old code.
var defaultCodes = map[string]string{
	"서울특별시":   "11",
	"부산광역시":   "21",
	"대구광역시":   "22",
	"인천광역시":   "23",
	"광주광역시":   "24",
	"대전광역시":   "25",
	"울산광역시":   "26",
	"세종특별자치시": "29",
	"경기도":     "31",
	"강원도":     "32",
	"강원특별자치도": "32", // renamed 2023
	"충청북도":    "33",
	"충청남도":    "34",
	"전라북도":    "35",
	"전북특별자치도": "35", // renamed 2024
	"전라남도":    "36",
	"경상북도":    "37",
	"경상남도":    "38",
	"제주특별자치도": "39",
}

// UnsupportedRegionError names a region that has no metroCd.
type UnsupportedRegionError struct {
	Name string
}

func (e *UnsupportedRegionError) Error() string {
	return fmt.Sprintf("unsupported region: %q", e.Name)
}

func (e *UnsupportedRegionError) Unwrap() error {
	return ErrNotFound
}

// Translator is a read-only many-to-one lookup from region name to metroCd.
type Translator struct {
	codes map[string]string
}

// NewTranslator builds a translator over the default table plus the given
// aliases. An alias must point at a code the default table already uses.
func NewTranslator(aliases map[string]string) (*Translator, error) {
	codes := make(map[string]string, len(defaultCodes)+len(aliases))
	known := make(map[string]bool)
	for name, code := range defaultCodes {
		codes[name] = code
		known[code] = true
	}

	for name, code := range aliases {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("region alias with empty name for code %q", code)
		}
		if !known[code] {
			return nil, fmt.Errorf("region alias %q targets unknown code %q", name, code)
		}
		codes[name] = code
	}

	return &Translator{codes: codes}, nil
}

// Default returns a translator over the built-in table.
func Default() *Translator {
	t, _ := NewTranslator(nil)
	return t
}

// Translate returns the metroCd for a region name.
func (t *Translator) Translate(name string) (string, error) {
	code, ok := t.codes[strings.TrimSpace(name)]
	if !ok {
		return "", &UnsupportedRegionError{Name: name}
	}
	return code, nil
}

// Codes returns the distinct metroCd values in ascending order.
func (t *Translator) Codes() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, code := range t.codes {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// SubRegionCode extracts the cityCd (3rd and 4th characters) from a composite
// administrative code such as "2711012400".
func SubRegionCode(code string) (string, bool) {
	if len(code) < 4 {
		return "", false
	}
	return code[2:4], true
}

package resource

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned when a new resource form is incomplete.
var ErrInvalidInput = errors.New("invalid input")

// Resource is the render-only copy of a backend resource.
type Resource struct {
	Name              string `json:"name"`
	MaxUnits          int    `json:"max_units"`
	AvailableQuantity int    `json:"available_quantity"`
}

// Percent is the progress bar width. It is not clamped, so a quantity above
// max units yields more than 100.
func (r Resource) Percent() float64 {
	if r.MaxUnits <= 0 {
		return 0
	}
	return float64(r.AvailableQuantity) / float64(r.MaxUnits) * 100
}

// Indicator is the textual quantity/maximum shown next to the bar.
func (r Resource) Indicator() string {
	return strconv.Itoa(r.AvailableQuantity) + "/" + strconv.Itoa(r.MaxUnits)
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type NewResource struct {
	Name     string `json:"name"`
	MaxUnits int    `json:"max_units"`
}

// ParseNewResource validates raw form input. A blank name or a max units value
// that is not a positive integer (zero included) is rejected.
func ParseNewResource(name, maxUnitsRaw string) (NewResource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewResource{}, ErrInvalidInput
	}
	maxUnits, err := strconv.Atoi(strings.TrimSpace(maxUnitsRaw))
	if err != nil || maxUnits <= 0 {
		return NewResource{}, ErrInvalidInput
	}
	return NewResource{Name: name, MaxUnits: maxUnits}, nil
}

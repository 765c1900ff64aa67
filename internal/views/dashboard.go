package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/andreasstove999/resource-panel/internal/resource"
)

const (
	TableBodyID = "resourcesList"
	// QuantityRoute takes the resource name in the form body. Names made of
	// dots would be collapsed as path segments by the browser.
	QuantityRoute = "/dashboard/resources/quantity"

	tableTarget = "#" + TableBodyID
	columns     = 5
)

type quantityChange struct {
	Name   string `json:"name"`
	Change int    `json:"change"`
}

// ProgressWidth formats the bar width as a CSS percentage.
func ProgressWidth(r resource.Resource) string {
	return strconv.FormatFloat(r.Percent(), 'f', -1, 64) + "%"
}

func quantityVals(name string, change int) (string, error) {
	return templ.JSONString(quantityChange{Name: name, Change: change})
}

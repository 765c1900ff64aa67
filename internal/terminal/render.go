// Package terminal renders the resource list for the command line client.
package terminal

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/andreasstove999/resource-panel/internal/panel"
	"github.com/andreasstove999/resource-panel/internal/resource"
)

const barWidth = 30

// Renderer writes one bar per resource. The output is rebuilt from the list
// view on every call.
type Renderer struct {
	w io.Writer
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

func (r *Renderer) Render(list panel.ListView) error {
	switch {
	case list.State != panel.ListReady:
		_, err := fmt.Fprintln(r.w, panel.MsgLoadFailed)
		return err
	case list.Resources.Empty():
		_, err := fmt.Fprintln(r.w, panel.MsgNoResources)
		return err
	}

	for _, res := range list.Resources.All() {
		if err := r.renderRow(res); err != nil {
			return fmt.Errorf("render %q: %w", res.Name, err)
		}
	}
	return nil
}

func (r *Renderer) renderRow(res resource.Resource) error {
	// A zero max has no meaningful bar.
	if res.MaxUnits > 0 {
		bar := progressbar.NewOptions(res.MaxUnits,
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetDescription(res.Name),
			progressbar.OptionSetWidth(barWidth),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetElapsedTime(false),
			progressbar.OptionSetRenderBlankState(true),
		)
		// The bar cannot go past its max; the indicator below still shows the real value.
		if err := bar.Set(min(max(res.AvailableQuantity, 0), res.MaxUnits)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(r.w); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(r.w, "  %s  %s (%s)\n", res.Name, res.Indicator(), formatPercent(res))
	return err
}

func formatPercent(res resource.Resource) string {
	return fmt.Sprintf("%.0f%%", res.Percent())
}

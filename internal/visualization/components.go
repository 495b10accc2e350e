// Package visualization renders sampler descriptions for debugging, either
// as a text table or as an HTML page of histogram and density charts.
package visualization

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/synthetizer/internal/sampling"
	"github.com/inferloop/synthetizer/pkg/errors"
)

// Format identifies an output representation
type Format string

const (
	FormatTable Format = "table"
	FormatHTML  Format = "html"
)

// Renderer writes one description in a given format
type Renderer interface {
	Render(w io.Writer, d *sampling.Description) error
	ContentType() string
}

// RenderManager dispatches descriptions to the renderer of a format
type RenderManager struct {
	logger    *logrus.Logger
	renderers map[Format]Renderer
	mu        sync.RWMutex
}

// NewRenderManager creates a manager with the table and HTML renderers
func NewRenderManager(logger *logrus.Logger) *RenderManager {
	if logger == nil {
		logger = logrus.New()
	}

	rm := &RenderManager{
		logger:    logger,
		renderers: make(map[Format]Renderer),
	}

	rm.registerDefaultRenderers()

	return rm
}

// Render writes d to w in the requested format
func (rm *RenderManager) Render(w io.Writer, format Format, d *sampling.Description) error {
	renderer, err := rm.Renderer(format)
	if err != nil {
		return err
	}
	if d == nil {
		return errors.NewInvalidInputError(errors.CodeEmptyInput, "nothing to render")
	}
	return renderer.Render(w, d)
}

// Renderer returns the renderer registered for format
func (rm *RenderManager) Renderer(format Format) (Renderer, error) {
	rm.mu.RLock()
	renderer, exists := rm.renderers[format]
	rm.mu.RUnlock()

	if !exists {
		return nil, errors.NewConfigurationError(errors.CodeUnsupportedMode, fmt.Sprintf("unsupported render format: %s", format))
	}
	return renderer, nil
}

// RegisterRenderer registers a renderer for format
func (rm *RenderManager) RegisterRenderer(format Format, renderer Renderer) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.renderers[format] = renderer
	rm.logger.WithField("format", format).Debug("Registered description renderer")
}

func (rm *RenderManager) registerDefaultRenderers() {
	rm.RegisterRenderer(FormatTable, NewTableRenderer())
	rm.RegisterRenderer(FormatHTML, NewChartRenderer())
}

// expectedCounts spreads the fitted mass over histogram bins, scaled to
// the number of fitted values, so the density can be drawn over the bars.
func expectedCounts(d *sampling.Description) []float64 {
	if len(d.Density) == 0 || len(d.Histogram) == 0 {
		return nil
	}

	out := make([]float64, len(d.Histogram))
	for i, bin := range d.Histogram {
		for x := max(0, int(math.Ceil(bin.Lower))); float64(x) < bin.Upper && x < len(d.Density); x++ {
			out[i] += d.Density[x]
		}
		out[i] *= float64(d.Trimmed)
	}
	return out
}

func binLabel(bin sampling.HistogramBin) string {
	if bin.Upper-bin.Lower <= 1 {
		return fmt.Sprintf("%.0f", bin.Lower)
	}
	return fmt.Sprintf("%.0f-%.0f", bin.Lower, bin.Upper)
}

// walk visits d and its components depth first
func walk(d *sampling.Description, visit func(*sampling.Description)) {
	visit(d)
	for _, c := range d.Components {
		walk(c, visit)
	}
}

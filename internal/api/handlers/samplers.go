package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/inferloop/synthetizer/internal/api/middleware"
	"github.com/inferloop/synthetizer/internal/records"
	"github.com/inferloop/synthetizer/internal/sampling"
	"github.com/inferloop/synthetizer/internal/visualization"
	"github.com/inferloop/synthetizer/pkg/constants"
	"github.com/inferloop/synthetizer/pkg/errors"
)

// MaxSampleCount caps the draws returned by one sample request
const MaxSampleCount = 10000

// SamplerHandler fits, stores and draws from samplers over HTTP
type SamplerHandler struct {
	selector  *sampling.Selector
	registry  *Registry
	renderers *visualization.RenderManager
	logger    *logrus.Logger
}

// CreateSamplerResponse is returned once a sampler has been fitted
type CreateSamplerResponse struct {
	ID       string        `json:"id"`
	Kind     sampling.Kind `json:"kind"`
	Observed int           `json:"observed"`
}

// SampleResponse carries the draws of one sample request
type SampleResponse struct {
	ID     string        `json:"id"`
	Kind   sampling.Kind `json:"kind"`
	Values []any         `json:"values"`
}

// ListSamplersResponse lists the registered samplers
type ListSamplersResponse struct {
	Samplers []*Entry `json:"samplers"`
	Count    int      `json:"count"`
}

// NewSamplerHandler creates a sampler handler
func NewSamplerHandler(selector *sampling.Selector, registry *Registry, logger *logrus.Logger) *SamplerHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &SamplerHandler{
		selector:  selector,
		registry:  registry,
		renderers: visualization.NewRenderManager(logger),
		logger:    logger,
	}
}

// CreateSampler fits a sampler to the posted values. The body is JSON or
// YAML with either "values" or a "document" walked along "path":
//
//	{"path": "entry.{}.resource.gender", "document": {...}, "flatten": 0,
//	 "kind_hint": {"unique": false, "open_intervals": false, "numeric": false, "group": false}}
func (h *SamplerHandler) CreateSampler(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, errors.WrapError(err, errors.ErrorTypeInvalidInput, errors.CodeEmptyInput, "failed to read request body"))
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		writeError(w, r, errors.NewInvalidInputError(errors.CodeEmptyInput, "request body is empty"))
		return
	}

	doc, err := records.DecodeDocument(data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, ok := doc.(map[string]any)
	if !ok {
		writeError(w, r, errors.NewInvalidInputError(errors.CodeEmptyInput, "request body must be an object"))
		return
	}

	path := cast.ToString(body["path"])
	values, err := requestValues(body, path)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sampler, err := h.selector.SelectField(sampling.Field{
		Path:   path,
		Values: values,
		Hint:   requestHint(body["kind_hint"]),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	entry := h.registry.Add(path, len(values), sampler)
	h.logger.WithFields(logrus.Fields{
		"id":         entry.ID,
		"kind":       entry.Kind,
		"path":       path,
		"observed":   entry.Observed,
		"request_id": middleware.GetRequestID(r.Context()),
	}).Info("Registered sampler")

	writeJSON(w, http.StatusCreated, CreateSamplerResponse{
		ID:       entry.ID,
		Kind:     entry.Kind,
		Observed: entry.Observed,
	})
}

// ListSamplers returns every registered sampler
func (h *SamplerHandler) ListSamplers(w http.ResponseWriter, r *http.Request) {
	entries := h.registry.List()
	writeJSON(w, http.StatusOK, ListSamplersResponse{Samplers: entries, Count: len(entries)})
}

// Sample draws from a registered sampler. count repeats the draw; size is
// required by unique samplers; start and end are required by interval
// samplers.
func (h *SamplerHandler) Sample(w http.ResponseWriter, r *http.Request) {
	entry, err := h.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	query := r.URL.Query()
	count, err := intParam(query.Get("count"), 1)
	if err != nil || count <= 0 || count > MaxSampleCount {
		writeError(w, r, errors.NewInvalidInputError(errors.CodeInvalidSize, "count must be between 1 and "+strconv.Itoa(MaxSampleCount)).
			WithContext("count", query.Get("count")))
		return
	}

	values := make([]any, 0, count)
	err = entry.With(func(sampler sampling.Sampler) error {
		for i := 0; i < count; i++ {
			value, err := draw(sampler, query.Get("size"), query.Get("start"), query.Get("end"))
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SampleResponse{ID: entry.ID, Kind: entry.Kind, Values: values})
}

// Describe returns the fitted model summary as JSON, a text table or an
// HTML chart page, chosen by the format query parameter.
func (h *SamplerHandler) Describe(w http.ResponseWriter, r *http.Request) {
	entry, err := h.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		title = entry.Path
	}
	if title == "" {
		title = entry.ID
	}

	var description *sampling.Description
	_ = entry.With(func(sampler sampling.Sampler) error {
		description = sampler.Describe(title)
		return nil
	})

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, description)
		return
	}

	renderer, err := h.renderers.Renderer(visualization.Format(format))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, description); err != nil {
		writeError(w, r, errors.WrapError(err, errors.ErrorTypeInternal, errors.CodeInternalError, "failed to render description"))
		return
	}

	w.Header().Set(constants.HeaderContentType, renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// DeleteSampler drops a registered sampler
func (h *SamplerHandler) DeleteSampler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.registry.Delete(id); err != nil {
		writeError(w, r, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"id":         id,
		"request_id": middleware.GetRequestID(r.Context()),
	}).Info("Deleted sampler")

	w.WriteHeader(http.StatusNoContent)
}

// draw performs one draw through whichever capability sampler exposes
func draw(sampler sampling.Sampler, size, start, end string) (any, error) {
	switch s := sampler.(type) {
	case sampling.ValueSampler:
		return s.Sample()

	case sampling.SizedSampler:
		if size == "" {
			return nil, errors.NewInvalidInputError(errors.CodeInvalidSize, "size is required for unique samplers")
		}
		n, err := strconv.Atoi(size)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, errors.CodeInvalidSize, "size must be an integer").
				WithContext("size", size)
		}
		return s.SampleSize(n)

	case sampling.IntervalSampler:
		if start == "" || end == "" {
			return nil, errors.NewInvalidInputError(errors.CodeInvalidTimestamp, "start and end are required for interval samplers")
		}
		return s.SampleInterval(start, end)
	}

	return nil, errors.NewInternalError("sampler exposes no draw operation").
		WithContext("kind", sampler.Kind())
}

func requestValues(body map[string]any, path string) ([]any, error) {
	if raw, ok := body["values"]; ok {
		values, ok := raw.([]any)
		if !ok {
			return nil, errors.NewInvalidInputError(errors.CodeEmptyInput, "values must be a list")
		}
		return values, nil
	}

	doc, ok := body["document"]
	if !ok {
		return nil, errors.NewInvalidInputError(errors.CodeEmptyInput, "either values or document is required")
	}
	if path == "" {
		return nil, errors.NewInvalidInputError(errors.CodeInvalidPath, "path is required with a document")
	}

	flatten, err := cast.ToIntE(body["flatten"])
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, errors.CodeInvalidPath, "flatten must be an integer")
	}
	return records.ExtractValues(doc, path, flatten)
}

func requestHint(raw any) sampling.KindHint {
	hint := cast.ToStringMap(raw)
	return sampling.KindHint{
		Unique:        cast.ToBool(hint["unique"]),
		OpenIntervals: cast.ToBool(hint["open_intervals"]),
		Numeric:       cast.ToBool(hint["numeric"]),
		Group:         cast.ToBool(hint["group"]),
	}
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.WrapError(err, errors.ErrorTypeInternal, errors.CodeInternalError, err.Error())
	}

	writeJSON(w, errors.HTTPStatus(appErr), errors.ErrorResponse{
		Error:     appErr,
		RequestID: middleware.GetRequestID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	})
}

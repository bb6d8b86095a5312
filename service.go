package hastic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/songjiao/hastic-grafana-app/internal/dispatch"
)

// decode unmarshals a response body into out. Suppressed responses leave
// out untouched, mirroring the undefined result the original client
// resolved to on swallowed server errors.
func decode(resp *dispatch.Response, out any) error {
	if resp == nil || resp.Suppressed || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode hastic response: %w", err)
	}
	return nil
}

// requireField extracts a required field from a response into out, raising
// a [DataContractError] when the response or the field is absent.
func requireField(resp *dispatch.Response, path, field string, out any) error {
	if resp == nil || resp.Suppressed || len(resp.Body) == 0 {
		return &DataContractError{Path: path, Field: field}
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return fmt.Errorf("failed to decode hastic response: %w", err)
	}
	raw, ok := doc[field]
	if !ok || string(raw) == "null" {
		return &DataContractError{Path: path, Field: field}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode field %q: %w", field, err)
	}
	return nil
}

// ServerInfo fetches build and version metadata from the endpoint root.
func (s *Service) ServerInfo(ctx context.Context) (ServerInfo, error) {
	resp, err := s.dispatcher.Get(ctx, "/", nil)
	if err != nil {
		return ServerInfo{}, err
	}
	var info ServerInfo
	if err := decode(resp, &info); err != nil {
		return ServerInfo{}, err
	}
	return info, nil
}

// AnalyticUnitTypes fetches the catalogue of available unit types. An
// absent catalogue yields an empty document.
func (s *Service) AnalyticUnitTypes(ctx context.Context) (json.RawMessage, error) {
	resp, err := s.dispatcher.Get(ctx, "/analyticUnits/types", nil)
	if err != nil {
		return nil, err
	}
	if resp.Suppressed || len(resp.Body) == 0 {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(resp.Body), nil
}

// AnalyticUnits lists the analytic units attached to a panel. The unit
// payloads are serialized domain objects owned by the caller's model
// layer, so they stay raw here. An absent list yields an empty slice.
func (s *Service) AnalyticUnits(ctx context.Context, panelID string) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("panelId", panelID)
	resp, err := s.dispatcher.Get(ctx, "/analyticUnits/units", params)
	if err != nil {
		return nil, err
	}
	var body struct {
		AnalyticUnits []json.RawMessage `json:"analyticUnits"`
	}
	if err := decode(resp, &body); err != nil {
		return nil, err
	}
	if body.AnalyticUnits == nil {
		return []json.RawMessage{}, nil
	}
	return body.AnalyticUnits, nil
}

// PanelTemplate exports the template stored for a panel. An absent
// template yields an empty document.
func (s *Service) PanelTemplate(ctx context.Context, panelID string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("panelId", panelID)
	resp, err := s.dispatcher.Get(ctx, "/panels/template", params)
	if err != nil {
		return nil, err
	}
	if resp.Suppressed || len(resp.Body) == 0 {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(resp.Body), nil
}

// ImportPanelTemplate uploads a panel template with its template
// variables.
func (s *Service) ImportPanelTemplate(ctx context.Context, template, variables json.RawMessage) error {
	_, err := s.dispatcher.Post(ctx, "/panels/template", map[string]any{
		"panelTemplate":     template,
		"templateVariables": variables,
	})
	return err
}

// CreateAnalyticUnit creates an analytic unit and returns its
// server-assigned identifier.
func (s *Service) CreateAnalyticUnit(ctx context.Context, req CreateUnitRequest) (string, error) {
	payload := map[string]any{
		"grafanaUrl": req.GrafanaURL,
		"panelId":    req.PanelID,
		"metric":     req.Metric,
		"datasource": req.Datasource,
	}
	for key, value := range req.Fields {
		if _, reserved := payload[key]; !reserved {
			payload[key] = value
		}
	}
	resp, err := s.dispatcher.Post(ctx, "/analyticUnits", payload)
	if err != nil {
		return "", err
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := decode(resp, &body); err != nil {
		return "", err
	}
	return body.ID, nil
}

// UpdateMetric rebinds an analytic unit to a metric and datasource.
func (s *Service) UpdateMetric(ctx context.Context, unitID string, metric, datasource json.RawMessage) error {
	if unitID == "" {
		return ErrUnitIDRequired
	}
	_, err := s.dispatcher.Patch(ctx, "/analyticUnits/metric", map[string]any{
		"analyticUnitId": unitID,
		"metric":         metric,
		"datasource":     datasource,
	})
	return err
}

// UpdateAnalyticUnit patches arbitrary fields of an analytic unit. The
// fields map must carry the unit id next to the updated settings.
func (s *Service) UpdateAnalyticUnit(ctx context.Context, fields map[string]any) error {
	_, err := s.dispatcher.Patch(ctx, "/analyticUnits", fields)
	return err
}

// RemoveAnalyticUnit deletes an analytic unit.
func (s *Service) RemoveAnalyticUnit(ctx context.Context, unitID string) error {
	if unitID == "" {
		return ErrUnitIDRequired
	}
	params := url.Values{}
	params.Set("id", unitID)
	_, err := s.dispatcher.Delete(ctx, "/analyticUnits", params)
	return err
}

// SetUnitAlert toggles alerting for an analytic unit.
func (s *Service) SetUnitAlert(ctx context.Context, unitID string, enabled bool) error {
	if unitID == "" {
		return ErrUnitIDRequired
	}
	_, err := s.dispatcher.Patch(ctx, "/analyticUnits/alert", map[string]any{
		"analyticUnitId": unitID,
		"alert":          enabled,
	})
	return err
}

// Detect triggers detection for the given analytic units, optionally
// bounded to a time window.
func (s *Service) Detect(ctx context.Context, unitIDs []string, window *Window) error {
	payload := map[string]any{"ids": unitIDs}
	if window != nil {
		payload["from"] = window.From
		payload["to"] = window.To
	}
	_, err := s.dispatcher.Post(ctx, "/analyticUnits/detect", payload)
	return err
}

// UnitStatus fetches the processing status of an analytic unit. A 404
// answer maps to a result with Status set to [StatusNotFound] instead of
// an error, so poll consumers see a stable shape.
func (s *Service) UnitStatus(ctx context.Context, unitID string) (AnalyticUnitStatus, error) {
	if unitID == "" {
		return AnalyticUnitStatus{}, ErrUnitIDRequired
	}
	params := url.Values{}
	params.Set("id", unitID)
	resp, err := s.dispatcher.Get(ctx, "/analyticUnits/status", params)
	if err != nil {
		return AnalyticUnitStatus{}, err
	}
	if resp.Suppressed && resp.StatusCode == http.StatusNotFound {
		return AnalyticUnitStatus{Status: StatusNotFound}, nil
	}
	var status AnalyticUnitStatus
	if err := decode(resp, &status); err != nil {
		return AnalyticUnitStatus{}, err
	}
	return status, nil
}

// DetectionSpans fetches the detection spans of an analytic unit over
// [from, to). The spans field is required; a response without it raises a
// [DataContractError].
func (s *Service) DetectionSpans(ctx context.Context, unitID string, from, to int64) ([]DetectionSpan, error) {
	if unitID == "" {
		return nil, ErrUnitIDRequired
	}
	params := url.Values{}
	params.Set("id", unitID)
	params.Set("from", strconv.FormatInt(from, 10))
	params.Set("to", strconv.FormatInt(to, 10))
	resp, err := s.dispatcher.Get(ctx, "/detections/spans", params)
	if err != nil {
		return nil, err
	}
	var spans []DetectionSpan
	if err := requireField(resp, "/detections/spans", "spans", &spans); err != nil {
		return nil, err
	}
	return spans, nil
}

// Query fetches the time-series result bundle for an analytic unit and
// range.
func (s *Service) Query(ctx context.Context, unitID string, from, to int64) (HSRResult, error) {
	if unitID == "" {
		return HSRResult{}, ErrUnitIDRequired
	}
	params := url.Values{}
	params.Set("analyticUnitId", unitID)
	params.Set("from", strconv.FormatInt(from, 10))
	params.Set("to", strconv.FormatInt(to, 10))
	resp, err := s.dispatcher.Get(ctx, "/query", params)
	if err != nil {
		return HSRResult{}, err
	}
	var body struct {
		Results HSRResult `json:"results"`
	}
	if err := decode(resp, &body); err != nil {
		return HSRResult{}, err
	}
	return body.Results, nil
}

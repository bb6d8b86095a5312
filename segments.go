package hastic

import (
	"context"
	"net/url"
	"strconv"
)

// segmentPayload is the wire shape of an added segment. Removal is
// asymmetric by design and carries only identifiers.
type segmentPayload struct {
	From    int64 `json:"from"`
	To      int64 `json:"to"`
	Labeled bool  `json:"labeled"`
	Deleted bool  `json:"deleted"`
}

// UpdateSegments submits an added/removed diff of labeled segments for an
// analytic unit in one combined request and returns the identifiers the
// server assigned to the added segments, in order.
//
// A response without the addedIds field raises a [DataContractError].
func (s *Service) UpdateSegments(ctx context.Context, unitID string, added []Segment, removed []string) ([]string, error) {
	if unitID == "" {
		return nil, ErrUnitIDRequired
	}

	addedPayload := make([]segmentPayload, len(added))
	for i, seg := range added {
		addedPayload[i] = segmentPayload{
			From:    seg.From,
			To:      seg.To,
			Labeled: seg.Labeled,
			Deleted: seg.Deleted,
		}
	}
	if removed == nil {
		removed = []string{}
	}

	resp, err := s.dispatcher.Patch(ctx, "/segments", map[string]any{
		"id":              unitID,
		"addedSegments":   addedPayload,
		"removedSegments": removed,
	})
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := requireField(resp, "/segments", "addedIds", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Segments fetches the segments of an analytic unit, optionally bounded to
// a time window. The segments field is required; a response without it
// raises a [DataContractError].
func (s *Service) Segments(ctx context.Context, unitID string, window *Window) ([]Segment, error) {
	if unitID == "" {
		return nil, ErrUnitIDRequired
	}
	params := url.Values{}
	params.Set("id", unitID)
	if window != nil {
		params.Set("from", strconv.FormatInt(window.From, 10))
		params.Set("to", strconv.FormatInt(window.To, 10))
	}
	resp, err := s.dispatcher.Get(ctx, "/segments", params)
	if err != nil {
		return nil, err
	}
	var segments []Segment
	if err := requireField(resp, "/segments", "segments", &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

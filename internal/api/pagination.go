package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"banhangso/client/internal/domain"
)

// List fetches a collection endpoint and normalizes the response into a
// Page regardless of which shape the backend chose. List endpoints
// answer with either a bare array or {data, total, totalPages}; the
// normalization happens once here so no caller unwraps defensively.
func List[T any](ctx context.Context, c *Client, path string, p domain.ListParams) (domain.Page[T], error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.PartyID != "" {
		q.Set("party_id", p.PartyID)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, path, nil, &raw, nil); err != nil {
		return domain.Page[T]{}, err
	}
	return DecodePage[T](raw)
}

// DecodePage turns either list response shape into the canonical Page.
func DecodePage[T any](raw json.RawMessage) (domain.Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return domain.Page[T]{}, fmt.Errorf("decode list: %w", err)
		}
		page := domain.Page[T]{Items: items, Total: len(items)}
		if len(items) > 0 {
			page.TotalPages = 1
		}
		return page, nil
	}

	var envelope struct {
		Data       []T `json:"data"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return domain.Page[T]{}, fmt.Errorf("decode list envelope: %w", err)
	}
	page := domain.Page[T]{Items: envelope.Data, Total: envelope.Total, TotalPages: envelope.TotalPages}
	if page.Total == 0 {
		page.Total = len(page.Items)
	}
	if page.TotalPages == 0 && len(page.Items) > 0 {
		page.TotalPages = 1
	}
	return page, nil
}

// DecodeEntity decodes a single entity that may arrive bare or wrapped
// in {data: ...}. Mutation endpoints are inconsistent about this.
func DecodeEntity[T any](raw json.RawMessage) (T, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode entity: %w", err)
	}
	return v, nil
}

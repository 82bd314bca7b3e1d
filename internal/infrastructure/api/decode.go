package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"equipment-console/internal/domain"
)

// envelope is the {success, message, data} wrapper of single entities and
// unpaginated collections.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type pageWire struct {
	Data        json.RawMessage `json:"data"`
	CurrentPage *int            `json:"current_page"`
	LastPage    int             `json:"last_page"`
	PerPage     int             `json:"per_page"`
	Total       int             `json:"total"`
	From        int             `json:"from"`
	To          int             `json:"to"`
	Links       json.RawMessage `json:"links"`
}

func isJSONNull(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// decodeEntity reads either an enveloped entity or a bare one.
func decodeEntity[T any](body []byte) (T, error) {
	var out T
	if isJSONNull(body) {
		return out, nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && !isJSONNull(env.Data) {
		body = env.Data
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// decodeCollection accepts a bare array, a {data: [...]} envelope, a
// paginated page, or a paginated page nested inside an envelope.
func decodeCollection[T any](body []byte) (domain.Collection[T], error) {
	out := domain.Collection[T]{Items: []T{}}
	body = bytes.TrimSpace(body)
	if isJSONNull(body) {
		return out, nil
	}
	if body[0] == '[' {
		if err := json.Unmarshal(body, &out.Items); err != nil {
			return out, fmt.Errorf("decode collection: %w", err)
		}
		return out, nil
	}

	var page pageWire
	if err := json.Unmarshal(body, &page); err != nil {
		return out, fmt.Errorf("decode collection: %w", err)
	}
	data := bytes.TrimSpace(page.Data)
	if page.CurrentPage == nil && len(data) > 0 && data[0] == '{' {
		return decodeCollection[T](data)
	}
	if !isJSONNull(data) {
		if err := json.Unmarshal(data, &out.Items); err != nil {
			return out, fmt.Errorf("decode collection: %w", err)
		}
	}
	if page.CurrentPage != nil {
		out.Page = &domain.PageInfo{
			CurrentPage: *page.CurrentPage,
			LastPage:    page.LastPage,
			PerPage:     page.PerPage,
			Total:       page.Total,
			From:        page.From,
			To:          page.To,
		}
		// Some paginators send links as an array of page buttons; only the
		// object form is kept.
		_ = json.Unmarshal(page.Links, &out.Page.Links)
	}
	return out, nil
}

// messageOf extracts the server message of an envelope, if any.
func messageOf(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}

// Package fieldcodec converts structured values to and from the JSON text
// stored in scalar columns (customer/task tags, shipment dimensions).
//
// Decoding is forgiving by contract: unparseable input logs a warning and
// yields the default (empty list, nil dimensions) instead of failing the
// caller. A bare non-JSON string decodes to a one-element tag list, matching
// data written by earlier revisions of the system.
package fieldcodec

import (
	"encoding/json"
	"log/slog"
)

// Dimensions is a length/width/height triple for a shipment package.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// EncodeTags serializes a tag list for storage in a scalar column.
// A nil list encodes as an empty JSON array.
func EncodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		// A []string cannot fail to marshal; keep the column well-formed anyway.
		return "[]"
	}
	return string(b)
}

// DecodeTags parses a stored tag column back into a list. Empty input yields
// an empty list. Input that is not a JSON array but is non-empty is treated
// as a single bare tag.
func DecodeTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		slog.Warn("fieldcodec: tag column is not a JSON array, treating as bare tag", "raw", raw)
		return []string{raw}
	}
	if tags == nil {
		return []string{}
	}
	return tags
}

// EncodeDimensions serializes a dimensions triple for storage. Nil encodes
// as the empty string, which decodes back to nil.
func EncodeDimensions(d *Dimensions) string {
	if d == nil {
		return ""
	}
	b, err := json.Marshal(d)
	if err != nil {
		return ""
	}
	return string(b)
}

// DecodeDimensions parses a stored dimensions column. Empty or unparseable
// input yields nil.
func DecodeDimensions(raw string) *Dimensions {
	if raw == "" {
		return nil
	}
	var d Dimensions
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		slog.Warn("fieldcodec: dimensions column is not valid JSON, dropping", "raw", raw)
		return nil
	}
	return &d
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package geo extracts geographic points from free-form answer text.
//
// Answers from the flood response service mention locations in the form
// "北纬31.96°，东经119.42°". Only the first latitude/longitude pair in a text is
// recognized; multiple coordinate mentions are not supported.
package geo

import (
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Point is a longitude/latitude pair in decimal degrees.
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// String formats the point for diagnostics, e.g. "119.4200°E, 31.9600°N".
func (p Point) String() string {
	return fmt.Sprintf("%.4f°E, %.4f°N", p.Lng, p.Lat)
}

// coordPattern matches "北纬<lat>°" followed anywhere later by "东经<lng>°".
// (?s) lets the gap span line breaks. Numbers may omit digits on one side of
// the point ("31.", ".5"), as ParseFloat accepts both.
var coordPattern = regexp.MustCompile(`(?s)北纬\s*([0-9]+\.?[0-9]*|\.[0-9]+)\s*°.*?东经\s*([0-9]+\.?[0-9]*|\.[0-9]+)\s*°`)

// Extract returns the first coordinate pair found in text.
// The second return value is false when no pair is present. Values are not
// range checked.
func Extract(text string) (Point, bool) {
	if text == "" {
		return Point{}, false
	}

	// NFKC folds full-width digits and dots typed through CJK input methods.
	m := coordPattern.FindStringSubmatch(norm.NFKC.String(text))
	if m == nil {
		return Point{}, false
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Point{}, false
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Point{}, false
	}

	return Point{Lng: lng, Lat: lat}, true
}

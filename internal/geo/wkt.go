// Package geo converts between the small set of geometry representations
// the service needs to move between HTTP query parameters, GeoJSON, and
// PostGIS: WKT points on the way in, GeoJSON polygons on the way to WKT
// for spatial predicates.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Point is a WGS84 longitude/latitude pair.
type Point struct {
	Lon float64
	Lat float64
}

var errMalformedPoint = errors.New(`expected "POINT(lon lat)"`)

// ParsePoint parses the "POINT(lon lat)" form accepted by the coords query
// parameter. Whitespace around the parens and between coordinates is
// tolerated; a lat/lon that is merely out of WGS84 bounds is rejected, but
// inputs are never silently swapped or "corrected".
func ParsePoint(raw string) (Point, error) {
	s := strings.TrimSpace(raw)
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "POINT") {
		return Point{}, errMalformedPoint
	}
	s = strings.TrimSpace(s[len("POINT"):])
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return Point{}, errMalformedPoint
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	fields := strings.Fields(inner)
	if len(fields) != 2 {
		return Point{}, errMalformedPoint
	}
	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: longitude: %v", errMalformedPoint, err)
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: latitude: %v", errMalformedPoint, err)
	}
	if lon < -180 || lon > 180 {
		return Point{}, fmt.Errorf("longitude %v out of range [-180,180]", lon)
	}
	if lat < -90 || lat > 90 {
		return Point{}, fmt.Errorf("latitude %v out of range [-90,90]", lat)
	}
	return Point{Lon: lon, Lat: lat}, nil
}

// WKT renders the point as "POINT(lon lat)" for use as a bound SQL parameter
// passed to ST_GeomFromText.
func (p Point) WKT() string {
	return fmt.Sprintf("POINT(%.8f %.8f)", p.Lon, p.Lat)
}

// GeoJSONToWKT converts a GeoJSON Polygon or MultiPolygon geometry (as
// produced by a splitCatchment trim hint or an inbound request body) into
// WKT suitable for binding into a PostGIS query parameter.
func GeoJSONToWKT(geojson string) (string, error) {
	var v struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal([]byte(geojson), &v); err != nil {
		return "", fmt.Errorf("parse geojson: %w", err)
	}
	switch strings.TrimSpace(v.Type) {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(v.Coordinates, &rings); err != nil {
			return "", fmt.Errorf("parse polygon coords: %w", err)
		}
		return polygonToWKT(rings)
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(v.Coordinates, &polys); err != nil {
			return "", fmt.Errorf("parse multipolygon coords: %w", err)
		}
		return multiPolygonToWKT(polys)
	default:
		return "", fmt.Errorf("unsupported type %q", v.Type)
	}
}

func polygonToWKT(rings [][][]float64) (string, error) {
	if len(rings) == 0 {
		return "", errors.New("empty polygon")
	}
	outRings := make([]string, 0, len(rings))
	for _, ring := range rings {
		if len(ring) < 4 {
			return "", errors.New("polygon ring has <4 points")
		}
		pts := make([]string, 0, len(ring))
		for _, xy := range ring {
			if len(xy) != 2 {
				return "", errors.New("coordinate must be [x,y]")
			}
			pts = append(pts, fmt.Sprintf("%.8f %.8f", xy[0], xy[1]))
		}
		outRings = append(outRings, fmt.Sprintf("(%s)", strings.Join(pts, ", ")))
	}
	return fmt.Sprintf("POLYGON(%s)", strings.Join(outRings, ", ")), nil
}

func multiPolygonToWKT(polys [][][][]float64) (string, error) {
	if len(polys) == 0 {
		return "", errors.New("empty multipolygon")
	}
	parts := make([]string, 0, len(polys))
	for _, poly := range polys {
		wkt, err := polygonToWKT(poly)
		if err != nil {
			return "", err
		}
		body := strings.TrimPrefix(wkt, "POLYGON")
		parts = append(parts, body)
	}
	return fmt.Sprintf("MULTIPOLYGON(%s)", strings.Join(parts, ", ")), nil
}

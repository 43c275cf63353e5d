// Package response shapes navigation, feature, and basin results into
// GeoJSON FeatureCollections, attaching the navigation HATEOAS link each
// feature carries and projecting database rows onto the wire property set.
package response

import (
	"encoding/json"
	"fmt"

	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/navigation"
)

// FeatureCollection is the GeoJSON envelope every endpoint emits, success
// or empty alike.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one GeoJSON Feature with the NLDI's fixed property set.
// Geometry is carried pre-rendered as JSON (from ST_AsGeoJSON) to avoid a
// decode/re-encode round trip through a generic geometry type.
type Feature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties Properties      `json:"properties"`
}

// Properties is the wire-stable property projection spec'd for every
// feature: identifier, name, source, sourceName, comid, type, uri,
// reachcode, measure, mainstem, navigation. Pointer fields marshal to JSON
// null rather than the empty value when absent.
type Properties struct {
	Identifier string   `json:"identifier"`
	Name       string   `json:"name"`
	Source     string   `json:"source"`
	SourceName string   `json:"sourceName"`
	Comid      string   `json:"comid"`
	Type       string   `json:"type"`
	URI        *string  `json:"uri"`
	ReachCode  *string  `json:"reachcode"`
	Measure    *float64 `json:"measure"`
	Mainstem   *string  `json:"mainstem"`
	Navigation string   `json:"navigation"`
}

func emptyCollection() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// jsonRaw guards against handing encoding/json an empty, non-nil byte
// slice: json.RawMessage("") is neither valid JSON nor nil, and marshaling
// it fails with "unexpected end of JSON input". An absent geometry is
// rendered as a JSON null instead.
func jsonRaw(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}

// FlowlineFeature renders a flowline as its source=="comid" GeoJSON
// feature.
func FlowlineFeature(fl model.Flowline, navigationURL string) Feature {
	return Feature{
		Type:     "Feature",
		Geometry: jsonRaw(fl.GeoJSON),
		Properties: Properties{
			Identifier: fmt.Sprintf("%d", fl.Comid),
			Source:     model.ComidSourceSuffix,
			SourceName: "NHDPlus Flowline (COMID)",
			Comid:      fmt.Sprintf("%d", fl.Comid),
			Type:       "flowline",
			ReachCode:  nullableString(fl.ReachCode),
			Navigation: navigationURL,
		},
	}
}

// Flowlines renders an ordered slice of flowlines into a FeatureCollection.
func Flowlines(flowlines []model.Flowline, navigationURLFor func(comid int64) string) FeatureCollection {
	fc := emptyCollection()
	for _, fl := range flowlines {
		fc.Features = append(fc.Features, FlowlineFeature(fl, navigationURLFor(fl.Comid)))
	}
	return fc
}

// FeatureAlongNavFeature renders one source feature found along a
// navigation, including its mainstem annotation. Geometry comes from the
// feature's own geom column (point sources always carry one; reach sources
// carry one only when the crawler captured an exact location) and is
// rendered as a JSON null when absent rather than an empty byte string.
func FeatureAlongNavFeature(source model.CrawlerSource, item navigation.FeatureAlongNav, navigationURL string) Feature {
	f := item.Feature
	return Feature{
		Type:     "Feature",
		Geometry: jsonRaw(f.GeoJSON),
		Properties: Properties{
			Identifier: f.Identifier,
			Name:       f.Name,
			Source:     source.Suffix,
			SourceName: source.SourceName,
			Comid:      fmt.Sprintf("%d", f.Comid),
			Type:       source.FeatureType,
			URI:        nullableString(f.URI),
			ReachCode:  nullableString(f.ReachCode),
			Measure:    f.Measure,
			Mainstem:   nullableString(item.MainstemURI),
			Navigation: navigationURL,
		},
	}
}

// FeaturesAlongNav renders a slice of FeatureAlongNav entries.
func FeaturesAlongNav(source model.CrawlerSource, items []navigation.FeatureAlongNav, navigationURLFor func(model.Feature) string) FeatureCollection {
	fc := emptyCollection()
	for _, item := range items {
		fc.Features = append(fc.Features, FeatureAlongNavFeature(source, item, navigationURLFor(item.Feature)))
	}
	return fc
}

// BasinFeature renders a basin aggregate as a single-feature collection.
func BasinFeature(basin model.Basin, anchorComid int64) FeatureCollection {
	fc := emptyCollection()
	fc.Features = append(fc.Features, Feature{
		Type:     "Feature",
		Geometry: json.RawMessage(basin.GeoJSON),
		Properties: Properties{
			Identifier: fmt.Sprintf("%d", anchorComid),
			Source:     model.ComidSourceSuffix,
			Comid:      fmt.Sprintf("%d", anchorComid),
			Type:       "basin",
		},
	})
	return fc
}

// SourceListing is one entry of GET /linked-data — a registered source
// plus the navigationSources link the index endpoint attaches.
type SourceListing struct {
	Source          model.CrawlerSource `json:"-"`
	Suffix          string              `json:"source"`
	SourceName      string              `json:"sourceName"`
	Features        string              `json:"features"`
	NavigationLinks string              `json:"navigation"`
}

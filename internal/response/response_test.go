package response

import (
	"encoding/json"
	"testing"

	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/navigation"
)

func TestFlowlines_EmptyResultYieldsEmptyFeatureArray(t *testing.T) {
	fc := Flowlines(nil, func(int64) string { return "" })
	b, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"type":"FeatureCollection","features":[]}` {
		t.Fatalf("got %s", b)
	}
}

func TestFlowlineFeature_PropertiesProjection(t *testing.T) {
	fl := model.Flowline{Comid: 13297198, GeoJSON: `{"type":"LineString","coordinates":[]}`, ReachCode: "07090002"}
	f := FlowlineFeature(fl, "/linked-data/comid/13297198/navigation")

	if f.Properties.Comid != "13297198" {
		t.Fatalf("comid should be a string, got %q", f.Properties.Comid)
	}
	if f.Properties.Source != "comid" {
		t.Fatalf("source should be comid, got %q", f.Properties.Source)
	}
	if *f.Properties.ReachCode != "07090002" {
		t.Fatalf("reachcode mismatch: %v", f.Properties.ReachCode)
	}
}

func TestProperties_MissingURIMarshalsNull(t *testing.T) {
	f := FlowlineFeature(model.Flowline{Comid: 1}, "")
	b, err := json.Marshal(f.Properties)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := m["uri"]; !ok || v != nil {
		t.Fatalf("uri should marshal to JSON null, got %v", v)
	}
}

func TestFeatureAlongNavFeature_IncludesMainstem(t *testing.T) {
	source := model.CrawlerSource{Suffix: "nwissite", SourceName: "NWIS Sites", FeatureType: "gage"}
	item := navigation.FeatureAlongNav{
		Feature:     model.Feature{Identifier: "USGS-05428500", Comid: 13297198, GeoJSON: `{"type":"Point","coordinates":[0,0]}`},
		MainstemURI: "https://example.test/mainstems/123",
	}
	f := FeatureAlongNavFeature(source, item, "/nav")
	if f.Properties.Mainstem == nil || *f.Properties.Mainstem != item.MainstemURI {
		t.Fatalf("mainstem not set correctly: %v", f.Properties.Mainstem)
	}
}

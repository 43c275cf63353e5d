package geo

import "testing"

func TestParsePoint_Valid(t *testing.T) {
	cases := []string{
		"POINT(-89.509 43.087)",
		"point( -89.509  43.087 )",
		"POINT(-89.509  43.087)",
	}
	for _, raw := range cases {
		p, err := ParsePoint(raw)
		if err != nil {
			t.Fatalf("ParsePoint(%q): %v", raw, err)
		}
		if p.Lon != -89.509 || p.Lat != 43.087 {
			t.Fatalf("ParsePoint(%q) = %+v", raw, p)
		}
	}
}

func TestParsePoint_RejectsSwappedOutOfRange(t *testing.T) {
	// latitude 200 is out of bounds regardless of position; must be rejected,
	// never auto-corrected by swapping.
	if _, err := ParsePoint("POINT(43.087 200)"); err == nil {
		t.Fatal("expected error for out-of-range latitude")
	}
}

func TestParsePoint_Malformed(t *testing.T) {
	bad := []string{"", "POINT", "POINT()", "POINT(1)", "POINT(1 2 3)", "LINESTRING(1 2, 3 4)"}
	for _, raw := range bad {
		if _, err := ParsePoint(raw); err == nil {
			t.Fatalf("ParsePoint(%q): expected error", raw)
		}
	}
}

func TestGeoJSONToWKT_Polygon(t *testing.T) {
	gj := `{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[0,0]]]}`
	wkt, err := GeoJSONToWKT(gj)
	if err != nil {
		t.Fatalf("GeoJSONToWKT: %v", err)
	}
	want := "POLYGON((0.00000000 0.00000000, 0.00000000 1.00000000, 1.00000000 1.00000000, 0.00000000 0.00000000))"
	if wkt != want {
		t.Fatalf("got %q want %q", wkt, want)
	}
}

func TestGeoJSONToWKT_UnsupportedType(t *testing.T) {
	gj := `{"type":"Point","coordinates":[0,0]}`
	if _, err := GeoJSONToWKT(gj); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

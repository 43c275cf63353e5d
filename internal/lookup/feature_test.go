package lookup

import "testing"

func TestBuildColumn_AllowListed(t *testing.T) {
	if got := buildColumn("monitoring_location_identifier", "identifier"); got != "monitoring_location_identifier" {
		t.Fatalf("got %q, want allow-listed column", got)
	}
}

func TestBuildColumn_FallsBackOnUnknownColumn(t *testing.T) {
	if got := buildColumn("DROP TABLE feature;--", "identifier"); got != "identifier" {
		t.Fatalf("got %q, want fallback for disallowed column", got)
	}
}

func TestBuildColumn_EmptyUsesFallback(t *testing.T) {
	if got := buildColumn("", "identifier"); got != "identifier" {
		t.Fatalf("got %q, want fallback for empty column", got)
	}
}

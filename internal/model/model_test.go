package model

import "testing"

func TestDedup_PreservesFirstOccurrence(t *testing.T) {
	in := []int64{5, 3, 5, 7, 3, 9}
	got := Dedup(in)
	want := []int64{5, 3, 7, 9}
	if len(got) != len(want) {
		t.Fatalf("Dedup(%v) = %v, want %v", in, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Dedup(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNavMode_AcceptsStop(t *testing.T) {
	for _, m := range []NavMode{NavDownstreamMain, NavPointToPoint} {
		if !m.AcceptsStop() {
			t.Fatalf("%s should accept stop_comid", m)
		}
	}
	for _, m := range []NavMode{NavUpstreamMain, NavUpstreamTributaries, NavDownstreamDiversions} {
		if m.AcceptsStop() {
			t.Fatalf("%s should not accept stop_comid", m)
		}
	}
}

func TestNavMode_Valid(t *testing.T) {
	if NavMode("XX").Valid() {
		t.Fatal("unknown mode should be invalid")
	}
	if !NavUpstreamMain.Valid() {
		t.Fatal("UM should be valid")
	}
}

func TestCrawlerSource_IsComid(t *testing.T) {
	s := CrawlerSource{SourceID: ComidSourceID}
	if !s.IsComid() {
		t.Fatal("source_id 0 must be the synthetic comid source")
	}
}

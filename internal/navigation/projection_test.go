package navigation

import (
	"context"
	"testing"

	"github.com/internetofwater/nldi-go/internal/model"
)

type subrangeCall struct {
	comid    int64
	from, to float64
}

type fakeFlowlines struct {
	byComid    map[int64]model.Flowline
	sub        model.Flowline // returned when subByComid has no entry for the comid
	subByComid map[int64]model.Flowline
	calls      []subrangeCall
}

func (f *fakeFlowlines) ByComid(ctx context.Context, comid int64) (model.Flowline, error) {
	return f.byComid[comid], nil
}
func (f *fakeFlowlines) ByComids(ctx context.Context, comids []int64) ([]model.Flowline, error) {
	var out []model.Flowline
	for _, c := range comids {
		out = append(out, f.byComid[c])
	}
	return out, nil
}
func (f *fakeFlowlines) Subrange(ctx context.Context, comid int64, from, to float64) (model.Flowline, error) {
	f.calls = append(f.calls, subrangeCall{comid, from, to})
	if fl, ok := f.subByComid[comid]; ok {
		return fl, nil
	}
	return f.sub, nil
}

func TestFlowlines_TrimsFirstWhenRequested(t *testing.T) {
	fl := &fakeFlowlines{
		byComid: map[int64]model.Flowline{
			1: {Comid: 1, GeoJSON: "full"},
			2: {Comid: 2, GeoJSON: "full2"},
		},
		sub: model.Flowline{Comid: 1, GeoJSON: "trimmed"},
	}
	result := model.NavResult{Comids: []int64{1, 2}, TrimFirst: true}
	measure := 40.0
	anchor := model.Anchor{Comid: 1, Measure: &measure}

	out, err := Flowlines(context.Background(), fl, result, anchor, ProjectionOptions{TrimStart: true})
	if err != nil {
		t.Fatalf("Flowlines: %v", err)
	}
	if out[0].GeoJSON != "trimmed" {
		t.Fatalf("got %q, want trimmed first flowline", out[0].GeoJSON)
	}
	if out[1].GeoJSON != "full2" {
		t.Fatalf("second flowline should be untouched")
	}
}

func TestFlowlines_ExcludeGeometry(t *testing.T) {
	fl := &fakeFlowlines{byComid: map[int64]model.Flowline{1: {Comid: 1, GeoJSON: "full"}}}
	result := model.NavResult{Comids: []int64{1}}

	out, err := Flowlines(context.Background(), fl, result, model.Anchor{}, ProjectionOptions{ExcludeGeometry: true})
	if err != nil {
		t.Fatalf("Flowlines: %v", err)
	}
	if out[0].GeoJSON != "" {
		t.Fatalf("geometry should be excluded, got %q", out[0].GeoJSON)
	}
}

func TestFlowlines_TrimsLastForPP(t *testing.T) {
	fl := &fakeFlowlines{
		byComid: map[int64]model.Flowline{
			1: {Comid: 1, GeoJSON: "full1"},
			2: {Comid: 2, GeoJSON: "full2"},
		},
		subByComid: map[int64]model.Flowline{
			2: {Comid: 2, GeoJSON: "trimmed-last"},
		},
	}
	stopMeasure := 60.0
	result := model.NavResult{Comids: []int64{1, 2}, TrimLast: true, StopMeasure: &stopMeasure}

	out, err := Flowlines(context.Background(), fl, result, model.Anchor{}, ProjectionOptions{TrimStart: true})
	if err != nil {
		t.Fatalf("Flowlines: %v", err)
	}
	if out[0].GeoJSON != "full1" {
		t.Fatalf("first flowline should be untouched, got %q", out[0].GeoJSON)
	}
	if out[1].GeoJSON != "trimmed-last" {
		t.Fatalf("got %q, want trimmed last flowline", out[1].GeoJSON)
	}
	if len(fl.calls) != 1 || fl.calls[0] != (subrangeCall{comid: 2, from: 0, to: 60}) {
		t.Fatalf("unexpected Subrange calls: %+v", fl.calls)
	}
}

func TestFlowlines_TrimsBothEndsOnSameFlowline(t *testing.T) {
	fl := &fakeFlowlines{
		byComid: map[int64]model.Flowline{1: {Comid: 1, GeoJSON: "full"}},
		sub:     model.Flowline{Comid: 1, GeoJSON: "trimmed-both"},
	}
	startMeasure := 80.0
	stopMeasure := 20.0
	result := model.NavResult{Comids: []int64{1}, TrimFirst: true, TrimLast: true, StopMeasure: &stopMeasure}
	anchor := model.Anchor{Comid: 1, Measure: &startMeasure}

	out, err := Flowlines(context.Background(), fl, result, anchor, ProjectionOptions{TrimStart: true})
	if err != nil {
		t.Fatalf("Flowlines: %v", err)
	}
	if out[0].GeoJSON != "trimmed-both" {
		t.Fatalf("got %q, want a single combined trim", out[0].GeoJSON)
	}
	if len(fl.calls) != 1 || fl.calls[0] != (subrangeCall{comid: 1, from: 80, to: 20}) {
		t.Fatalf("expected a single combined Subrange call, got %+v", fl.calls)
	}
}

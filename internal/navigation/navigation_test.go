package navigation

import (
	"testing"

	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

func ptr(i int64) *int64 { return &i }

func TestRequest_Validate_UnknownMode(t *testing.T) {
	r := Request{Mode: "XX", StartComid: 1, DistanceKM: 10}
	if err := r.Validate(); !nldierrors.Is(err, nldierrors.InvalidInput) {
		t.Fatalf("got %v, want InvalidInput", err)
	}
}

func TestRequest_Validate_DistanceOutOfRange(t *testing.T) {
	r := Request{Mode: model.NavUpstreamMain, StartComid: 1, DistanceKM: 0}
	if err := r.Validate(); !nldierrors.Is(err, nldierrors.InvalidInput) {
		t.Fatalf("distance=0 should be rejected, got %v", err)
	}

	r.DistanceKM = 10_000
	if err := r.Validate(); !nldierrors.Is(err, nldierrors.InvalidInput) {
		t.Fatalf("distance=10000 should be rejected, got %v", err)
	}
}

func TestRequest_Validate_StopComidOnlyForDMAndPP(t *testing.T) {
	r := Request{Mode: model.NavUpstreamMain, StartComid: 1, DistanceKM: 10, StopComid: ptr(2)}
	if err := r.Validate(); !nldierrors.Is(err, nldierrors.InvalidInput) {
		t.Fatalf("UM with stop_comid should be rejected, got %v", err)
	}

	r.Mode = model.NavDownstreamMain
	if err := r.Validate(); err != nil {
		t.Fatalf("DM with stop_comid should be valid, got %v", err)
	}
}

func TestRequest_Validate_PPRequiresStopComid(t *testing.T) {
	r := Request{Mode: model.NavPointToPoint, StartComid: 1}
	if err := r.Validate(); !nldierrors.Is(err, nldierrors.InvalidInput) {
		t.Fatalf("PP without stop_comid should be rejected, got %v", err)
	}
}

func TestRequest_Validate_PPIgnoresDistance(t *testing.T) {
	r := Request{Mode: model.NavPointToPoint, StartComid: 1, DistanceKM: 0, StopComid: ptr(2)}
	if err := r.Validate(); err != nil {
		t.Fatalf("PP should ignore distance, got %v", err)
	}
}

func TestRequest_Validate_StopMeasureOnlyForPP(t *testing.T) {
	measure := 40.0
	r := Request{Mode: model.NavDownstreamMain, StartComid: 1, DistanceKM: 10, StopComid: ptr(2), StopMeasure: &measure}
	if err := r.Validate(); !nldierrors.Is(err, nldierrors.InvalidInput) {
		t.Fatalf("DM with stopMeasure should be rejected, got %v", err)
	}

	r.Mode = model.NavPointToPoint
	r.DistanceKM = 0
	if err := r.Validate(); err != nil {
		t.Fatalf("PP with stopMeasure should be valid, got %v", err)
	}
}

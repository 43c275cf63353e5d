package geoprocessing

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

func TestClient_SplitCatchment_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/split-catchment" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"comid": 13297198, "measure": 42.5, "trimmedCatchment": `{"type":"Polygon"}`,
		})
	}))
	defer srv.Close()

	c, err := New(slog.Default(), srv.Client(), srv.URL, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.clock = clockwork.NewFakeClock()

	result, err := c.SplitCatchment(context.Background(), -89.5, 43.0)
	if err != nil {
		t.Fatalf("SplitCatchment: %v", err)
	}
	if result.Comid != 13297198 || result.Measure != 42.5 {
		t.Fatalf("got %+v, want comid=13297198 measure=42.5", result)
	}
}

func TestClient_Call_NonTwoXXIsRemoteServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(slog.Default(), srv.Client(), srv.URL, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Hydrolocation(context.Background(), -89.5, 43.0)
	if !nldierrors.Is(err, nldierrors.RemoteServiceError) {
		t.Fatalf("got %v, want RemoteServiceError", err)
	}
}

func TestClient_Disabled_FailsFast(t *testing.T) {
	c, err := New(slog.Default(), nil, "", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Hydrolocation(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error from disabled client")
	}
}

package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, nldierrors.Wrap(nldierrors.InvalidInput, name+" must be an integer", err)
	}
	return n, nil
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, nldierrors.Wrap(nldierrors.InvalidInput, name+" must be a number", err)
	}
	return f, nil
}

func queryBool(r *http.Request, name string) bool {
	raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name)))
	return raw == "true" || raw == "1" || raw == "yes"
}

func queryStopComid(r *http.Request) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("stopComid"))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, nldierrors.Wrap(nldierrors.InvalidInput, "stopComid must be an integer", err)
	}
	return &n, nil
}

func queryStopMeasure(r *http.Request) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("stopMeasure"))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, nldierrors.Wrap(nldierrors.InvalidInput, "stopMeasure must be a number", err)
	}
	return &f, nil
}

func parseComidParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nldierrors.Wrap(nldierrors.InvalidInput, name+" must be an integer", err)
	}
	return n, nil
}

func parseNavMode(raw string) (model.NavMode, error) {
	mode := model.NavMode(strings.ToUpper(strings.TrimSpace(raw)))
	if !mode.Valid() {
		return "", nldierrors.New(nldierrors.InvalidInput, "unknown navigation mode: "+raw)
	}
	return mode, nil
}

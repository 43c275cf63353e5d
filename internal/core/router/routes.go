package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/internetofwater/nldi-go/internal/core/observability"
	"github.com/internetofwater/nldi-go/internal/logger"
	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/navigation"
	"github.com/internetofwater/nldi-go/internal/openapi"
	"github.com/internetofwater/nldi-go/internal/response"
)

// New builds the chi route tree for a. Routes are mounted under the
// configured server path (default /api/nldi); the remaining paths below
// are relative to that mount point.
func New(a *App) http.Handler {
	r := chi.NewRouter()

	r.Route(a.Config.Server.Path, func(r chi.Router) {
		r.Get("/", a.landing)
		r.Get("/linked-data", a.listSources)
		r.Get("/linked-data/comid/position", a.byPosition)
		r.Get("/linked-data/hydrolocation", a.hydrolocation)
		r.Get("/linked-data/comid/{comid}", a.byComid)
		r.Get("/linked-data/{source}", a.listFeatures)
		r.Get("/linked-data/{source}/{featureId}", a.getFeature)
		r.Get("/linked-data/{source}/{featureId}/basin", a.basin)
		r.Get("/linked-data/{source}/{featureId}/navigation", a.navigationIndex)
		r.Get("/linked-data/{source}/{featureId}/navigation/{mode}", a.navigationModeIndex)
		r.Get("/linked-data/{source}/{featureId}/navigation/{mode}/{dataSource}", a.navigate)
		r.Get("/openapi", a.openapi)
	})

	return r
}

func withTiming(a *App, route string, w http.ResponseWriter, r *http.Request, fn func(sw *statusWriter)) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
	fn(sw)
	observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// navigationURL builds the absolute navigation-index link attached to
// every feature's properties.navigation field.
func (a *App) navigationURL(sourceSuffix, featureID string) string {
	return fmt.Sprintf("%s/linked-data/%s/%s/navigation", a.BaseURL(), sourceSuffix, featureID)
}

func (a *App) landing(w http.ResponseWriter, r *http.Request) {
	withTiming(a, "/", w, r, func(sw *statusWriter) {
		writeJSON(sw, http.StatusOK, map[string]any{
			"title":       a.Config.Metadata.Title,
			"description": a.Config.Metadata.Describe,
			"links": []map[string]string{
				{"rel": "self", "href": a.BaseURL()},
				{"rel": "data", "href": a.BaseURL() + "/linked-data"},
				{"rel": "service-desc", "href": a.BaseURL() + "/openapi"},
			},
		})
	})
}

func (a *App) listSources(w http.ResponseWriter, r *http.Request) {
	withTiming(a, "/linked-data", w, r, func(sw *statusWriter) {
		sources := a.Registry.List()
		out := make([]response.SourceListing, 0, len(sources))
		for _, s := range sources {
			out = append(out, response.SourceListing{
				Source:          s,
				Suffix:          s.Suffix,
				SourceName:      s.SourceName,
				Features:        a.BaseURL() + "/linked-data/" + s.Suffix,
				NavigationLinks: a.BaseURL() + "/linked-data/" + s.Suffix + "/{featureId}/navigation",
			})
		}
		writeJSON(sw, http.StatusOK, out)
	})
}

func (a *App) listFeatures(w http.ResponseWriter, r *http.Request) {
	withTiming(a, "/linked-data/{source}", w, r, func(sw *statusWriter) {
		suffix := chi.URLParam(r, "source")
		source, err := a.Registry.Get(suffix)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		limit, err := queryInt(r, "limit", 100)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		offset, err := queryInt(r, "offset", 0)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		features, err := a.Features.ListBySource(r.Context(), source, limit, offset)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}

		fc := response.FeatureCollection{Type: "FeatureCollection"}
		for _, f := range features {
			fc.Features = append(fc.Features, response.Feature{
				Type: "Feature",
				Properties: response.Properties{
					Identifier: f.Identifier,
					Name:       f.Name,
					Source:     source.Suffix,
					SourceName: source.SourceName,
					Comid:      fmt.Sprintf("%d", f.Comid),
					Type:       source.FeatureType,
					Navigation: a.navigationURL(source.Suffix, f.Identifier),
				},
			})
		}
		if fc.Features == nil {
			fc.Features = []response.Feature{}
		}
		observability.ObserveResponseFeatureCount("/linked-data/{source}", len(fc.Features))
		writeJSON(sw, http.StatusOK, fc)
	})
}

func (a *App) getFeature(w http.ResponseWriter, r *http.Request) {
	withTiming(a, "/linked-data/{source}/{featureId}", w, r, func(sw *statusWriter) {
		suffix := chi.URLParam(r, "source")
		featureID := chi.URLParam(r, "featureId")

		anch, err := a.Anchors.ByFeature(r.Context(), suffix, featureID)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		fl, err := a.Flowlines.ByComid(r.Context(), anch.Comid)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		fc := response.Flowlines([]model.Flowline{fl}, func(comid int64) string {
			return a.navigationURL(suffix, featureID)
		})
		writeJSON(sw, http.StatusOK, fc)
	})
}

func (a *App) byComid(w http.ResponseWriter, r *http.Request) {
	withTiming(a, "/linked-data/comid/{comid}", w, r, func(sw *statusWriter) {
		comid, err := parseComidParam(r, "comid")
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		fl, err := a.Flowlines.ByComid(r.Context(), comid)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		fc := response.Flowlines([]model.Flowline{fl}, func(c int64) string {
			return a.navigationURL(model.ComidSourceSuffix, fmt.Sprintf("%d", c))
		})
		writeJSON(sw, http.StatusOK, fc)
	})
}

func (a *App) byPosition(w http.ResponseWriter, r *http.Request) {
	withTiming(a, "/linked-data/comid/position", w, r, func(sw *statusWriter) {
		coords := r.URL.Query().Get("coords")
		splitCatchment := queryBool(r, "splitCatchment")

		anch, err := a.Anchors.ByCoordinates(r.Context(), coords, splitCatchment)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		catchment, err := a.Catchments.ByComid(r.Context(), anch.Comid)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		fc := response.FeatureCollection{Type: "FeatureCollection", Features: []response.Feature{{
			Type:     "Feature",
			Geometry: jsonRaw(catchment.GeoJSON),
			Properties: response.Properties{
				Identifier: fmt.Sprintf("%d", anch.Comid),
				Source:     model.ComidSourceSuffix,
				Comid:      fmt.Sprintf("%d", anch.Comid),
				Type:       "catchment",
				Navigation: a.navigationURL(model.ComidSourceSuffix, fmt.Sprintf("%d", anch.Comid)),
			},
		}}}
		writeJSON(sw, http.StatusOK, fc)
	})
}

func (a *App) hydrolocation(w http.ResponseWriter, r *http.Request) {
	withTiming(a, "/linked-data/hydrolocation", w, r, func(sw *statusWriter) {
		coords := r.URL.Query().Get("coords")
		anch, err := a.Anchors.ByHydrolocation(r.Context(), coords)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		fc := response.FeatureCollection{Type: "FeatureCollection", Features: []response.Feature{{
			Type: "Feature",
			Properties: response.Properties{
				Identifier: fmt.Sprintf("%d", anch.Comid),
				Source:     model.ComidSourceSuffix,
				Comid:      fmt.Sprintf("%d", anch.Comid),
				Measure:    anch.Measure,
				Type:       "hydrolocation",
			},
		}}}
		writeJSON(sw, http.StatusOK, fc)
	})
}

func (a *App) basin(w http.ResponseWriter, r *http.Request) {
	withTiming(a, "/linked-data/{source}/{featureId}/basin", w, r, func(sw *statusWriter) {
		suffix := chi.URLParam(r, "source")
		featureID := chi.URLParam(r, "featureId")
		_ = queryBool(r, "splitCatchment") // only meaningful for coordinate anchors; basin never resolves one
		simplify, err := queryFloat(r, "simplified", 0)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}

		var anch model.Anchor
		if suffix == model.ComidSourceSuffix {
			comid, err := parseComidParam(r, "featureId")
			if err != nil {
				a.writeError(sw, r, err)
				return
			}
			anch, err = a.Anchors.ByComid(r.Context(), comid)
			if err != nil {
				a.writeError(sw, r, err)
				return
			}
		} else {
			anch, err = a.Anchors.ByFeature(r.Context(), suffix, featureID)
			if err != nil {
				a.writeError(sw, r, err)
				return
			}
		}
		result, err := a.Nav.Navigate(r.Context(), navigation.Request{
			Mode: model.NavUpstreamTributaries, StartComid: anch.Comid, DistanceKM: 9999,
		})
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		allComids := append([]int64{anch.Comid}, result.Comids...)

		b, err := navigation.Basin(r.Context(), a.Basins, model.NavResult{Comids: allComids}, simplify)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		writeJSON(sw, http.StatusOK, response.BasinFeature(b, anch.Comid))
	})
}

func (a *App) navigationIndex(w http.ResponseWriter, r *http.Request) {
	withTiming(a, "/linked-data/{source}/{featureId}/navigation", w, r, func(sw *statusWriter) {
		suffix := chi.URLParam(r, "source")
		featureID := chi.URLParam(r, "featureId")
		base := a.navigationURL(suffix, featureID)
		modes := []model.NavMode{
			model.NavUpstreamMain, model.NavUpstreamTributaries,
			model.NavDownstreamMain, model.NavDownstreamDiversions, model.NavPointToPoint,
		}
		out := make([]map[string]string, 0, len(modes))
		for _, m := range modes {
			out = append(out, map[string]string{
				"source": string(m), "navigation": base + "/" + string(m),
			})
		}
		writeJSON(sw, http.StatusOK, out)
	})
}

func (a *App) navigationModeIndex(w http.ResponseWriter, r *http.Request) {
	withTiming(a, "/linked-data/{source}/{featureId}/navigation/{mode}", w, r, func(sw *statusWriter) {
		suffix := chi.URLParam(r, "source")
		featureID := chi.URLParam(r, "featureId")
		mode := chi.URLParam(r, "mode")
		if _, err := parseNavMode(mode); err != nil {
			a.writeError(sw, r, err)
			return
		}
		base := a.navigationURL(suffix, featureID) + "/" + mode

		out := []map[string]string{{"source": model.ComidSourceSuffix, "features": base + "/" + model.ComidSourceSuffix}}
		for _, s := range a.Registry.List() {
			if s.IsComid() {
				continue
			}
			out = append(out, map[string]string{"source": s.Suffix, "features": base + "/" + s.Suffix})
		}
		writeJSON(sw, http.StatusOK, out)
	})
}

func (a *App) navigate(w http.ResponseWriter, r *http.Request) {
	withTiming(a, "/linked-data/{source}/{featureId}/navigation/{mode}/{dataSource}", w, r, func(sw *statusWriter) {
		suffix := chi.URLParam(r, "source")
		featureID := chi.URLParam(r, "featureId")
		modeRaw := chi.URLParam(r, "mode")
		dataSource := chi.URLParam(r, "dataSource")

		mode, err := parseNavMode(modeRaw)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		ctx := logger.WithNavMode(r.Context(), string(mode))

		var anch model.Anchor
		if suffix == model.ComidSourceSuffix {
			comid, err := parseComidParam(r, "featureId")
			if err != nil {
				a.writeError(sw, r, err)
				return
			}
			anch, err = a.Anchors.ByComid(ctx, comid)
			if err != nil {
				a.writeError(sw, r, err)
				return
			}
		} else {
			anch, err = a.Anchors.ByFeature(ctx, suffix, featureID)
			if err != nil {
				a.writeError(sw, r, err)
				return
			}
		}

		distance, err := queryFloat(r, "distance", 0)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		stopComid, err := queryStopComid(r)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		stopMeasure, err := queryStopMeasure(r)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		trimStart := queryBool(r, "trimStart")
		trimTolerance, err := queryFloat(r, "trimTolerance", 0)
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		// legacy is accepted and logged per forward-compatibility note; it has
		// no effect on behavior.
		if r.URL.Query().Get("legacy") != "" {
			(a.Logger).InfoContext(ctx, "legacy parameter supplied", "value", r.URL.Query().Get("legacy"))
		}

		navStart := time.Now()
		result, err := a.Nav.Navigate(ctx, navigation.Request{
			Mode: mode, StartComid: anch.Comid, DistanceKM: distance,
			StopComid: stopComid, StopMeasure: stopMeasure,
		})
		if err != nil {
			a.writeError(sw, r, err)
			return
		}
		observability.ObserveNavigation(string(mode), len(result.Comids), time.Since(navStart).Seconds(), nil)

		var fc response.FeatureCollection
		if dataSource == model.ComidSourceSuffix {
			lines, err := navigation.Flowlines(ctx, a.Flowlines, result, anch, navigation.ProjectionOptions{
				TrimStart: trimStart, TrimTolerance: trimTolerance,
			})
			if err != nil {
				a.writeError(sw, r, err)
				return
			}
			fc = response.Flowlines(lines, func(c int64) string {
				return a.navigationURL(model.ComidSourceSuffix, fmt.Sprintf("%d", c))
			})
		} else {
			targetSource, err := a.Registry.Get(dataSource)
			if err != nil {
				a.writeError(sw, r, err)
				return
			}
			items, err := navigation.FeaturesAlong(ctx, a.Features, a.Mainstems, targetSource, result)
			if err != nil {
				a.writeError(sw, r, err)
				return
			}
			fc = response.FeaturesAlongNav(targetSource, items,
				func(f model.Feature) string { return a.navigationURL(targetSource.Suffix, f.Identifier) },
			)
		}
		observability.ObserveResponseFeatureCount("/linked-data/{source}/{featureId}/navigation/{mode}/{dataSource}", len(fc.Features))
		writeJSON(sw, http.StatusOK, fc)
	})
}

func (a *App) openapi(w http.ResponseWriter, r *http.Request) {
	withTiming(a, "/openapi", w, r, func(sw *statusWriter) {
		format := openapi.Format(r.URL.Query().Get("f"))
		body, contentType, err := openapi.Render(format)
		if err != nil {
			writeNotAcceptable(sw, string(format))
			return
		}
		sw.Header().Set("Content-Type", contentType)
		sw.WriteHeader(http.StatusOK)
		_, _ = sw.Write(body)
	})
}

func jsonRaw(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}

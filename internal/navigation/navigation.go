// Package navigation wraps the nhdplus_navigation.navigate SQL function and
// projects its ordered COMID results onto flowlines, source features, or
// basin polygons.
package navigation

import (
	"context"

	"github.com/internetofwater/nldi-go/internal/db"
	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

// Engine answers "what COMIDs are reachable from an anchor under a mode
// and distance budget, optionally stopping at a COMID".
type Engine struct {
	gw *db.Gateway
}

func NewEngine(gw *db.Gateway) *Engine {
	return &Engine{gw: gw}
}

// Request is one (mode, anchor, distance, stop) navigation query. Navigate
// calls Validate itself before querying, so callers (the router included)
// need not call it separately.
type Request struct {
	Mode       model.NavMode
	StartComid int64
	DistanceKM float64
	StopComid  *int64 // only meaningful for DM and PP
	// StopMeasure is the optional fractional measure along StopComid where a
	// PP navigation actually terminates, used to clip the last flowline
	// analogously to how the anchor measure clips the first.
	StopMeasure *float64
}

// Validate enforces the navigation parameter invariants.
func (r Request) Validate() error {
	if !r.Mode.Valid() {
		return nldierrors.New(nldierrors.InvalidInput, "unknown navigation mode")
	}
	if r.Mode != model.NavPointToPoint {
		if r.DistanceKM <= 0 || r.DistanceKM >= 10_000 {
			return nldierrors.New(nldierrors.InvalidInput, "distance_km must be in (0, 10000)")
		}
	}
	if r.StopComid != nil && !r.Mode.AcceptsStop() {
		return nldierrors.New(nldierrors.InvalidInput, "stop_comid is only valid for DM and PP")
	}
	if r.Mode == model.NavPointToPoint && r.StopComid == nil {
		return nldierrors.New(nldierrors.InvalidInput, "PP navigation requires stop_comid")
	}
	if r.StopMeasure != nil && r.Mode != model.NavPointToPoint {
		return nldierrors.New(nldierrors.InvalidInput, "stopMeasure is only valid for PP")
	}
	return nil
}

// Navigate calls nhdplus_navigation.navigate and returns the ordered,
// deduplicated COMIDs it produced. An empty result is not an error.
func (e *Engine) Navigate(ctx context.Context, req Request) (model.NavResult, error) {
	if err := req.Validate(); err != nil {
		return model.NavResult{}, err
	}

	var comids []int64
	err := db.WithSession(ctx, e.gw, func(ctx context.Context, s db.Session) error {
		rows, err := s.Query(ctx,
			`SELECT comid FROM nhdplus_navigation.navigate($1, $2, $3, $4)`,
			string(req.Mode), req.StartComid, req.DistanceKM, req.StopComid)
		if err != nil {
			return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "navigate", err)
		}
		defer rows.Close()
		for rows.Next() {
			var c int64
			if err := rows.Scan(&c); err != nil {
				return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "scan navigation comid", err)
			}
			comids = append(comids, c)
		}
		return rows.Err()
	})
	if err != nil {
		return model.NavResult{}, err
	}

	return model.NavResult{
		Comids: model.Dedup(comids),
		// TrimFirst is always eligible: the projection layer decides whether
		// to actually clip based on the caller's trimStart flag and whether
		// the anchor carries a measure. TrimLast only applies to PP, which is
		// the only mode with a stop measure to clip against.
		TrimFirst:   true,
		TrimLast:    req.Mode == model.NavPointToPoint,
		StopMeasure: req.StopMeasure,
	}, nil
}

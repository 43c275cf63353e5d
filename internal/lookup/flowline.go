package lookup

import (
	"context"
	"strings"

	"github.com/internetofwater/nldi-go/internal/db"
	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

// FlowlineLookup reads NHDPlus reach rows.
type FlowlineLookup interface {
	ByComid(ctx context.Context, comid int64) (model.Flowline, error)
	ByComids(ctx context.Context, comids []int64) ([]model.Flowline, error)
	Subrange(ctx context.Context, comid int64, fromMeasure, toMeasure float64) (model.Flowline, error)
}

type flowlinePlugin struct {
	gw *db.Gateway
}

func NewFlowlineLookup(gw *db.Gateway) FlowlineLookup {
	return &flowlinePlugin{gw: gw}
}

func scanFlowline(row interface{ Scan(dest ...any) error }) (model.Flowline, error) {
	var fl model.Flowline
	err := row.Scan(&fl.Comid, &fl.GeoJSON, &fl.ReachCode, &fl.FromNode, &fl.ToNode,
		&fl.HydroSeq, &fl.PathLength, &fl.LengthKM, &fl.MainstemID)
	return fl, err
}

func (p *flowlinePlugin) ByComid(ctx context.Context, comid int64) (model.Flowline, error) {
	var fl model.Flowline
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		row := s.QueryRow(ctx, `
SELECT comid, ST_AsGeoJSON(geom), reachcode, fromnode, tonode,
       hydroseq, pathlength, lengthkm, mainstem_id
FROM nhdplus.flowline
WHERE comid = $1`, comid)
		var scanErr error
		fl, scanErr = scanFlowline(row)
		return scanErr
	})
	if err != nil {
		return model.Flowline{}, nldierrors.Wrap(nldierrors.NotFound, "flowline not found", err)
	}
	return fl, nil
}

func (p *flowlinePlugin) ByComids(ctx context.Context, comids []int64) ([]model.Flowline, error) {
	if len(comids) == 0 {
		return []model.Flowline{}, nil
	}
	var out []model.Flowline
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		rows, err := s.Query(ctx, `
SELECT comid, ST_AsGeoJSON(geom), reachcode, fromnode, tonode,
       hydroseq, pathlength, lengthkm, mainstem_id
FROM nhdplus.flowline
WHERE comid = ANY($1)`, comids)
		if err != nil {
			return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "query flowlines", err)
		}
		defer rows.Close()
		byComid := make(map[int64]model.Flowline, len(comids))
		for rows.Next() {
			fl, err := scanFlowline(rows)
			if err != nil {
				return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "scan flowline", err)
			}
			byComid[fl.Comid] = fl
		}
		if err := rows.Err(); err != nil {
			return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "iterate flowlines", err)
		}
		// preserve navigation order, not the arbitrary order ANY() returned
		for _, c := range comids {
			if fl, ok := byComid[c]; ok {
				out = append(out, fl)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Subrange clips the flowline's geometry between two measures (0-100 along
// the reach), used to trim the first or last flowline of a navigation
// result to the anchor/stop measure.
func (p *flowlinePlugin) Subrange(ctx context.Context, comid int64, fromMeasure, toMeasure float64) (model.Flowline, error) {
	var fl model.Flowline
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		row := s.QueryRow(ctx, `
SELECT comid,
       ST_AsGeoJSON(ST_LocateBetween(geom_measured, $2, $3)),
       reachcode, fromnode, tonode, hydroseq, pathlength, lengthkm, mainstem_id
FROM nhdplus.flowline
WHERE comid = $1`, comid, fromMeasure, toMeasure)
		var scanErr error
		fl, scanErr = scanFlowline(row)
		return scanErr
	})
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return model.Flowline{}, nldierrors.Wrap(nldierrors.NotFound, "flowline not found", err)
		}
		return model.Flowline{}, nldierrors.Wrap(nldierrors.GeometryError, "clip flowline subrange", err)
	}
	return fl, nil
}

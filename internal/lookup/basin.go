package lookup

import (
	"context"

	"github.com/internetofwater/nldi-go/internal/db"
	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

// BasinLookup aggregates catchments into the upstream basin polygon for a
// set of COMIDs. Basins are computed on demand and never persisted.
type BasinLookup interface {
	Aggregate(ctx context.Context, comids []int64, simplifyTolerance float64) (model.Basin, error)
}

type basinPlugin struct {
	gw *db.Gateway
}

func NewBasinLookup(gw *db.Gateway) BasinLookup {
	return &basinPlugin{gw: gw}
}

func (p *basinPlugin) Aggregate(ctx context.Context, comids []int64, simplifyTolerance float64) (model.Basin, error) {
	if len(comids) == 0 {
		return model.Basin{}, nldierrors.New(nldierrors.NotFound, "no catchments to aggregate")
	}

	var b model.Basin
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		var row interface{ Scan(dest ...any) error }
		if simplifyTolerance > 0 {
			row = s.QueryRow(ctx, `
SELECT ST_AsGeoJSON(ST_Simplify(ST_Union(geom), $2))
FROM nhdplus.catchment
WHERE featureid = ANY($1)`, comids, simplifyTolerance)
		} else {
			row = s.QueryRow(ctx, `
SELECT ST_AsGeoJSON(ST_Union(geom))
FROM nhdplus.catchment
WHERE featureid = ANY($1)`, comids)
		}
		return row.Scan(&b.GeoJSON)
	})
	if err != nil {
		return model.Basin{}, nldierrors.Wrap(nldierrors.GeometryError, "aggregate basin", err)
	}
	if b.GeoJSON == "" {
		return model.Basin{}, nldierrors.New(nldierrors.NotFound, "no catchments found for anchor")
	}
	return b, nil
}

package lookup

import (
	"context"

	"github.com/internetofwater/nldi-go/internal/db"
	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

// CatchmentLookup reads the polygon draining to a specific flowline.
type CatchmentLookup interface {
	Containing(ctx context.Context, lon, lat float64) (model.Catchment, error)
	ByComid(ctx context.Context, comid int64) (model.Catchment, error)
}

type catchmentPlugin struct {
	gw *db.Gateway
}

func NewCatchmentLookup(gw *db.Gateway) CatchmentLookup {
	return &catchmentPlugin{gw: gw}
}

func (p *catchmentPlugin) Containing(ctx context.Context, lon, lat float64) (model.Catchment, error) {
	var c model.Catchment
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		row := s.QueryRow(ctx, `
SELECT featureid, ST_AsGeoJSON(geom)
FROM nhdplus.catchment
WHERE ST_Contains(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326))
LIMIT 1`, lon, lat)
		return row.Scan(&c.FeatureID, &c.GeoJSON)
	})
	if err != nil {
		return model.Catchment{}, nldierrors.Wrap(nldierrors.NotFound, "no catchment contains point", err)
	}
	return c, nil
}

func (p *catchmentPlugin) ByComid(ctx context.Context, comid int64) (model.Catchment, error) {
	var c model.Catchment
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		row := s.QueryRow(ctx, `
SELECT featureid, ST_AsGeoJSON(geom)
FROM nhdplus.catchment
WHERE featureid = $1`, comid)
		return row.Scan(&c.FeatureID, &c.GeoJSON)
	})
	if err != nil {
		return model.Catchment{}, nldierrors.Wrap(nldierrors.NotFound, "catchment not found", err)
	}
	return c, nil
}

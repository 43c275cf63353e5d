// Package anchor resolves any supported request identifier — a COMID, a
// source feature, coordinates, or a hydrolocation request — into the
// (comid, measure, trim hint) tuple the navigation engine starts from.
package anchor

import (
	"context"

	"github.com/internetofwater/nldi-go/internal/geo"
	"github.com/internetofwater/nldi-go/internal/geoprocessing"
	"github.com/internetofwater/nldi-go/internal/lookup"
	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
	"github.com/internetofwater/nldi-go/internal/registry"
)

// Resolver resolves the four input variants spec'd for starting a
// navigation or basin request.
type Resolver struct {
	registry   *registry.Registry
	flowlines  lookup.FlowlineLookup
	features   lookup.FeatureLookup
	catchments lookup.CatchmentLookup
	geoproc    *geoprocessing.Client
}

func NewResolver(
	reg *registry.Registry,
	flowlines lookup.FlowlineLookup,
	features lookup.FeatureLookup,
	catchments lookup.CatchmentLookup,
	geoproc *geoprocessing.Client,
) *Resolver {
	return &Resolver{
		registry:   reg,
		flowlines:  flowlines,
		features:   features,
		catchments: catchments,
		geoproc:    geoproc,
	}
}

// ByComid resolves /linked-data/comid/{comid}.
func (r *Resolver) ByComid(ctx context.Context, comid int64) (model.Anchor, error) {
	if _, err := r.flowlines.ByComid(ctx, comid); err != nil {
		return model.Anchor{}, err
	}
	return model.Anchor{Comid: comid, Source: model.AnchorFromComid}, nil
}

// ByFeature resolves /linked-data/{source}/{featureId}.
func (r *Resolver) ByFeature(ctx context.Context, sourceSuffix, featureID string) (model.Anchor, error) {
	source, err := r.registry.Get(sourceSuffix)
	if err != nil {
		return model.Anchor{}, err
	}
	if source.IsComid() {
		comid, err := parseComid(featureID)
		if err != nil {
			return model.Anchor{}, err
		}
		return r.ByComid(ctx, comid)
	}

	feature, err := r.features.ByIdentifier(ctx, source, featureID)
	if err != nil {
		return model.Anchor{}, err
	}

	a := model.Anchor{Comid: feature.Comid, Source: model.AnchorFromFeature}
	if source.IngestType == model.IngestReach {
		a.Measure = feature.Measure
	}
	return a, nil
}

// ByCoordinates resolves /linked-data/comid/position?coords=POINT(lon lat).
// When splitCatchment is true, the remote geoprocessing service is asked
// for a precise (comid, measure) and trim geometry instead of just the
// containing catchment's featureid.
func (r *Resolver) ByCoordinates(ctx context.Context, rawCoords string, splitCatchment bool) (model.Anchor, error) {
	pt, err := geo.ParsePoint(rawCoords)
	if err != nil {
		return model.Anchor{}, nldierrors.Wrap(nldierrors.InvalidInput, "invalid coords", err)
	}

	if splitCatchment {
		result, err := r.geoproc.SplitCatchment(ctx, pt.Lon, pt.Lat)
		if err != nil {
			return model.Anchor{}, err
		}
		return model.Anchor{
			Comid:    result.Comid,
			Measure:  &result.Measure,
			Source:   model.AnchorFromCoordinates,
			TrimHint: &result.TrimGeoJSON,
		}, nil
	}

	catchment, err := r.catchments.Containing(ctx, pt.Lon, pt.Lat)
	if err != nil {
		return model.Anchor{}, err
	}
	return model.Anchor{Comid: catchment.FeatureID, Source: model.AnchorFromCoordinates}, nil
}

// ByHydrolocation resolves /linked-data/hydrolocation?coords=POINT(lon lat),
// delegating entirely to the remote geoprocessing client.
func (r *Resolver) ByHydrolocation(ctx context.Context, rawCoords string) (model.Anchor, error) {
	pt, err := geo.ParsePoint(rawCoords)
	if err != nil {
		return model.Anchor{}, nldierrors.Wrap(nldierrors.InvalidInput, "invalid coords", err)
	}

	result, err := r.geoproc.Hydrolocation(ctx, pt.Lon, pt.Lat)
	if err != nil {
		return model.Anchor{}, err
	}
	return model.Anchor{
		Comid:   result.Comid,
		Measure: &result.Measure,
		Source:  model.AnchorFromHydrolocation,
	}, nil
}

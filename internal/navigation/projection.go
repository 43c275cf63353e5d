package navigation

import (
	"context"
	"sort"

	"github.com/internetofwater/nldi-go/internal/lookup"
	"github.com/internetofwater/nldi-go/internal/model"
)

// ProjectionOptions controls how a NavResult is projected onto flowline
// geometry.
type ProjectionOptions struct {
	ExcludeGeometry bool
	TrimStart       bool
	TrimTolerance   float64
}

// Flowlines joins a NavResult's COMIDs against the flowline table,
// preserving navigation order, and clips the first flowline at the
// anchor's measure and (for PP) the last flowline at the stop measure,
// when requested and available.
func Flowlines(ctx context.Context, flowlines lookup.FlowlineLookup, result model.NavResult, anchor model.Anchor, opts ProjectionOptions) ([]model.Flowline, error) {
	lines, err := flowlines.ByComids(ctx, result.Comids)
	if err != nil {
		return nil, err
	}

	trimStart := opts.TrimStart && result.TrimFirst && anchor.Measure != nil && len(lines) > 0
	trimEnd := opts.TrimStart && result.TrimLast && result.StopMeasure != nil && len(lines) > 0

	switch {
	case trimStart && trimEnd && len(lines) == 1:
		// Start and stop fall on the same flowline: clip both ends in one
		// call instead of letting the second trim clobber the first.
		trimmed, err := flowlines.Subrange(ctx, lines[0].Comid, *anchor.Measure, *result.StopMeasure)
		if err == nil {
			lines[0] = trimmed
		}
	default:
		if trimStart {
			trimmed, err := flowlines.Subrange(ctx, lines[0].Comid, *anchor.Measure, 100)
			if err == nil {
				lines[0] = trimmed
			}
		}
		if trimEnd {
			last := len(lines) - 1
			trimmed, err := flowlines.Subrange(ctx, lines[last].Comid, 0, *result.StopMeasure)
			if err == nil {
				lines[last] = trimmed
			}
		}
	}

	if opts.ExcludeGeometry {
		for i := range lines {
			lines[i].GeoJSON = ""
		}
	}
	return lines, nil
}

// FeatureAlongNav is one feature of a crawler source that falls along a
// navigation, annotated with its mainstem URI.
type FeatureAlongNav struct {
	Feature     model.Feature
	MainstemURI string
}

// FeaturesAlong joins a NavResult's COMIDs against a source's features,
// ordering navigation order first and feature identifier second, and
// annotates each with its mainstem URI when one exists.
func FeaturesAlong(ctx context.Context, features lookup.FeatureLookup, mainstems lookup.MainstemLookup, source model.CrawlerSource, result model.NavResult) ([]FeatureAlongNav, error) {
	position := make(map[int64]int, len(result.Comids))
	for i, c := range result.Comids {
		position[c] = i
	}

	var out []FeatureAlongNav
	// Features are read source-wide and filtered against the navigation
	// set; a source with a COMID index backing the database query would
	// push this filter down, but the lookup plugin's contract is "by
	// source, paged" so filtering happens here against the (typically
	// small) navigation result.
	const pageSize = 1000
	for offset := 0; ; offset += pageSize {
		page, err := features.ListBySource(ctx, source, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, f := range page {
			if _, ok := position[f.Comid]; !ok {
				continue
			}
			var mainstemURI string
			if ms, found, err := mainstems.ByComid(ctx, f.Comid); err == nil && found {
				mainstemURI = ms.MainstemURI
			}
			out = append(out, FeatureAlongNav{Feature: f, MainstemURI: mainstemURI})
		}
		if len(page) < pageSize {
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := position[out[i].Feature.Comid], position[out[j].Feature.Comid]
		if pi != pj {
			return pi < pj
		}
		return out[i].Feature.Identifier < out[j].Feature.Identifier
	})
	return out, nil
}

// Basin aggregates the catchments of a NavResult's COMIDs into one
// multipolygon.
func Basin(ctx context.Context, basins lookup.BasinLookup, result model.NavResult, simplifyTolerance float64) (model.Basin, error) {
	return basins.Aggregate(ctx, result.Comids, simplifyTolerance)
}

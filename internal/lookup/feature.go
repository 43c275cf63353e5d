package lookup

import (
	"context"
	"fmt"

	"github.com/internetofwater/nldi-go/internal/db"
	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

const (
	minPageLimit     = 1
	maxPageLimit     = 10_000
	defaultPageLimit = 100
)

// FeatureLookup reads nldi_data.feature rows for one CrawlerSource.
// Column names come from the source's ColumnMapping, which is bound
// through the small allow-list in buildColumn — never spliced raw.
type FeatureLookup interface {
	ByIdentifier(ctx context.Context, source model.CrawlerSource, identifier string) (model.Feature, error)
	ListBySource(ctx context.Context, source model.CrawlerSource, limit, offset int) ([]model.Feature, error)
	NearestPoint(ctx context.Context, source model.CrawlerSource, lon, lat float64) (model.Feature, error)
}

type featurePlugin struct {
	gw *db.Gateway
}

func NewFeatureLookup(gw *db.Gateway) FeatureLookup {
	return &featurePlugin{gw: gw}
}

// allowedColumns are the only feature-table columns a ColumnMapping may
// name; anything else is rejected before it ever reaches a query string.
var allowedColumns = map[string]bool{
	"identifier": true, "name": true, "uri": true,
	"provider_id": true, "location_name": true, "location_uri": true,
	"monitoring_location_identifier": true, "huc_12": true,
}

func buildColumn(col, fallback string) string {
	if col == "" {
		return fallback
	}
	if !allowedColumns[col] {
		return fallback
	}
	return col
}

// selectColumns renders the per-source identifier/name/uri column list for
// the shared nldi_data.feature table, falling back to the default column
// names for any mapping a source leaves unset or names a disallowed column.
// geom is rendered as GeoJSON here rather than left for a later fetch, since
// every caller that projects a feature onto the wire needs its geometry.
func selectColumns(source model.CrawlerSource) string {
	return fmt.Sprintf("%s, %s, %s, comid, reachcode, measure, COALESCE(ST_AsGeoJSON(geom), '')",
		buildColumn(source.Columns.IdentifierColumn, "identifier"),
		buildColumn(source.Columns.NameColumn, "name"),
		buildColumn(source.Columns.URIColumn, "uri"),
	)
}

func scanFeature(row interface{ Scan(dest ...any) error }, sourceID int) (model.Feature, error) {
	f := model.Feature{SourceID: sourceID}
	err := row.Scan(&f.Identifier, &f.Name, &f.URI, &f.Comid, &f.ReachCode, &f.Measure, &f.GeoJSON)
	return f, err
}

func (p *featurePlugin) ByIdentifier(ctx context.Context, source model.CrawlerSource, identifier string) (model.Feature, error) {
	var f model.Feature
	query := fmt.Sprintf(`
SELECT %s
FROM nldi_data.feature
WHERE source_id = $1 AND %s = $2`, selectColumns(source), buildColumn(source.Columns.IdentifierColumn, "identifier"))
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		row := s.QueryRow(ctx, query, source.SourceID, identifier)
		var scanErr error
		f, scanErr = scanFeature(row, source.SourceID)
		return scanErr
	})
	if err != nil {
		return model.Feature{}, nldierrors.Wrap(nldierrors.NotFound, "feature not found", err)
	}
	return f, nil
}

func (p *featurePlugin) ListBySource(ctx context.Context, source model.CrawlerSource, limit, offset int) ([]model.Feature, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if limit < minPageLimit {
		return nil, nldierrors.New(nldierrors.InvalidInput, "limit must be >= 1")
	}
	if offset < 0 {
		return nil, nldierrors.New(nldierrors.InvalidInput, "offset must be >= 0")
	}

	query := fmt.Sprintf(`
SELECT %s
FROM nldi_data.feature
WHERE source_id = $1
ORDER BY %s ASC
LIMIT $2 OFFSET $3`, selectColumns(source), buildColumn(source.Columns.IdentifierColumn, "identifier"))

	var out []model.Feature
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		rows, err := s.Query(ctx, query, source.SourceID, limit, offset)
		if err != nil {
			return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "list features", err)
		}
		defer rows.Close()
		for rows.Next() {
			f, err := scanFeature(rows, source.SourceID)
			if err != nil {
				return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "scan feature", err)
			}
			out = append(out, f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Feature{}
	}
	return out, nil
}

// NearestPoint finds the feature of source closest to (lon,lat), ordered by
// the PostGIS <-> distance operator.
func (p *featurePlugin) NearestPoint(ctx context.Context, source model.CrawlerSource, lon, lat float64) (model.Feature, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM nldi_data.feature
WHERE source_id = $1
ORDER BY geom <-> ST_SetSRID(ST_MakePoint($2, $3), 4326)
LIMIT 1`, selectColumns(source))

	var f model.Feature
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		row := s.QueryRow(ctx, query, source.SourceID, lon, lat)
		var scanErr error
		f, scanErr = scanFeature(row, source.SourceID)
		return scanErr
	})
	if err != nil {
		return model.Feature{}, nldierrors.Wrap(nldierrors.NotFound, "no feature near point", err)
	}
	return f, nil
}

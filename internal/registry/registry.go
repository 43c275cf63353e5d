// Package registry makes the set of known crawler sources a first-class,
// process-wide value: loaded once at startup from nldi_data.crawler_source,
// cached for the process lifetime, and swapped atomically whenever align
// reconciles it against a declarative configuration list.
package registry

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/internetofwater/nldi-go/internal/db"
	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

// comidSource is the synthetic, always-resolvable source backing
// flowline-based navigation. It never comes from the database.
var comidSource = model.CrawlerSource{
	SourceID:    model.ComidSourceID,
	Suffix:      model.ComidSourceSuffix,
	SourceName:  "NHDPlus Flowline (COMID)",
	IngestType:  model.IngestReach,
	FeatureType: "flowline",
}

type snapshot struct {
	bySuffix map[string]model.CrawlerSource
	byID     map[int]model.CrawlerSource
	ordered  []model.CrawlerSource // stable by source_id
}

// Registry holds the current snapshot behind an atomic pointer so readers
// never observe a partially-rebuilt map, even while align is running.
type Registry struct {
	gw      *db.Gateway
	current atomic.Pointer[snapshot]
}

// New loads the registry from the database and returns it ready to serve
// Get/List. Fails with DatabaseUnavailable on a connectivity problem.
func New(ctx context.Context, gw *db.Gateway) (*Registry, error) {
	r := &Registry{gw: gw}
	if err := r.reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) reload(ctx context.Context) error {
	snap, err := loadSnapshot(ctx, r.gw)
	if err != nil {
		return err
	}
	r.current.Store(snap)
	return nil
}

func loadSnapshot(ctx context.Context, gw *db.Gateway) (*snapshot, error) {
	snap := &snapshot{
		bySuffix: map[string]model.CrawlerSource{foldSuffix(comidSource.Suffix): comidSource},
		byID:     map[int]model.CrawlerSource{comidSource.SourceID: comidSource},
		ordered:  []model.CrawlerSource{comidSource},
	}

	const q = `
SELECT source_id, source_suffix, source_name, source_uri,
       identifier_column, name_column, uri_column,
       ingest_type, feature_type
FROM nldi_data.crawler_source
ORDER BY source_id`

	err := db.WithSession(ctx, gw, func(ctx context.Context, s db.Session) error {
		rows, err := s.Query(ctx, q)
		if err != nil {
			return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "query crawler_source", err)
		}
		defer rows.Close()

		for rows.Next() {
			var cs model.CrawlerSource
			var ingest string
			if err := rows.Scan(
				&cs.SourceID, &cs.Suffix, &cs.SourceName, &cs.SourceURI,
				&cs.Columns.IdentifierColumn, &cs.Columns.NameColumn, &cs.Columns.URIColumn,
				&ingest, &cs.FeatureType,
			); err != nil {
				return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "scan crawler_source row", err)
			}
			cs.IngestType = model.IngestType(ingest)

			key := foldSuffix(cs.Suffix)
			snap.bySuffix[key] = cs
			snap.byID[cs.SourceID] = cs
			snap.ordered = append(snap.ordered, cs)
		}
		if err := rows.Err(); err != nil {
			return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "iterate crawler_source", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func foldSuffix(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Get resolves a source by its case-insensitive suffix.
func (r *Registry) Get(suffix string) (model.CrawlerSource, error) {
	snap := r.current.Load()
	cs, ok := snap.bySuffix[foldSuffix(suffix)]
	if !ok {
		return model.CrawlerSource{}, nldierrors.New(nldierrors.NotFound, "unknown source: "+suffix)
	}
	return cs, nil
}

// GetByID resolves a source by its numeric id.
func (r *Registry) GetByID(id int) (model.CrawlerSource, error) {
	snap := r.current.Load()
	cs, ok := snap.byID[id]
	if !ok {
		return model.CrawlerSource{}, nldierrors.New(nldierrors.NotFound, "unknown source id")
	}
	return cs, nil
}

// List returns every registered source, including the synthetic comid
// source, ordered by source_id.
func (r *Registry) List() []model.CrawlerSource {
	snap := r.current.Load()
	out := make([]model.CrawlerSource, len(snap.ordered))
	copy(out, snap.ordered)
	return out
}

// SourceConfig is one entry of the declarative sources: list align
// reconciles against. It mirrors config.SourceConfig field-for-field but
// lives here to keep the registry package independent of config's YAML
// tags.
type SourceConfig struct {
	SourceID         int
	Suffix           string
	SourceName       string
	SourceURI        string
	IdentifierColumn string
	NameColumn       string
	URIColumn        string
	IngestType       model.IngestType
	FeatureType      string
}

// Align reconciles nldi_data.crawler_source with wanted: missing rows are
// inserted, existing rows with changed fields are updated, and no row is
// ever deleted. Running Align twice with the same input is a no-op on the
// second run. On success the in-memory snapshot is reloaded and swapped in
// atomically.
func (r *Registry) Align(ctx context.Context, wanted []SourceConfig) error {
	const upsert = `
INSERT INTO nldi_data.crawler_source
    (source_id, source_suffix, source_name, source_uri,
     identifier_column, name_column, uri_column, ingest_type, feature_type)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (source_id) DO UPDATE SET
    source_suffix     = EXCLUDED.source_suffix,
    source_name       = EXCLUDED.source_name,
    source_uri        = EXCLUDED.source_uri,
    identifier_column = EXCLUDED.identifier_column,
    name_column       = EXCLUDED.name_column,
    uri_column        = EXCLUDED.uri_column,
    ingest_type       = EXCLUDED.ingest_type,
    feature_type      = EXCLUDED.feature_type`

	err := db.WithSession(ctx, r.gw, func(ctx context.Context, s db.Session) error {
		for _, w := range wanted {
			if w.SourceID == model.ComidSourceID {
				continue // the synthetic source is never written to the table
			}
			if _, err := s.Exec(ctx, upsert,
				w.SourceID, w.Suffix, w.SourceName, w.SourceURI,
				w.IdentifierColumn, w.NameColumn, w.URIColumn,
				string(w.IngestType), w.FeatureType,
			); err != nil {
				return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "upsert crawler_source", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.reload(ctx)
}

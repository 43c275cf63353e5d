// Package lookup contains one narrow, read-only query object per logical
// table: CrawlerSource, Feature, Flowline, Catchment, Mainstem, Basin. Each
// plugin exposes a small capability interface rather than inheriting from a
// shared base type — composition over inheritance.
package lookup

import (
	"context"

	"github.com/internetofwater/nldi-go/internal/db"
	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

// CrawlerSourceLookup reads nldi_data.crawler_source directly, bypassing
// the registry's cache. The registry is the fast path for request
// handling; this plugin exists for administrative and diagnostic callers
// that need a guaranteed-fresh read.
type CrawlerSourceLookup interface {
	BySuffix(ctx context.Context, suffix string) (model.CrawlerSource, error)
	ByID(ctx context.Context, id int) (model.CrawlerSource, error)
	List(ctx context.Context) ([]model.CrawlerSource, error)
}

type crawlerSourcePlugin struct {
	gw *db.Gateway
}

func NewCrawlerSourceLookup(gw *db.Gateway) CrawlerSourceLookup {
	return &crawlerSourcePlugin{gw: gw}
}

const crawlerSourceColumns = `source_id, source_suffix, source_name, source_uri,
       identifier_column, name_column, uri_column, ingest_type, feature_type`

func scanCrawlerSource(row interface {
	Scan(dest ...any) error
}) (model.CrawlerSource, error) {
	var cs model.CrawlerSource
	var ingest string
	err := row.Scan(
		&cs.SourceID, &cs.Suffix, &cs.SourceName, &cs.SourceURI,
		&cs.Columns.IdentifierColumn, &cs.Columns.NameColumn, &cs.Columns.URIColumn,
		&ingest, &cs.FeatureType,
	)
	cs.IngestType = model.IngestType(ingest)
	return cs, err
}

func (p *crawlerSourcePlugin) BySuffix(ctx context.Context, suffix string) (model.CrawlerSource, error) {
	var cs model.CrawlerSource
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		row := s.QueryRow(ctx, "SELECT "+crawlerSourceColumns+" FROM nldi_data.crawler_source WHERE lower(source_suffix) = lower($1)", suffix)
		var scanErr error
		cs, scanErr = scanCrawlerSource(row)
		return scanErr
	})
	if err != nil {
		return model.CrawlerSource{}, nldierrors.Wrap(nldierrors.NotFound, "source "+suffix+" not found", err)
	}
	return cs, nil
}

func (p *crawlerSourcePlugin) ByID(ctx context.Context, id int) (model.CrawlerSource, error) {
	var cs model.CrawlerSource
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		row := s.QueryRow(ctx, "SELECT "+crawlerSourceColumns+" FROM nldi_data.crawler_source WHERE source_id = $1", id)
		var scanErr error
		cs, scanErr = scanCrawlerSource(row)
		return scanErr
	})
	if err != nil {
		return model.CrawlerSource{}, nldierrors.Wrap(nldierrors.NotFound, "source id not found", err)
	}
	return cs, nil
}

func (p *crawlerSourcePlugin) List(ctx context.Context) ([]model.CrawlerSource, error) {
	var out []model.CrawlerSource
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		rows, err := s.Query(ctx, "SELECT "+crawlerSourceColumns+" FROM nldi_data.crawler_source ORDER BY source_id")
		if err != nil {
			return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "list crawler_source", err)
		}
		defer rows.Close()
		for rows.Next() {
			cs, err := scanCrawlerSource(rows)
			if err != nil {
				return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "scan crawler_source", err)
			}
			out = append(out, cs)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

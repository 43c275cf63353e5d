package lookup

import (
	"context"

	"github.com/internetofwater/nldi-go/internal/db"
	"github.com/internetofwater/nldi-go/internal/model"
)

// MainstemLookup maps a COMID to its canonical mainstem URI. A miss is not
// surfaced as an error to callers: it means "this reach has no mainstem",
// which the response layer renders as a null annotation, not a failure.
type MainstemLookup interface {
	ByComid(ctx context.Context, comid int64) (model.Mainstem, bool, error)
}

type mainstemPlugin struct {
	gw *db.Gateway
}

func NewMainstemLookup(gw *db.Gateway) MainstemLookup {
	return &mainstemPlugin{gw: gw}
}

func (p *mainstemPlugin) ByComid(ctx context.Context, comid int64) (model.Mainstem, bool, error) {
	var ms model.Mainstem
	found := false
	err := db.WithSession(ctx, p.gw, func(ctx context.Context, s db.Session) error {
		row := s.QueryRow(ctx, `
SELECT m.comid, m.mainstem_uri
FROM nhdplus.mainstem_lookup m
JOIN nhdplus.flowline f ON f.mainstem_id = m.mainstem_id
WHERE f.comid = $1`, comid)
		err := row.Scan(&ms.Comid, &ms.MainstemURI)
		if err != nil {
			return nil // treated as "no mainstem", not propagated
		}
		found = true
		return nil
	})
	if err != nil {
		return model.Mainstem{}, false, err
	}
	return ms, found, nil
}

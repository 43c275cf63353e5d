package registry

import (
	"testing"

	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

func emptySnapshot() *snapshot {
	return &snapshot{
		bySuffix: map[string]model.CrawlerSource{foldSuffix(comidSource.Suffix): comidSource},
		byID:     map[int]model.CrawlerSource{comidSource.SourceID: comidSource},
		ordered:  []model.CrawlerSource{comidSource},
	}
}

func TestRegistry_ComidSourceAlwaysResolvable(t *testing.T) {
	r := &Registry{}
	r.current.Store(emptySnapshot())

	cs, err := r.Get("COMID")
	if err != nil {
		t.Fatalf("Get(COMID) unexpected error: %v", err)
	}
	if cs.SourceID != model.ComidSourceID {
		t.Fatalf("got source_id %d, want %d", cs.SourceID, model.ComidSourceID)
	}
}

func TestRegistry_GetUnknownSuffixIsNotFound(t *testing.T) {
	r := &Registry{}
	r.current.Store(emptySnapshot())

	_, err := r.Get("nope")
	if !nldierrors.Is(err, nldierrors.NotFound) {
		t.Fatalf("got %v, want NotFound", err)
	}
}

func TestRegistry_ListOrderedBySourceID(t *testing.T) {
	snap := emptySnapshot()
	huc := model.CrawlerSource{SourceID: 5, Suffix: "huc12pp"}
	nwis := model.CrawlerSource{SourceID: 2, Suffix: "nwissite"}
	snap.ordered = append(snap.ordered, nwis, huc)
	snap.bySuffix[foldSuffix(nwis.Suffix)] = nwis
	snap.bySuffix[foldSuffix(huc.Suffix)] = huc
	snap.byID[nwis.SourceID] = nwis
	snap.byID[huc.SourceID] = huc

	r := &Registry{}
	r.current.Store(snap)

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("got %d sources, want 3", len(list))
	}
	// comid (0) inserted first by construction; order beyond that reflects
	// insertion, which align/loadSnapshot always performs by source_id ASC.
	if list[0].SourceID != model.ComidSourceID {
		t.Fatalf("list[0].SourceID = %d, want comid source first", list[0].SourceID)
	}
	if list[1].SourceID != 2 || list[2].SourceID != 5 {
		t.Fatalf("got source ids %d, %d after comid, want 2, 5", list[1].SourceID, list[2].SourceID)
	}
}

func TestRegistry_GetByID(t *testing.T) {
	r := &Registry{}
	r.current.Store(emptySnapshot())

	cs, err := r.GetByID(model.ComidSourceID)
	if err != nil {
		t.Fatalf("GetByID unexpected error: %v", err)
	}
	if cs.Suffix != model.ComidSourceSuffix {
		t.Fatalf("got suffix %q, want %q", cs.Suffix, model.ComidSourceSuffix)
	}

	if _, err := r.GetByID(999); !nldierrors.Is(err, nldierrors.NotFound) {
		t.Fatalf("got %v, want NotFound", err)
	}
}

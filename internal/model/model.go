// Package model defines the domain types shared across the NLDI lookup
// plugins, navigation engine, and response shaping — the persistent
// entities read out of PostGIS, plus the ephemeral per-request Anchor and
// NavResult values.
package model

// IngestType distinguishes how a CrawlerSource's features are anchored to
// the hydrography network.
type IngestType string

const (
	IngestPoint IngestType = "point"
	IngestReach IngestType = "reach"
)

// ComidSourceID is the reserved, always-resolvable synthetic source whose
// "features" are flowlines themselves.
const ComidSourceID = 0

// ComidSourceSuffix is the URL suffix of the synthetic comid source.
const ComidSourceSuffix = "comid"

// ColumnMapping names the columns of the shared nldi_data.feature table
// that carry a particular CrawlerSource's identifier, name, and URI. Column
// names are checked against a small allow-list (see lookup/feature.go)
// before they are written into SQL text; a name outside it is replaced by
// the default column.
type ColumnMapping struct {
	IdentifierColumn string
	NameColumn       string
	URIColumn        string
}

// CrawlerSource identifies an external dataset the NLDI can report on.
type CrawlerSource struct {
	SourceID    int
	Suffix      string
	SourceName  string
	SourceURI   string
	Columns     ColumnMapping
	IngestType  IngestType
	FeatureType string
}

// IsComid reports whether this is the synthetic flowline-backed source.
func (s CrawlerSource) IsComid() bool { return s.SourceID == ComidSourceID }

// Feature is a row of the shared nldi_data.feature table belonging to
// exactly one CrawlerSource.
type Feature struct {
	SourceID   int
	Identifier string
	Name       string
	URI        string
	Comid      int64
	ReachCode  string
	// Measure is nil for point-ingested features.
	Measure *float64
	// GeoJSON is the feature's own point geometry, pre-rendered with
	// ST_AsGeoJSON. Point-ingested sources always carry one; reach-ingested
	// sources carry one only when the crawler captured an exact location
	// rather than just a (reachcode, measure) along the flowline.
	GeoJSON string
}

// Flowline is an NHDPlus reach.
type Flowline struct {
	Comid      int64
	GeoJSON    string // LINESTRING geometry, WGS84, pre-rendered as GeoJSON geometry JSON
	ReachCode  string
	FromNode   int64
	ToNode     int64
	HydroSeq   int64
	PathLength float64
	LengthKM   float64
	MainstemID *int64
}

// Catchment is the polygon draining to a specific flowline.
type Catchment struct {
	FeatureID int64 // == Flowline.Comid
	GeoJSON   string
}

// Basin is the aggregated polygon of all catchments upstream of an anchor.
// It is computed on demand and never persisted.
type Basin struct {
	GeoJSON string // MultiPolygon geometry JSON
}

// Mainstem maps a COMID to its canonical mainstem URI.
type Mainstem struct {
	Comid       int64
	MainstemURI string
}

// AnchorSourceKind records which request variant produced an Anchor, purely
// for diagnostics/logging; resolution logic never branches on it after the
// anchor is built.
type AnchorSourceKind string

const (
	AnchorFromComid       AnchorSourceKind = "comid"
	AnchorFromFeature     AnchorSourceKind = "feature"
	AnchorFromCoordinates AnchorSourceKind = "coordinates"
	AnchorFromHydrolocation AnchorSourceKind = "hydrolocation"
)

// Anchor is the ephemeral value derived from a request: a COMID, an
// optional fractional measure along that reach, and an optional trim hint
// geometry from a splitCatchment call. It lives only for the duration of
// the request that constructed it.
type Anchor struct {
	Comid      int64
	Measure    *float64
	Source     AnchorSourceKind
	TrimHint   *string // GeoJSON geometry, set only when splitCatchment produced one
}

// NavMode is a navigation.navigate() mode.
type NavMode string

const (
	NavUpstreamMain         NavMode = "UM"
	NavUpstreamTributaries  NavMode = "UT"
	NavDownstreamMain       NavMode = "DM"
	NavDownstreamDiversions NavMode = "DD"
	NavPointToPoint         NavMode = "PP"
)

// AcceptsStop reports whether mode accepts a stop_comid parameter.
func (m NavMode) AcceptsStop() bool {
	return m == NavDownstreamMain || m == NavPointToPoint
}

// Valid reports whether m is one of the five navigation modes.
func (m NavMode) Valid() bool {
	switch m {
	case NavUpstreamMain, NavUpstreamTributaries, NavDownstreamMain, NavDownstreamDiversions, NavPointToPoint:
		return true
	default:
		return false
	}
}

// NavResult is the ordered, deduplicated sequence of COMIDs the navigation
// engine produced for one (mode, anchor, distance_km, stop_comid?) tuple.
// Ordering is whatever the database function returned and must be
// preserved end-to-end into the emitted FeatureCollection.
type NavResult struct {
	Comids []int64
	// TrimFirst/TrimLast indicate whether the first/last flowline in Comids
	// must be clipped against the anchor/stop measure before being emitted.
	TrimFirst bool
	TrimLast  bool
	// StopMeasure is the fractional measure along the last flowline where a
	// PP navigation actually stops, when the caller supplied one. Nil means
	// the last flowline is emitted at full length.
	StopMeasure *float64
}

// Dedup returns a copy of comids with duplicates removed, preserving the
// first occurrence of each value — the navigation engine's tie-break for
// navigation-function output that revisits a COMID.
func Dedup(comids []int64) []int64 {
	seen := make(map[int64]struct{}, len(comids))
	out := make([]int64, 0, len(comids))
	for _, c := range comids {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

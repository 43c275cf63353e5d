// Package router builds the chi route tree for the NLDI HTTP surface and
// maps typed domain errors onto status codes at a single boundary.
package router

import (
	"log/slog"

	"github.com/internetofwater/nldi-go/internal/anchor"
	"github.com/internetofwater/nldi-go/internal/core/config"
	"github.com/internetofwater/nldi-go/internal/lookup"
	"github.com/internetofwater/nldi-go/internal/navigation"
	"github.com/internetofwater/nldi-go/internal/registry"
)

// App is the explicit application context every handler closes over —
// config, the source registry, lookup plugins, the anchor resolver, and
// the navigation engine — passed in at construction rather than reached
// for as process-wide singletons.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Registry   *registry.Registry
	Flowlines  lookup.FlowlineLookup
	Features   lookup.FeatureLookup
	Catchments lookup.CatchmentLookup
	Mainstems  lookup.MainstemLookup
	Basins     lookup.BasinLookup
	Anchors    *anchor.Resolver
	Nav        *navigation.Engine
}

// BaseURL renders the absolute URL prefix every HATEOAS link is built
// from, e.g. "https://labs.waterdata.usgs.gov/api/nldi".
func (a *App) BaseURL() string {
	return a.Config.Server.URL + a.Config.Server.Path
}

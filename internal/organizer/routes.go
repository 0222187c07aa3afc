package organizer

import (
	"fmt"

	"shelver/internal/plan"
)

// Route names the planner a category is dispatched to.
type Route uint8

const (
	routeUnset Route = iota
	RouteGrouping
	RouteMovie
	RouteSeries
	RouteUnsupported
)

func (r Route) String() string {
	switch r {
	case RouteGrouping:
		return "grouping"
	case RouteMovie:
		return "movie"
	case RouteSeries:
		return "series"
	case RouteUnsupported:
		return "unsupported"
	default:
		return "unset"
	}
}

// routes maps every category to its planner. Porn is recognized but has no
// planner.
var routes = [...]Route{
	plan.Movie:        RouteMovie,
	plan.TVSeries:     RouteSeries,
	plan.AnimTVSeries: RouteSeries,
	plan.AnimMovie:    RouteMovie,
	plan.Photobook:    RouteGrouping,
	plan.Porn:         RouteUnsupported,
	plan.AudioBook:    RouteGrouping,
	plan.Book:         RouteGrouping,
	plan.Music:        RouteGrouping,
	plan.MusicVideo:   RouteGrouping,
}

// The array length must equal the category count. This only catches
// categories added at the end of the enumeration; a category left out of the
// middle is caught by checkRoutes at init.
var (
	_ [len(routes) - int(plan.CategoryCount)]struct{}
	_ [int(plan.CategoryCount) - len(routes)]struct{}
)

func init() {
	if err := checkRoutes(routes[:]); err != nil {
		panic(err)
	}
}

func checkRoutes(table []Route) error {
	for i, r := range table {
		if r == routeUnset {
			return fmt.Errorf("organizer: category %s has no route", plan.Category(i))
		}
	}
	return nil
}

// RouteFor returns the planner route for a category.
func RouteFor(category plan.Category) Route {
	if !category.Valid() {
		return routeUnset
	}
	return routes[category]
}

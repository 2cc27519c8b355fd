package router

import "strings"

// RouteKind names a top-level view.
type RouteKind int

const (
	RouteQuestionnaire RouteKind = iota
	RouteResult
	RouteNotFound
	// RouteHistory has no path; it is only opened from inside the app.
	RouteHistory
)

// NotFoundPath is the canonical not-found location.
const NotFoundPath = "/not_found"

// Route is a resolved location. PartnerID binds a questionnaire to a shared
// result; ResultID names the result to show.
type Route struct {
	Kind      RouteKind
	ResultID  string
	PartnerID string
}

// Resolve maps a path to a route: "/" is the questionnaire, "/{id}" a
// result, and "/not_found" or any deeper path the not-found view.
func Resolve(path string) Route {
	trimmed := strings.Trim(path, "/")
	switch {
	case trimmed == "":
		return Route{Kind: RouteQuestionnaire}
	case "/"+trimmed == NotFoundPath, strings.Contains(trimmed, "/"):
		return Route{Kind: RouteNotFound}
	default:
		return Route{Kind: RouteResult, ResultID: trimmed}
	}
}

// Path is the inverse of Resolve.
func (r Route) Path() string {
	switch r.Kind {
	case RouteResult:
		return "/" + r.ResultID
	case RouteNotFound:
		return NotFoundPath
	case RouteHistory:
		return ""
	default:
		return "/"
	}
}

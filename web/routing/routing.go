// Package routing maps console paths to the roles allowed to open them and
// decides, per request, whether to render, redirect or reject.
package routing

import (
	"sort"
	"strings"

	"github.com/shyamgroup/backoffice/web/resource"
	"github.com/shyamgroup/backoffice/web/session"
)

const (
	LoginPath   = "/login"
	LandingPath = "/"
	// ResourcePrefix is the path prefix of every resource page.
	ResourcePrefix = "/r/"
)

// Page names the handler family for a route.
type Page string

const (
	PageLogin          Page = "login"
	PageIndex          Page = "index"
	PageResource       Page = "resource"
	PageCreateUploader Page = "create-uploader"
	PageManageUsers    Page = "manage-users"
	PageActivityLogs   Page = "activity-logs"
)

// Route is one entry of the static table. No roles means public.
type Route struct {
	Path  string
	Roles []string
	Page  Page
	Title string
}

func (r *Route) Public() bool {
	return len(r.Roles) == 0
}

// Table is an immutable path table.
type Table struct {
	routes []Route
}

// NewTable copies routes, longest path first so Match picks the most specific.
func NewTable(routes []Route) *Table {
	rs := append([]Route(nil), routes...)
	sort.SliceStable(rs, func(i, j int) bool { return len(rs[i].Path) > len(rs[j].Path) })
	return &Table{routes: rs}
}

// Routes returns the table in declaration-independent match order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Match returns the route owning path: an exact match, or the longest route
// path that is a segment prefix of it. The landing path only matches exactly.
func (t *Table) Match(path string) (*Route, bool) {
	if path == "" {
		path = LandingPath
	}
	for i := range t.routes {
		r := &t.routes[i]
		if path == r.Path {
			return r, true
		}
		if r.Path != LandingPath && strings.HasPrefix(path, r.Path+"/") {
			return r, true
		}
	}
	return nil, false
}

// Gate is what a routing decision needs to know about the session.
type Gate interface {
	IsAuthenticated() bool
	HasRole(allowed ...string) bool
}

// Outcome is the result of a routing decision.
type Outcome int

const (
	Render Outcome = iota
	Redirect
	NotFound
	// Forbidden is used when the landing page itself rejects the role, where
	// a redirect would loop.
	Forbidden
)

type Decision struct {
	Outcome  Outcome
	Location string
	Route    *Route
}

// Decide applies the table to path for gate.
func (t *Table) Decide(gate Gate, path string) Decision {
	r, ok := t.Match(path)
	if !ok {
		return Decision{Outcome: NotFound}
	}
	if r.Public() {
		return Decision{Outcome: Render, Route: r}
	}
	if !gate.IsAuthenticated() {
		return Decision{Outcome: Redirect, Location: LoginPath, Route: r}
	}
	if !gate.HasRole(r.Roles...) {
		if r.Path == LandingPath {
			return Decision{Outcome: Forbidden, Route: r}
		}
		return Decision{Outcome: Redirect, Location: LandingPath, Route: r}
	}
	return Decision{Outcome: Render, Route: r}
}

var (
	staff     = []string{session.RoleAdmin, session.RoleUploader}
	adminOnly = []string{session.RoleAdmin}
)

// ResourcePath is the console path of a resource page.
func ResourcePath(name string) string {
	return ResourcePrefix + name
}

// DefaultTable is the console's route table: the login page, the landing
// page, one page per catalog resource and the admin pages.
func DefaultTable(catalog []*resource.Schema) *Table {
	routes := []Route{
		{Path: LoginPath, Page: PageLogin, Title: "Login"},
		{Path: "/logout", Page: PageLogin, Title: "Logout"},
		{Path: LandingPath, Roles: staff, Page: PageIndex, Title: "Dashboard"},
		{Path: "/create-uploader", Roles: adminOnly, Page: PageCreateUploader, Title: "Create Uploader"},
		{Path: "/manage-users", Roles: adminOnly, Page: PageManageUsers, Title: "Manage Users"},
		{Path: "/activity-logs", Roles: adminOnly, Page: PageActivityLogs, Title: "Activity Logs"},
	}
	for _, s := range catalog {
		routes = append(routes, Route{Path: ResourcePath(s.Name), Roles: staff, Page: PageResource, Title: s.Title})
	}
	return NewTable(routes)
}

package routing

import (
	"testing"

	"github.com/shyamgroup/backoffice/web/resource"
	"github.com/shyamgroup/backoffice/web/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGate struct {
	role string
}

func (g fakeGate) IsAuthenticated() bool {
	return g.role != ""
}

func (g fakeGate) HasRole(allowed ...string) bool {
	for _, r := range allowed {
		if r == g.role {
			return true
		}
	}
	return false
}

func TestDecide(t *testing.T) {
	table := DefaultTable(resource.All())

	tests := []struct {
		name     string
		role     string
		path     string
		outcome  Outcome
		location string
	}{
		{"anonymous on login", "", "/login", Render, ""},
		{"anonymous on landing", "", "/", Redirect, LoginPath},
		{"anonymous on resource", "", "/r/disclosures", Redirect, LoginPath},
		{"anonymous on admin page", "", "/manage-users", Redirect, LoginPath},
		{"uploader on landing", session.RoleUploader, "/", Render, ""},
		{"uploader on resource", session.RoleUploader, "/r/stock-exchange", Render, ""},
		{"uploader on resource subpath", session.RoleUploader, "/r/jobs/edit/1", Render, ""},
		{"uploader on admin page", session.RoleUploader, "/manage-users", Redirect, LandingPath},
		{"uploader on admin subpath", session.RoleUploader, "/manage-users/1/delete", Redirect, LandingPath},
		{"admin on admin page", session.RoleAdmin, "/activity-logs", Render, ""},
		{"admin on create uploader", session.RoleAdmin, "/create-uploader", Render, ""},
		{"unknown role on landing", "guest", "/", Forbidden, ""},
		{"unknown role on resource", "guest", "/r/awards", Redirect, LandingPath},
		{"unknown resource", session.RoleAdmin, "/r/nope", NotFound, ""},
		{"unknown page", session.RoleAdmin, "/nope", NotFound, ""},
		{"prefix without separator", session.RoleAdmin, "/manage-usersx", NotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := table.Decide(fakeGate{role: tt.role}, tt.path)
			assert.Equal(t, tt.outcome, d.Outcome)
			assert.Equal(t, tt.location, d.Location)
		})
	}
}

func TestMatchPrefersLongestPath(t *testing.T) {
	table := NewTable([]Route{
		{Path: "/", Page: PageIndex},
		{Path: "/r/jobs", Page: PageResource, Title: "Jobs"},
		{Path: "/r/jobs/archive", Page: PageResource, Title: "Archive"},
	})

	r, ok := table.Match("/r/jobs/archive/2")
	require.True(t, ok)
	assert.Equal(t, "Archive", r.Title)

	r, ok = table.Match("/r/jobs/1")
	require.True(t, ok)
	assert.Equal(t, "Jobs", r.Title)

	r, ok = table.Match("")
	require.True(t, ok)
	assert.Equal(t, PageIndex, r.Page)

	_, ok = table.Match("/other")
	assert.False(t, ok)
}

func TestDefaultTableCoversCatalog(t *testing.T) {
	table := DefaultTable(resource.All())
	for _, s := range resource.All() {
		r, ok := table.Match(ResourcePath(s.Name))
		require.True(t, ok, s.Name)
		assert.Equal(t, PageResource, r.Page)
		assert.Equal(t, s.Title, r.Title)
		assert.ElementsMatch(t, []string{session.RoleAdmin, session.RoleUploader}, r.Roles)
	}
}

package resource

import (
	"time"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/caching"
	"github.com/shyamgroup/backoffice/logger"
)

// Registry keeps one Controller per (session scope, resource, option) so that
// form drafts, edit sessions and messages survive the redirect after a POST.
type Registry struct {
	store  *caching.Cache
	client *backend.Client
}

// NewRegistry builds a registry whose idle controllers expire after ttl.
func NewRegistry(client *backend.Client, ttl time.Duration) (*Registry, error) {
	store := caching.NewCache(ttl)
	if err := store.Init(); err != nil {
		return nil, err
	}
	return &Registry{store: store, client: client}, nil
}

func key(scope, resource, option string) string {
	return scope + "|" + resource + "|" + option
}

// Controller returns the controller for scope and schema, creating it on
// first use. For scoped schemas each option gets its own instance.
func (r *Registry) Controller(scope string, schema *Schema, option string) *Controller {
	v := r.store.GetOrAdd(key(scope, schema.Name, option), func() any {
		logger.Debugf("new controller for %s/%s", schema.Name, option)
		return NewController(schema, r.client, option)
	})
	return v.(*Controller)
}

// Drop forgets every controller of scope. Called on logout.
func (r *Registry) Drop(scope string) {
	if scope == "" {
		return
	}
	if n := r.store.DeletePrefix(scope + "|"); n > 0 {
		logger.Debugf("dropped %d controllers", n)
	}
}

func (r *Registry) Len() int {
	return r.store.Len()
}

func (r *Registry) Close() error {
	return r.store.Flush()
}

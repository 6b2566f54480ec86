package resource

import (
	"testing"
	"time"

	"github.com/shyamgroup/backoffice/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(backend.NewClient("http://127.0.0.1:1"), time.Minute)
	require.NoError(t, err)
	defer r.Close()

	disclosures, _ := Lookup("disclosures")
	stock, _ := Lookup("stock-exchange")

	a := r.Controller("alice", disclosures, "")
	assert.Same(t, a, r.Controller("alice", disclosures, ""))
	assert.NotSame(t, a, r.Controller("bob", disclosures, ""))

	agm := r.Controller("alice", stock, StockOptions[0])
	other := r.Controller("alice", stock, StockOptions[1])
	assert.NotSame(t, agm, other)
	assert.Equal(t, StockOptions[1], other.Option())
	assert.Equal(t, 4, r.Len())

	r.Drop("alice")
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, a, r.Controller("alice", disclosures, ""))

	r.Drop("")
	assert.Equal(t, 2, r.Len())
}

// Package job provides scheduled background jobs for the console.
package job

import (
	"context"
	"time"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/util/common"

	"go.uber.org/atomic"
)

const pingTimeout = 5 * time.Second

// CheckBackendJob pings the content backend and logs availability changes.
// It only observes; no controller state is touched.
type CheckBackendJob struct {
	client *backend.Client
	up     atomic.Bool
	known  atomic.Bool
}

func NewCheckBackendJob(client *backend.Client) *CheckBackendJob {
	return &CheckBackendJob{client: client}
}

// Run executes one reachability check.
func (j *CheckBackendJob) Run() {
	defer common.Recover("backend check job")

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	err := j.client.Ping(ctx)
	up := err == nil
	was := j.up.Swap(up)
	first := !j.known.Swap(true)

	switch {
	case first && up:
		logger.Infof("backend %s is reachable", j.client.Base())
	case !up && (first || was):
		logger.Warningf("backend %s is unreachable: %v", j.client.Base(), err)
	case up && !was:
		logger.Infof("backend %s is reachable again", j.client.Base())
	default:
		logger.Debugf("backend %s up=%v", j.client.Base(), up)
	}
}

// Up reports the result of the last check; false before the first one.
func (j *CheckBackendJob) Up() bool {
	return j.up.Load()
}

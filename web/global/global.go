// Package global exposes the running web server to packages that cannot
// receive it by injection.
package global

import (
	"github.com/robfig/cron/v3"
)

var webServer WebServer

type WebServer interface {
	GetCron() *cron.Cron
	// BackendUp reports the last result of the backend reachability check.
	BackendUp() bool
}

func SetWebServer(s WebServer) {
	webServer = s
}

func GetWebServer() WebServer {
	return webServer
}

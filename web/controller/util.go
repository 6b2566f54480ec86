package controller

import (
	"net"
	"net/http"
	"strings"

	"github.com/shyamgroup/backoffice/config"
	"github.com/shyamgroup/backoffice/web/entity"
	"github.com/shyamgroup/backoffice/web/middleware"
	"github.com/shyamgroup/backoffice/web/resource"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return strings.TrimSpace(ips[0])
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// messageJson answers an XHR submission with the controller's message.
func messageJson(c *gin.Context, msg *resource.Message, obj any) {
	m := entity.Msg{Success: true, Obj: obj}
	if msg != nil {
		m.Success = msg.Kind != resource.MessageError
		m.Msg = msg.Text
	}
	c.JSON(http.StatusOK, m)
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// html renders an HTML template with the provided data and title.
func html(c *gin.Context, name string, title string, data gin.H) {
	htmlStatus(c, http.StatusOK, name, title, data)
}

func htmlStatus(c *gin.Context, status int, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["request_uri"] = c.Request.RequestURI
	gate := middleware.GateFrom(c)
	if gate != nil {
		data["session"] = gate.Session()
	}
	data["menu"] = menu(gate)
	if _, ok := data["message"]; !ok {
		if msg := takeFlash(c); msg != nil {
			data["message"] = msg
		}
	}
	c.HTML(status, name, getContext(data))
}

// getContext adds version and other context data to the provided gin.H.
func getContext(h gin.H) gin.H {
	a := gin.H{
		"cur_ver":  config.GetVersion(),
		"app_name": config.GetName(),
	}
	for key, value := range h {
		a[key] = value
	}
	return a
}

// isAjax checks if the request is an AJAX request.
func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

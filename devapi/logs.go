package devapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shyamgroup/backoffice/database/model"
	"github.com/shyamgroup/backoffice/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxLogsLimit = 1000

// audit records every state-changing request in the activity log once the
// handler has run. Reads, file downloads and the log endpoints are skipped.
func (s *Server) audit() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if c.Request.Method == http.MethodGet || strings.HasPrefix(path, "/logs") {
			return
		}
		entry := &model.ActivityLog{
			ID:         uuid.NewString(),
			Email:      c.GetString(ctxEmail),
			Action:     actionOf(c.Request.Method, path),
			Method:     c.Request.Method,
			Route:      path,
			Status:     c.Writer.Status(),
			IP:         c.ClientIP(),
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err := s.db.Create(entry).Error; err != nil {
			logger.Warning("devapi: failed to write activity log:", err)
		}
	}
}

func actionOf(method, path string) string {
	switch {
	case strings.HasSuffix(path, "/auth/login"):
		return "LOGIN"
	case method == http.MethodDelete:
		return "DELETE"
	case method == http.MethodPut, method == http.MethodPatch:
		return "UPDATE"
	case method == http.MethodPost:
		return "CREATE"
	}
	return method
}

func (s *Server) listLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLogsLimit {
		limit = 200
	}

	var total int64
	s.db.Model(&model.ActivityLog{}).Count(&total)

	var entries []model.ActivityLog
	err := s.db.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&entries).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	data := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		data = append(data, gin.H{
			"_id":       e.ID,
			"email":     e.Email,
			"action":    e.Action,
			"method":    e.Method,
			"route":     e.Route,
			"status":    e.Status,
			"ip":        e.IP,
			"createdAt": e.CreatedAt.UTC().Format(time.RFC3339),
			"metadata":  gin.H{"durationMs": e.DurationMs},
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "page": page, "limit": limit, "total": total})
}

func (s *Server) deleteLog(c *gin.Context) {
	res := s.db.Delete(&model.ActivityLog{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Log not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Log deleted"})
}

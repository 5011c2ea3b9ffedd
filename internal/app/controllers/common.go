package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/domain/models"
)

// SuccessResponse is the envelope of successful answers
type SuccessResponse struct {
	Code    int         `json:"code" example:"100000"`
	Message string      `json:"message" example:"Erfolgreich"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the envelope of failed answers
type ErrorResponse struct {
	Code    int         `json:"code" example:"103001"`
	Message string      `json:"message" example:"Statuswechsel ist nicht erlaubt"`
	Data    interface{} `json:"data"`
}

// ListResponse is the data of paged list answers
type ListResponse struct {
	Items      interface{}             `json:"items"`
	Pagination models.PaginationResult `json:"pagination"`
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pagination reads page and page_size from the query
func pagination(c *gin.Context) models.PaginationQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	q := models.PaginationQuery{Page: page, PageSize: pageSize}
	q.Normalize()
	return q
}

func newList(items interface{}, total int64, q models.PaginationQuery) ListResponse {
	return ListResponse{Items: items, Pagination: models.NewPaginationResult(total, q)}
}

// parseSince reads an optional RFC3339 timestamp; ok is false for malformed input
func parseSince(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("since")
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

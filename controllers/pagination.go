package controllers

import (
	"strconv"

	"farmconnect/models"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// paginationParams reads page and limit. ok is false when the caller asked
// for neither, in which case the whole list is returned.
func paginationParams(c *gin.Context, defaultLimit int) (page, limit int, ok bool) {
	rawPage, hasPage := c.GetQuery("page")
	rawLimit, hasLimit := c.GetQuery("limit")
	if !hasPage && !hasLimit {
		return 0, 0, false
	}

	page, _ = strconv.Atoi(rawPage)
	limit, _ = strconv.Atoi(rawLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit, true
}

// paginate slices items to the requested page and builds the envelope.
func paginate[T any](message string, items []T, page, limit int) models.PaginationResponse {
	total := len(items)
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	start := total
	if page > 0 && limit > 0 && page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := min(start+limit, total)

	return models.PaginationResponse{
		Success: true,
		Message: message,
		Data:    items[start:end],
		Meta: models.MetaData{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}
}

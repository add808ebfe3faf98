// Package handlers contains the gin request handlers of the discovery API.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/common"
)

// ErrorResponse is the standard error body returned by every endpoint.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeError maps an application error to its HTTP status via the error-code
// table and writes the structured body.  Unknown error types surface as 500
// with the internal code.
func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	resp := ErrorResponse{
		Code:    code.String(),
		Message: err.Error(),
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(errors.HTTPStatusForCode(code), resp)
}

// parsePagination reads page and page_size query parameters, clamping to
// sane bounds.
func parsePagination(c *gin.Context) common.Pagination {
	page := common.Pagination{Page: 1, PageSize: 20}
	if v := c.Query("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page.Page = p
		}
	}
	if v := c.Query("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil && ps > 0 && ps <= 200 {
			page.PageSize = ps
		}
	}
	return page
}

//Personal.AI order the ending

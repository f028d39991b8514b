package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"scholchat/backend/internal/service"
	"scholchat/backend/pkg/response"
)

// ExportHandler 导出 API 处理器
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler 创建 ExportHandler 实例
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportClassAccess 导出班级准入台账 (.xlsx)
// GET /api/v1/classes/:id/access/export
func (h *ExportHandler) ExportClassAccess(c *gin.Context) {
	buf, filename, err := h.exportService.ExportClassAccess(c.Request.Context(), c.Param("id"), getUserID(c))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Transfer-Encoding", "binary")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleExportError 导出业务错误 → HTTP 响应映射
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 30001, err.Error())
	case errors.Is(err, service.ErrNotModerator):
		response.Forbidden(c, 30002, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

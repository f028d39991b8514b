package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"scholchat/backend/internal/dto"
	"scholchat/backend/internal/service"
	"scholchat/backend/pkg/response"
)

// ClassHandler 班级 API 处理器
type ClassHandler struct {
	classService service.ClassService
}

// NewClassHandler 创建 ClassHandler 实例
func NewClassHandler(classService service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// Create 创建班级
// POST /api/v1/classes
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数无效")
		return
	}

	class, err := h.classService.Create(c.Request.Context(), &req, getUserID(c))
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.Created(c, class)
}

// GetByID 查询班级详情
// GET /api/v1/classes/:id
func (h *ClassHandler) GetByID(c *gin.Context) {
	class, err := h.classService.GetByID(c.Request.Context(), c.Param("id"), getUserID(c))
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// Update 更新班级
// PUT /api/v1/classes/:id
func (h *ClassHandler) Update(c *gin.Context) {
	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数无效")
		return
	}

	class, err := h.classService.Update(c.Request.Context(), c.Param("id"), &req, getUserID(c))
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// RotateCode 轮换激活码
// POST /api/v1/classes/:id/rotate-code
func (h *ClassHandler) RotateCode(c *gin.Context) {
	result, err := h.classService.RotateCode(c.Request.Context(), c.Param("id"), getUserID(c))
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMine 查询我管理的班级
// GET /api/v1/classes/mine
func (h *ClassHandler) ListMine(c *gin.Context) {
	classes, err := h.classService.ListMine(c.Request.Context(), getUserID(c))
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, classes)
}

// Roster 查询班级花名册
// GET /api/v1/classes/:id/roster
func (h *ClassHandler) Roster(c *gin.Context) {
	students, err := h.classService.Roster(c.Request.Context(), c.Param("id"), getUserID(c))
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, students)
}

// handleClassError 班级业务错误 → HTTP 响应映射
func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 30001, err.Error())
	case errors.Is(err, service.ErrNotModerator):
		response.Forbidden(c, 30002, err.Error())
	default:
		response.InternalError(c)
	}
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"scholchat/backend/internal/dto"
	"scholchat/backend/internal/service"
	"scholchat/backend/pkg/response"
)

// AccessHandler 班级准入 API 处理器
// 覆盖申请提交、审批/驳回、撤销授权与状态查询
type AccessHandler struct {
	accessService service.AccessService
	statusService service.AccessStatusService
}

// NewAccessHandler 创建 AccessHandler 实例
func NewAccessHandler(accessService service.AccessService, statusService service.AccessStatusService) *AccessHandler {
	return &AccessHandler{
		accessService: accessService,
		statusService: statusService,
	}
}

// Submit 提交准入申请
// POST /api/v1/access/requests
func (h *AccessHandler) Submit(c *gin.Context) {
	var req dto.SubmitAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数无效")
		return
	}

	result, err := h.accessService.Submit(c.Request.Context(), getUserID(c), &req)
	if err != nil {
		h.handleAccessError(c, err)
		return
	}

	response.Created(c, result)
}

// Approve 通过准入申请
// PUT /api/v1/access/requests/:id/approve
func (h *AccessHandler) Approve(c *gin.Context) {
	grant, err := h.accessService.Approve(c.Request.Context(), c.Param("id"), getUserID(c))
	if err != nil {
		h.handleAccessError(c, err)
		return
	}

	response.OK(c, grant)
}

// Reject 驳回准入申请
// PUT /api/v1/access/requests/:id/reject
func (h *AccessHandler) Reject(c *gin.Context) {
	var req dto.RejectAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数无效")
		return
	}

	result, err := h.accessService.Reject(c.Request.Context(), c.Param("id"), getUserID(c), req.Reason)
	if err != nil {
		h.handleAccessError(c, err)
		return
	}

	response.OK(c, result)
}

// RevokeMember 撤销班级成员授权
// DELETE /api/v1/access/classes/:id/members/:userId
func (h *AccessHandler) RevokeMember(c *gin.Context) {
	err := h.accessService.Revoke(c.Request.Context(), c.Param("userId"), c.Param("id"), getUserID(c))
	if err != nil {
		h.handleAccessError(c, err)
		return
	}

	response.OK(c, nil)
}

// Status 查询当前用户在某班级的准入状态
// GET /api/v1/access/classes/:id/status
func (h *AccessHandler) Status(c *gin.Context) {
	result, err := h.statusService.StatusOf(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		h.handleAccessError(c, err)
		return
	}

	response.OK(c, result)
}

// AccessibleClasses 查询当前用户可访问的班级
// GET /api/v1/access/classes
func (h *AccessHandler) AccessibleClasses(c *gin.Context) {
	classes, err := h.statusService.AccessibleClasses(c.Request.Context(), getUserID(c))
	if err != nil {
		h.handleAccessError(c, err)
		return
	}

	response.OK(c, classes)
}

// PendingRequests 查询班级待处理申请（管理侧）
// GET /api/v1/access/classes/:id/requests?status=pending
func (h *AccessHandler) PendingRequests(c *gin.Context) {
	if status := c.Query("status"); status != "" && status != "pending" {
		response.BadRequest(c, 10001, "仅支持查询 pending 状态的申请")
		return
	}

	requests, err := h.statusService.PendingRequests(c.Request.Context(), c.Param("id"), getUserID(c))
	if err != nil {
		h.handleAccessError(c, err)
		return
	}

	response.OK(c, requests)
}

// Members 查询班级成员（管理侧）
// GET /api/v1/access/classes/:id/members
func (h *AccessHandler) Members(c *gin.Context) {
	members, err := h.statusService.Members(c.Request.Context(), c.Param("id"), getUserID(c))
	if err != nil {
		h.handleAccessError(c, err)
		return
	}

	response.OK(c, members)
}

// handleAccessError 准入业务错误 → HTTP 响应映射
// 校验类 → 400；资源缺失 → 404；状态/唯一性冲突 → 409；依赖不可用 → 503
func (h *AccessHandler) handleAccessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrEmptyDependents),
		errors.Is(err, service.ErrDependentInvalid),
		errors.Is(err, service.ErrMissingReason):
		response.BadRequest(c, 40001, err.Error())
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 40002, err.Error())
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 40003, err.Error())
	case errors.Is(err, service.ErrGrantNotFound):
		response.NotFound(c, 40004, err.Error())
	case errors.Is(err, service.ErrDuplicateRequest):
		response.Conflict(c, 40005, err.Error())
	case errors.Is(err, service.ErrInvalidState):
		response.Conflict(c, 40006, err.Error())
	case errors.Is(err, service.ErrAlreadyMember):
		response.Conflict(c, 40007, err.Error())
	case errors.Is(err, service.ErrNotModerator):
		response.Forbidden(c, 40008, err.Error())
	case errors.Is(err, service.ErrDependencyUnavailable):
		response.ServiceUnavailable(c, 40009, service.ErrDependencyUnavailable.Error())
	default:
		response.InternalError(c)
	}
}

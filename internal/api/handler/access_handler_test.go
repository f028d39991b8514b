package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"scholchat/backend/internal/dto"
	"scholchat/backend/internal/service"
)

// stubAccessService 固定返回注入错误，用于覆盖错误码映射
type stubAccessService struct {
	err error
}

func (s *stubAccessService) Submit(_ context.Context, _ string, _ *dto.SubmitAccessRequest) (*dto.AccessRequestResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AccessRequestResponse{ID: "req-1", Status: "pending"}, nil
}

func (s *stubAccessService) Approve(_ context.Context, _, _ string) (*dto.AccessGrantResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AccessGrantResponse{ID: "grant-1"}, nil
}

func (s *stubAccessService) Reject(_ context.Context, _, _, _ string) (*dto.AccessRequestResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AccessRequestResponse{ID: "req-1", Status: "rejected"}, nil
}

func (s *stubAccessService) Revoke(_ context.Context, _, _, _ string) error {
	return s.err
}

func newTestRouter(stub *stubAccessService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAccessHandler(stub, nil)

	r := gin.New()
	r.POST("/access/requests", func(c *gin.Context) {
		c.Set("user_id", "parent-1")
		h.Submit(c)
	})
	r.PUT("/access/requests/:id/approve", func(c *gin.Context) {
		c.Set("user_id", "prof-1")
		h.Approve(c)
	})
	r.DELETE("/access/classes/:id/members/:userId", func(c *gin.Context) {
		c.Set("user_id", "prof-1")
		h.RevokeMember(c)
	})
	return r
}

func TestAccessHandler_Submit_StatusCodes(t *testing.T) {
	body := `{"class_id":"6f1e9b1c-0000-4000-8000-000000000001","activation_code":"123456","dependents":[{"name":"Amina"}]}`

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"成功创建", nil, http.StatusCreated},
		{"激活码错误", service.ErrInvalidCode, http.StatusBadRequest},
		{"随行学生为空", service.ErrEmptyDependents, http.StatusBadRequest},
		{"班级不存在", service.ErrClassNotFound, http.StatusNotFound},
		{"重复申请", service.ErrDuplicateRequest, http.StatusConflict},
		{"依赖不可用", service.ErrDependencyUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&stubAccessService{err: tc.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/access/requests", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("期望状态码 %d，实际=%d，响应=%s", tc.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAccessHandler_Submit_InvalidBody(t *testing.T) {
	r := newTestRouter(&stubAccessService{})

	// class_id 不是 UUID → 绑定失败
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/access/requests",
		strings.NewReader(`{"class_id":"not-a-uuid","activation_code":"123456","dependents":[]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望状态码 400，实际=%d", w.Code)
	}
}

func TestAccessHandler_Approve_StatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"审批成功", nil, http.StatusOK},
		{"申请不存在", service.ErrRequestNotFound, http.StatusNotFound},
		{"申请已处理", service.ErrInvalidState, http.StatusConflict},
		{"已有有效授权", service.ErrAlreadyMember, http.StatusConflict},
		{"无审批权限", service.ErrNotModerator, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&stubAccessService{err: tc.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/access/requests/req-1/approve", nil)
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("期望状态码 %d，实际=%d", tc.wantStatus, w.Code)
			}
		})
	}
}

func TestAccessHandler_RevokeMember_StatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"撤销成功", nil, http.StatusOK},
		{"授权不存在", service.ErrGrantNotFound, http.StatusNotFound},
		{"无撤销权限", service.ErrNotModerator, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&stubAccessService{err: tc.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/access/classes/class-1/members/parent-1", nil)
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("期望状态码 %d，实际=%d", tc.wantStatus, w.Code)
			}
		})
	}
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"scholchat/backend/internal/model"
	"scholchat/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 设计说明：
//   - 为班级管理人导出准入台账 (.xlsx)：Sheet1 当前成员，Sheet2 待处理申请
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportClassAccess 导出班级准入台账
	// 返回值：buf（Excel 内容）, filename（建议文件名）, error
	ExportClassAccess(ctx context.Context, classID, callerID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportClassAccess — 导出班级准入台账
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportClassAccess(ctx context.Context, classID, callerID string) (*bytes.Buffer, string, error) {
	// 1. 班级与权限
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("class_id", classID), zap.Error(err))
		return nil, "", err
	}
	if err := s.authorize(ctx, class, callerID); err != nil {
		return nil, "", err
	}

	// 2. 成员与待处理申请
	grants, err := s.repo.AccessGrant.ListActiveByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级成员失败", zap.Error(err))
		return nil, "", err
	}
	pending, err := s.repo.AccessRequest.ListByClass(ctx, classID, model.RequestPending)
	if err != nil {
		s.logger.Error("查询待处理申请失败", zap.Error(err))
		return nil, "", err
	}

	// 3. 生成工作簿
	f := excelize.NewFile()
	defer f.Close()

	const memberSheet = "成员"
	const pendingSheet = "待处理申请"

	f.SetSheetName("Sheet1", memberSheet)
	if _, err := f.NewSheet(pendingSheet); err != nil {
		return nil, "", ErrExportGenerateFail
	}

	// ── Sheet 成员 ──
	memberHeaders := []string{"用户ID", "姓名", "随行学生", "授权时间"}
	for i, h := range memberHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(memberSheet, cell, h); err != nil {
			return nil, "", ErrExportGenerateFail
		}
	}
	for row, g := range grants {
		name := ""
		if g.User != nil {
			name = g.User.FullName
		}
		values := []interface{}{
			g.UserID,
			name,
			joinDependentNames(g.Dependents),
			g.GrantedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(memberSheet, cell, v); err != nil {
				return nil, "", ErrExportGenerateFail
			}
		}
	}

	// ── Sheet 待处理申请 ──
	pendingHeaders := []string{"申请ID", "申请人ID", "申请人姓名", "随行学生", "提交时间"}
	for i, h := range pendingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(pendingSheet, cell, h); err != nil {
			return nil, "", ErrExportGenerateFail
		}
	}
	for row, req := range pending {
		name := ""
		if req.Requester != nil {
			name = req.Requester.FullName
		}
		values := []interface{}{
			req.RequestID,
			req.RequesterID,
			name,
			joinDependentNames(req.Dependents),
			req.SubmittedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(pendingSheet, cell, v); err != nil {
				return nil, "", ErrExportGenerateFail
			}
		}
	}

	// 4. 写出
	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写出 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("acces_%s_%s.xlsx", class.Name, time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 内部辅助方法 ──

func (s *exportService) authorize(ctx context.Context, class *model.SchoolClass, callerID string) error {
	if class.ModeratorID == callerID {
		return nil
	}
	caller, err := s.repo.User.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotModerator
		}
		return err
	}
	if caller.Role == model.RoleAdmin {
		return nil
	}
	return ErrNotModerator
}

func joinDependentNames(list model.DependentList) string {
	names := make([]string, 0, len(list))
	for _, d := range list {
		if d.Name != "" {
			names = append(names, d.Name)
		} else {
			names = append(names, d.StudentID)
		}
	}
	return strings.Join(names, ", ")
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"scholchat/backend/internal/model"
)

func TestExportService_ExportClassAccess(t *testing.T) {
	tr := newTestRepos()
	tr.seedUser("prof-1", model.RoleProfessor)
	tr.seedUser("parent-1", model.RoleGuardian)
	tr.seedClass("class-1", "prof-1", "123456", false)

	now := time.Now()
	seedGrant(tr, "g1", "parent-1", "class-1", nil)
	seedRequest(tr, "r1", "parent-2", "class-1", model.RequestPending, now)

	svc := NewExportService(tr.repo, zap.NewNop())

	buf, filename, err := svc.ExportClassAccess(context.Background(), "class-1", "prof-1")
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应以 .xlsx 结尾，实际=%q", filename)
	}

	// 产出应为可打开的工作簿，且两个工作表齐备
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容不是合法的 xlsx: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("期望 2 个工作表，实际=%v", sheets)
	}

	memberRows, err := f.GetRows("成员")
	if err != nil {
		t.Fatalf("读取成员表失败: %v", err)
	}
	if len(memberRows) != 2 { // 表头 + 1 名成员
		t.Errorf("期望成员表 2 行，实际=%d", len(memberRows))
	}

	pendingRows, err := f.GetRows("待处理申请")
	if err != nil {
		t.Fatalf("读取待处理申请表失败: %v", err)
	}
	if len(pendingRows) != 2 {
		t.Errorf("期望待处理申请表 2 行，实际=%d", len(pendingRows))
	}
}

func TestExportService_ExportClassAccess_Authorization(t *testing.T) {
	tr := newTestRepos()
	tr.seedUser("prof-1", model.RoleProfessor)
	tr.seedUser("parent-1", model.RoleGuardian)
	tr.seedClass("class-1", "prof-1", "123456", false)

	svc := NewExportService(tr.repo, zap.NewNop())

	if _, _, err := svc.ExportClassAccess(context.Background(), "class-1", "parent-1"); !errors.Is(err, ErrNotModerator) {
		t.Errorf("期望 ErrNotModerator，实际=%v", err)
	}
	if _, _, err := svc.ExportClassAccess(context.Background(), "class-missing", "prof-1"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("期望 ErrClassNotFound，实际=%v", err)
	}
}

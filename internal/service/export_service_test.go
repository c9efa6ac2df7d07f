package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/tertcoder/garbage-app-backend/internal/model"
)

func TestExportService_ExportSpecialRequests(t *testing.T) {
	tr := newTestRepos()
	tr.seedUsers()
	tr.seedArea("area-1", "Downtown", "North")
	tr.seedRequest("req-1", "alice", "area-1", time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC), model.RequestStatusPending)
	tr.seedRequest("req-2", "bob", "area-gone", time.Date(2030, 7, 3, 0, 0, 0, 0, time.UTC), model.RequestStatusApproved)

	svc := NewExportService(tr.repo, zap.NewNop()).(*exportService)
	svc.now = func() time.Time { return fixedNow }

	buf, filename, err := svc.ExportSpecialRequests(context.Background(), adminCaller)
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if filename != "special_requests_20300615.xlsx" {
		t.Errorf("文件名不正确: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("特殊清运申请")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望 1 行表头 + 2 行数据，实际 %d", len(rows))
	}
	if rows[0][0] != "申请ID" {
		t.Errorf("表头不正确: %v", rows[0])
	}
	// 按申请日期倒序
	if rows[1][0] != "req-2" || rows[2][0] != "req-1" {
		t.Errorf("排序不正确: %s, %s", rows[1][0], rows[2][0])
	}
	// 区域已删除时单元格留空
	if rows[1][1] != "Bob" || rows[1][2] != "" {
		t.Errorf("req-2 申请人/区域不正确: %v", rows[1])
	}
	if rows[2][2] != "Downtown" || rows[2][3] != "2030-07-01" || rows[2][4] != "PENDING" {
		t.Errorf("req-1 行内容不正确: %v", rows[2])
	}
}

func TestExportService_RequiresAdmin(t *testing.T) {
	tr := newTestRepos()
	svc := NewExportService(tr.repo, zap.NewNop())

	if _, _, err := svc.ExportSpecialRequests(context.Background(), aliceCaller); !errors.Is(err, ErrForbidden) {
		t.Errorf("期望 ErrForbidden，实际: %v", err)
	}
}

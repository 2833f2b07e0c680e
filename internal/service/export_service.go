package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"ksit-nexus/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = errors.New("统计周期内无通知数据")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 报表导出业务接口
//
// 设计说明：
//   - 导出通知运营报表为 Excel (.xlsx)，两个 Sheet：
//     「通知统计」按 (类型, 优先级) 聚合通知量/未读量/已投递量
//     「摘要历史」列出周期内生成的摘要记录
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportNotificationReport 导出自 since 起的通知运营报表
	ExportNotificationReport(ctx context.Context, since time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportNotificationReport(ctx context.Context, since time.Time) (*bytes.Buffer, string, error) {
	// 1. 聚合通知量
	stats, err := s.repo.Notification.Stats(ctx, since)
	if err != nil {
		s.logger.Error("查询通知统计失败", zap.Error(err))
		return nil, "", err
	}
	if len(stats) == 0 {
		return nil, "", ErrExportNoData
	}

	// 2. 摘要历史
	digests, err := s.repo.Digest.ListAll(ctx, since)
	if err != nil {
		s.logger.Error("查询摘要历史失败", zap.Error(err))
		return nil, "", err
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── Sheet 1: 通知统计 ──
	statSheet := "通知统计"
	idx, _ := f.NewSheet(statSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(statSheet, "A", "B", 14)
	f.SetColWidth(statSheet, "C", "E", 10)

	headers := []string{"类型", "优先级", "总量", "未读", "已投递"}
	for i, h := range headers {
		f.SetCellValue(statSheet, cell(colName(i), 1), h)
		f.SetCellStyle(statSheet, cell(colName(i), 1), cell(colName(i), 1), headerStyle)
	}
	row := 2
	for _, st := range stats {
		f.SetCellValue(statSheet, cell("A", row), string(st.Type))
		f.SetCellValue(statSheet, cell("B", row), string(st.Priority))
		f.SetCellValue(statSheet, cell("C", row), st.Total)
		f.SetCellValue(statSheet, cell("D", row), st.Unread)
		f.SetCellValue(statSheet, cell("E", row), st.Sent)
		row++
	}

	// ── Sheet 2: 摘要历史 ──
	digestSheet := "摘要历史"
	f.NewSheet(digestSheet)
	f.SetColWidth(digestSheet, "A", "A", 38)
	f.SetColWidth(digestSheet, "B", "B", 8)
	f.SetColWidth(digestSheet, "C", "D", 20)
	f.SetColWidth(digestSheet, "E", "E", 8)

	dHeaders := []string{"用户", "周期", "窗口开始", "窗口结束", "条数"}
	for i, h := range dHeaders {
		f.SetCellValue(digestSheet, cell(colName(i), 1), h)
		f.SetCellStyle(digestSheet, cell(colName(i), 1), cell(colName(i), 1), headerStyle)
	}
	row = 2
	for _, d := range digests {
		f.SetCellValue(digestSheet, cell("A", row), d.UserID)
		f.SetCellValue(digestSheet, cell("B", row), string(d.PeriodKind))
		f.SetCellValue(digestSheet, cell("C", row), d.WindowStart.Format("2006-01-02 15:04"))
		f.SetCellValue(digestSheet, cell("D", row), d.WindowEnd.Format("2006-01-02 15:04"))
		f.SetCellValue(digestSheet, cell("E", row), d.IncludedCount)
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("通知报表_%s.xlsx", since.Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

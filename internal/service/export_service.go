package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Logiciel-Prince/device-management/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoDevices    = errors.New("暂无设备可导出")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设备台账导出为 Excel (.xlsx)，以 bytes.Buffer 返回，
// 由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportDevices 导出设备台账为 Excel
	ExportDevices(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportDevices(ctx context.Context) (*bytes.Buffer, string, error) {
	devices, err := s.repo.Device.List(ctx)
	if err != nil {
		s.logger.Error("查询设备列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(devices) == 0 {
		return nil, "", ErrExportNoDevices
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "设备台账"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	widths := []float64{36, 20, 12, 20, 20, 12, 24, 14, 20}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"设备 ID", "名称", "类型", "型号", "序列号", "状态", "持有人", "购入日期", "最近活跃"}
	for i, h := range headers {
		c := cell(colName(i), 1)
		f.SetCellValue(sheetName, c, h)
		f.SetCellStyle(sheetName, c, c, headerStyle)
	}

	row := 2
	for i := range devices {
		d := &devices[i]

		holder := "-"
		if d.AssignedUser != nil {
			holder = d.AssignedUser.FullName()
		}
		purchase := "-"
		if d.PurchaseDate != nil {
			purchase = d.PurchaseDate.Format("2006-01-02")
		}

		values := []interface{}{
			d.DeviceID, d.Name, d.Type, d.Model, d.SerialNumber,
			d.Status, holder, purchase, d.LastActivity.Format("2006-01-02 15:04"),
		}
		for j, v := range values {
			f.SetCellValue(sheetName, cell(colName(j), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("设备台账_%s.xlsx", time.Now().Format("20060102"))
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

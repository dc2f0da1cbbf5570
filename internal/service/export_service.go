package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/authz"
	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	apperrors "github.com/davidblanco1407/pma-frequency-backend/pkg/errors"
)

// ErrExportFailed is returned when the workbook cannot be written.
var ErrExportFailed = apperrors.New(apperrors.KindInternal, 50010, "could not generate the export file")

// ExportService spreadsheet exports for staff.
type ExportService interface {
	// ExportMembers writes the filtered member list as .xlsx and returns the
	// suggested file name.
	ExportMembers(ctx context.Context, actor authz.Actor, req *dto.MemberListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	*Deps
}

// NewExportService creates an ExportService.
func NewExportService(d *Deps) ExportService {
	return &exportService{Deps: d}
}

const (
	memberSheet = "Members"
	dateLayout  = "2006-01-02 15:04"
)

var memberHeaders = []string{"ID", "Full name", "Email", "Phone", "Status", "May return", "Registered at", "Deactivated at"}

func (s *exportService) ExportMembers(ctx context.Context, actor authz.Actor, req *dto.MemberListRequest) (*bytes.Buffer, string, error) {
	if !authz.CanViewMemberStats(actor) {
		return nil, "", ErrForbidden
	}
	members, err := s.Repo.Member.ListAll(ctx, FilterFromRequest(req))
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(memberSheet)
	if err != nil {
		return nil, "", s.fail(err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(memberSheet, "A", "A", 8)
	f.SetColWidth(memberSheet, "B", "C", 30)
	f.SetColWidth(memberSheet, "D", "F", 16)
	f.SetColWidth(memberSheet, "G", "H", 20)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range memberHeaders {
		f.SetCellValue(memberSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(memberSheet, "A1", cell(colName(len(memberHeaders)-1), 1), headerStyle)

	for i := range members {
		m := &members[i]
		row := i + 2
		values := []interface{}{
			m.ID,
			m.FullName,
			m.Email,
			m.Phone,
			string(m.Status()),
			mayReturnLabel(m.ReturnPolicy),
			m.RegisteredAt.Format(dateLayout),
			"",
		}
		if m.DeactivatedAt != nil {
			values[7] = m.DeactivatedAt.Format(dateLayout)
		}
		for col, v := range values {
			f.SetCellValue(memberSheet, cell(colName(col), row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", s.fail(err)
	}

	s.Logger.Info("members exported", zap.Int("rows", len(members)), zap.Uint("actor", actor.AccountID))
	filename := fmt.Sprintf("members_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) fail(err error) error {
	s.Logger.Error("write workbook failed", zap.Error(err))
	return ErrExportFailed
}

func mayReturnLabel(p model.ReturnPolicy) string {
	switch p {
	case model.ReturnPolicyMayReturn:
		return "yes"
	case model.ReturnPolicyBlocked:
		return "no"
	default:
		return ""
	}
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

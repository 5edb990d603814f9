package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

const pipelineSheet = "Pipeline"

// Service writes pipeline rows and run summaries to disk.
type Service struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, now: time.Now}
}

// Rows builds one pipeline row per successful result, in run order.
func (s *Service) Rows(results []entity.EmailProcessingResult) [][]string {
	now := s.now()
	var rows [][]string
	for _, r := range results {
		if !r.Success {
			continue
		}
		rows = append(rows, BuildRow(r.Fields, r.SourceRef, now))
	}
	return rows
}

// WriteCSV writes the header and rows to path. With appendTo set, rows are
// appended to an existing file and the header is written only when the file
// is new.
func (s *Service) WriteCSV(path string, rows [][]string, appendTo bool) error {
	start := s.now()
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	existed := false
	if appendTo {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		if _, err := os.Stat(path); err == nil {
			existed = true
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("export.csv.close_error", "path", path, "error", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if !existed {
		if err := w.Write(PipelineHeaders); err != nil {
			return fmt.Errorf("csv header: %w", err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("csv rows: %w", err)
	}

	action := "created"
	if existed {
		action = "appended"
	}
	s.logger.Info("export.csv.ok",
		"path", path,
		"rows", len(rows),
		"action", action,
		"elapsed_ms", s.now().Sub(start).Milliseconds(),
	)
	return nil
}

// WriteXLSX writes the header and rows to a single-sheet workbook.
func (s *Service) WriteXLSX(path string, rows [][]string) error {
	start := s.now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", pipelineSheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	index, err := f.GetSheetIndex(pipelineSheet)
	if err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	f.SetActiveSheet(index)

	write := func(r int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, r)
		if err != nil {
			return err
		}
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
		}
		return f.SetSheetRow(pipelineSheet, cell, &cells)
	}

	if err := write(1, PipelineHeaders); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	for i, row := range rows {
		if err := write(i+2, row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(PipelineHeaders))
	_ = f.SetColWidth(pipelineSheet, "A", last, 16)
	_ = f.SetColWidth(pipelineSheet, "A", "A", 32) // deal
	_ = f.SetColWidth(pipelineSheet, "I", "I", 60) // description
	_ = f.SetPanes(pipelineSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"path", path,
		"rows", len(rows),
		"elapsed_ms", s.now().Sub(start).Milliseconds(),
	)
	return nil
}

package excel

import (
	"fmt"

	"bayesbet/domain/game"
	"bayesbet/internal/engine"

	"github.com/xuri/excelize/v2"
)

// Export is the scored data written to a results workbook
type Export struct {
	Entries     []game.LeaderboardEntry
	Summary     engine.LeaderboardSummary
	Evidence    []engine.EvidenceRow
	Predictions *game.PredictionSummary
}

// WriteExport saves the leaderboard, evidence table and prediction
// records as separate sheets of one workbook.
func (r *DataReader) WriteExport(path string, export Export) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeLeaderboard(f, export.Entries, export.Summary); err != nil {
		return err
	}
	if len(export.Evidence) > 0 {
		if err := writeEvidence(f, export.Evidence); err != nil {
			return err
		}
	}
	if export.Predictions != nil {
		if err := writePredictions(f, export.Predictions); err != nil {
			return err
		}
	}

	// NewFile starts with Sheet1; drop it once the real sheets exist
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(SheetLeaderboard); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	r.logger.Info("exported %d competitors to %s", len(export.Entries), path)
	return nil
}

func writeLeaderboard(f *excelize.File, entries []game.LeaderboardEntry, summary engine.LeaderboardSummary) error {
	rows := [][]interface{}{{"rank", "id", "name", "kind", "paradigm", "total_bet", "payoff"}}
	for _, e := range entries {
		rows = append(rows, []interface{}{e.Rank, string(e.ID), e.Name, string(e.Kind), string(e.Paradigm), e.Bets.Total(), e.Payoff})
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"leader", string(summary.Leader)},
		[]interface{}{"mean_payoff", summary.MeanPayoff},
		[]interface{}{"median_payoff", summary.MedianPayoff},
	)
	return writeSheet(f, SheetLeaderboard, rows)
}

func writeEvidence(f *excelize.File, evidence []engine.EvidenceRow) error {
	rows := [][]interface{}{{"cluster", "paradigm", "hypothesis", "lr", "woe", "p_e_h", "p_e_not_h", "source"}}
	for _, e := range evidence {
		rows = append(rows, []interface{}{string(e.Cluster), string(e.Paradigm), string(e.Hypothesis), e.LR, e.WoE, e.PEH, e.PENotH, string(e.Source)})
	}
	return writeSheet(f, SheetEvidence, rows)
}

func writePredictions(f *excelize.File, summary *game.PredictionSummary) error {
	rows := [][]interface{}{{"cluster", "predicted", "confidence", "actual", "correct", "points"}}
	for _, p := range summary.Records {
		rows = append(rows, []interface{}{string(p.Cluster), string(p.Predicted), string(p.Confidence), string(p.Actual), p.Correct, p.Points})
	}
	rows = append(rows, []interface{}{}, []interface{}{"total", summary.Total})
	return writeSheet(f, SheetPredictions, rows)
}

func writeSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", name, err)
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}

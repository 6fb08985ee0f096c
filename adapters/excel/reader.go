package excel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/domain/scenario"
	"bayesbet/internal"

	"github.com/xuri/excelize/v2"
)

// DataReader loads scenarios and posteriors from .xlsx workbooks or .json files
type DataReader struct {
	logger *internal.Logger
}

// NewDataReader creates a reader logging under the "excel" component
func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{logger: logger.WithComponent("excel")}
}

func fileType(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return "xlsx", nil
	case ".json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
}

// ReadScenario loads a scenario. Workbooks need Hypotheses and Paradigms
// sheets; Priors, Clusters, Likelihoods and Metrics are optional.
func (r *DataReader) ReadScenario(path string) (*scenario.Scenario, error) {
	kind, err := fileType(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("scenario file not found: %w", err)
	}

	if kind == "json" {
		var s scenario.Scenario
		if err := readJSON(path, &s); err != nil {
			return nil, err
		}
		if s.ID == "" {
			s.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		return &s, nil
	}

	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	s, err := r.buildScenario(f)
	if err != nil {
		return nil, err
	}
	if s.ID == "" {
		s.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	r.logger.Debug("scenario %s read in %.2fms (%d hypotheses, %d paradigms, %d clusters)",
		s.ID, float64(time.Since(startTime).Nanoseconds())/1e6, len(s.Hypotheses), len(s.Paradigms), len(s.Clusters))
	return s, nil
}

// ReadPosteriors loads paradigm → hypothesis → posterior. JSON files hold
// that nested object; workbooks use a Posteriors sheet.
func (r *DataReader) ReadPosteriors(path string) (map[core.ParadigmID]game.Distribution, error) {
	kind, err := fileType(path)
	if err != nil {
		return nil, err
	}

	if kind == "json" {
		var out map[core.ParadigmID]game.Distribution
		if err := readJSON(path, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := readSheet(f, SheetPosteriors, true)
	if err != nil {
		return nil, err
	}
	out := make(map[core.ParadigmID]game.Distribution)
	for i, row := range sheet.Rows {
		paradigm := core.ParadigmID(row["paradigm"])
		value, err := parseFloat(row["posterior"])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetPosteriors, i+2, err)
		}
		if out[paradigm] == nil {
			out[paradigm] = make(game.Distribution)
		}
		out[paradigm][core.HypothesisID(row["hypothesis"])] = value
	}
	return out, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func (r *DataReader) buildScenario(f *excelize.File) (*scenario.Scenario, error) {
	s := &scenario.Scenario{}

	hypotheses, err := readSheet(f, SheetHypotheses, true)
	if err != nil {
		return nil, err
	}
	for _, row := range hypotheses.Rows {
		s.Hypotheses = append(s.Hypotheses, scenario.Hypothesis{
			ID:   core.HypothesisID(row["id"]),
			Name: row["name"],
		})
	}

	paradigms, err := readSheet(f, SheetParadigms, true)
	if err != nil {
		return nil, err
	}
	paradigmIndex := make(map[core.ParadigmID]int)
	for _, row := range paradigms.Rows {
		id := core.ParadigmID(row["id"])
		paradigmIndex[id] = len(s.Paradigms)
		s.Paradigms = append(s.Paradigms, scenario.Paradigm{
			ID:     id,
			Name:   row["name"],
			Priors: make(map[core.HypothesisID]float64),
		})
	}

	priors, err := readSheet(f, SheetPriors, false)
	if err != nil {
		return nil, err
	}
	for i, row := range priors.Rows {
		idx, ok := paradigmIndex[core.ParadigmID(row["paradigm"])]
		if !ok {
			return nil, fmt.Errorf("%s row %d: unknown paradigm %q", SheetPriors, i+2, row["paradigm"])
		}
		value, err := parseFloat(row["prior"])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetPriors, i+2, err)
		}
		s.Paradigms[idx].Priors[core.HypothesisID(row["hypothesis"])] = value
	}

	clusters, err := readSheet(f, SheetClusters, false)
	if err != nil {
		return nil, err
	}
	clusterIndex := make(map[core.ClusterID]int)
	for _, row := range clusters.Rows {
		id := core.ClusterID(row["id"])
		clusterIndex[id] = len(s.Clusters)
		s.Clusters = append(s.Clusters, scenario.EvidenceCluster{
			ID:           id,
			Name:         row["name"],
			EvidenceRefs: splitRefs(row["evidence_refs"]),
		})
	}
	// Likelihood and metrics rows may introduce clusters the Clusters sheet omits
	cluster := func(id core.ClusterID) *scenario.EvidenceCluster {
		idx, ok := clusterIndex[id]
		if !ok {
			idx = len(s.Clusters)
			clusterIndex[id] = idx
			s.Clusters = append(s.Clusters, scenario.EvidenceCluster{ID: id})
		}
		return &s.Clusters[idx]
	}

	likelihoods, err := readSheet(f, SheetLikelihoods, false)
	if err != nil {
		return nil, err
	}
	for i, row := range likelihoods.Rows {
		value, err := parseFloat(row["value"])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetLikelihoods, i+2, err)
		}
		c := cluster(core.ClusterID(row["cluster"]))
		entry := scenario.Likelihood{Value: value, Justification: row["justification"]}
		h := core.HypothesisID(row["hypothesis"])

		if paradigm := core.ParadigmID(row["paradigm"]); paradigm != "" {
			if c.ParadigmLikelihoods == nil {
				c.ParadigmLikelihoods = make(map[core.ParadigmID]scenario.LikelihoodTable)
			}
			if c.ParadigmLikelihoods[paradigm] == nil {
				c.ParadigmLikelihoods[paradigm] = make(scenario.LikelihoodTable)
			}
			c.ParadigmLikelihoods[paradigm][h] = entry
			continue
		}
		if c.Likelihoods == nil {
			c.Likelihoods = make(scenario.LikelihoodTable)
		}
		c.Likelihoods[h] = entry
	}

	metrics, err := readSheet(f, SheetMetrics, false)
	if err != nil {
		return nil, err
	}
	for i, row := range metrics.Rows {
		m, err := parseMetrics(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetMetrics, i+2, err)
		}
		c := cluster(core.ClusterID(row["cluster"]))
		paradigm := core.ParadigmID(row["paradigm"])
		if c.Metrics == nil {
			c.Metrics = make(map[core.ParadigmID]scenario.MetricsTable)
		}
		if c.Metrics[paradigm] == nil {
			c.Metrics[paradigm] = make(scenario.MetricsTable)
		}
		c.Metrics[paradigm][core.HypothesisID(row["hypothesis"])] = m
	}

	return s, nil
}

// readSheet returns an empty SheetData for a missing optional sheet
func readSheet(f *excelize.File, name string, required bool) (*SheetData, error) {
	found := false
	for _, sheet := range f.GetSheetList() {
		if sheet == name {
			found = true
			break
		}
	}
	if !found {
		if required {
			return nil, fmt.Errorf("workbook is missing the %s sheet", name)
		}
		return &SheetData{}, nil
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return processRows(rows), nil
}

// processRows converts raw string rows into SheetData, skipping blank rows
func processRows(rows [][]string) *SheetData {
	data := &SheetData{}
	if len(rows) == 0 {
		return data
	}

	data.Headers = make([]string, len(rows[0]))
	for i, header := range rows[0] {
		data.Headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	for _, row := range rows[1:] {
		rowData := make(RawRowData)
		blank := true
		for j, cell := range row {
			if j < len(data.Headers) {
				value := strings.TrimSpace(cell)
				rowData[data.Headers[j]] = value
				if value != "" {
					blank = false
				}
			}
		}
		if !blank {
			data.Rows = append(data.Rows, rowData)
		}
	}
	return data
}

func parseMetrics(row RawRowData) (scenario.PrecomputedMetrics, error) {
	var m scenario.PrecomputedMetrics
	var err error
	if m.LR, err = parseFloat(row["lr"]); err != nil {
		return m, err
	}
	if m.WoE, err = parseFloat(row["woe"]); err != nil {
		return m, err
	}
	if m.PEH, err = parseOptionalFloat(row["p_e_h"]); err != nil {
		return m, err
	}
	if m.PENotH, err = parseOptionalFloat(row["p_e_not_h"]); err != nil {
		return m, err
	}
	return m, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing numeric value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// parseOptionalFloat treats a blank cell as the neutral 0.5
func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0.5, nil
	}
	return parseFloat(s)
}

func splitRefs(s string) []string {
	if s == "" {
		return nil
	}
	var refs []string
	for _, ref := range strings.Split(s, evidenceRefSeparator) {
		if ref = strings.TrimSpace(ref); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

package excel

// RawRowData represents a row of raw sheet data as header → cell pairs
type RawRowData map[string]string

// SheetData represents one sheet as headers plus rows
type SheetData struct {
	Headers []string     // Column headers, lower-cased and trimmed
	Rows    []RawRowData // Data rows
}

// Sheet names understood by the workbook reader
const (
	SheetHypotheses  = "Hypotheses"
	SheetParadigms   = "Paradigms"
	SheetPriors      = "Priors"
	SheetClusters    = "Clusters"
	SheetLikelihoods = "Likelihoods"
	SheetMetrics     = "Metrics"
	SheetPosteriors  = "Posteriors"
	SheetLeaderboard = "Leaderboard"
	SheetEvidence    = "Evidence"
	SheetPredictions = "Predictions"
)

// evidenceRefSeparator splits the evidence_refs cell of the Clusters sheet
const evidenceRefSeparator = ";"

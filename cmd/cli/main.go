package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"bayesbet/adapters/excel"
	"bayesbet/app"
	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/domain/scenario"
	"bayesbet/internal/config"
	"bayesbet/internal/container"
	"bayesbet/internal/engine"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bayesbet",
		Short:         "Score evidence, wagers and predictions for Bayesian reasoning games",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newEvidenceCmd(),
		newResolveCmd(),
		newPlayCmd(),
		newBatchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadContainer reads configuration and wires dependencies. adjust, when
// given, can override configuration before wiring; connect opens the
// database when one is configured.
func loadContainer(ctx context.Context, connect bool, adjust func(*config.Config)) (*container.Container, error) {
	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(cfg)
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if connect {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func readScenario(c *container.Container, path string) (*scenario.Scenario, error) {
	s, err := c.Reader.ReadScenario(path)
	if err != nil {
		return nil, err
	}
	warnings, err := s.Validate()
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		c.Logger.Warn("%s: %s", s.ID, w)
	}
	return s, nil
}

func newEvidenceCmd() *cobra.Command {
	var paradigm string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "evidence [scenario]",
		Short: "Print likelihood ratios and weight of evidence per cluster",
		Long: `Weigh every evidence cluster for every paradigm and hypothesis.

Precomputed metrics in the scenario take priority over ratios derived from
likelihoods; the source column shows which applied.

Example: bayesbet evidence case.xlsx --paradigm skeptic`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context(), false, nil)
			if err != nil {
				return err
			}
			s, err := readScenario(c, args[0])
			if err != nil {
				return err
			}
			return runEvidence(cmd.OutOrStdout(), s, core.ParadigmID(paradigm), asJSON)
		},
	}

	cmd.Flags().StringVar(&paradigm, "paradigm", "", "Only show this paradigm")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func runEvidence(out io.Writer, s *scenario.Scenario, paradigm core.ParadigmID, asJSON bool) error {
	if paradigm != "" {
		if _, ok := s.Paradigm(paradigm); !ok {
			return core.NewUnknownParadigmError(paradigm)
		}
	}

	var rows []engine.EvidenceRow
	for _, row := range engine.EvidenceTable(s) {
		if paradigm == "" || row.Paradigm == paradigm {
			rows = append(rows, row)
		}
	}

	if asJSON {
		return writeJSON(out, rows)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLUSTER\tPARADIGM\tHYPOTHESIS\tP(E|H)\tP(E|¬H)\tLR\tWOE (dB)\tSOURCE")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.3f\t%.3f\t%+.2f\t%s\n",
			r.Cluster, r.Paradigm, r.Hypothesis, r.PEH, r.PENotH, r.LR, r.WoE, r.Source)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, p := range s.Paradigms {
		if paradigm != "" && p.ID != paradigm {
			continue
		}
		totals := engine.CumulativeWoE(s, p.ID)
		parts := make([]string, 0, len(totals))
		for _, h := range s.HypothesisOrder() {
			parts = append(parts, fmt.Sprintf("%s %+.2f", h, totals[h]))
		}
		fmt.Fprintf(out, "cumulative WoE [%s]: %s\n", p.ID, strings.Join(parts, ", "))
	}
	return nil
}

func newResolveCmd() *cobra.Command {
	var paradigm string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve [scenario]",
		Short: "Show which hypothesis each evidence cluster supports",
		Long: `Resolve every cluster to the hypothesis it most strongly supports, or
"none" when the evidence is mixed.

Example: bayesbet resolve case.json --paradigm frequentist`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context(), false, nil)
			if err != nil {
				return err
			}
			s, err := readScenario(c, args[0])
			if err != nil {
				return err
			}
			return runResolve(cmd.OutOrStdout(), s, core.ParadigmID(paradigm), asJSON)
		},
	}

	cmd.Flags().StringVar(&paradigm, "paradigm", "", "Paradigm to resolve under (default: first in scenario)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func runResolve(out io.Writer, s *scenario.Scenario, paradigm core.ParadigmID, asJSON bool) error {
	if paradigm != "" {
		if _, ok := s.Paradigm(paradigm); !ok {
			return core.NewUnknownParadigmError(paradigm)
		}
	}
	ref, _ := s.ReferenceParadigm(paradigm)
	resolutions := engine.ResolveAll(s, ref)

	if asJSON {
		return writeJSON(out, resolutions)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CLUSTER\tSUPPORTS [%s]\n", ref)
	for _, c := range s.Clusters {
		fmt.Fprintf(w, "%s\t%s\n", c.ID, displayHypothesis(resolutions[c.ID]))
	}
	return w.Flush()
}

func newPlayCmd() *cobra.Command {
	var posteriorsPath string
	var bets []string
	var predictions []string
	var paradigm string
	var rule string
	var exportPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "play [scenario]",
		Short: "Score a player's bets and predictions against the personas",
		Long: `Start a game, place the player's bets and predictions, lock them, feed in
posteriors and print the ranked leaderboard.

Bets are HYPOTHESIS=AMOUNT; predictions are CLUSTER=HYPOTHESIS:CONFIDENCE
where HYPOTHESIS may be "none" and CONFIDENCE is low, medium or high.
Games are stored in postgres when DATABASE_URL is set.

Example: bayesbet play case.xlsx --posteriors post.json --bet H2=40 --predict lab=H2:high --export results.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedBets, err := parseBets(bets)
			if err != nil {
				return err
			}
			parsedPredictions, err := parsePredictions(predictions)
			if err != nil {
				return err
			}
			c, err := loadContainer(cmd.Context(), true, nil)
			if err != nil {
				return err
			}
			defer c.Close()
			return runPlay(cmd.Context(), cmd.OutOrStdout(), c, playRequest{
				ScenarioPath:   args[0],
				PosteriorsPath: posteriorsPath,
				Bets:           parsedBets,
				Predictions:    parsedPredictions,
				Paradigm:       core.ParadigmID(paradigm),
				Rule:           game.PayoffRule(rule),
				ExportPath:     exportPath,
				JSON:           asJSON,
			})
		},
	}

	cmd.Flags().StringVar(&posteriorsPath, "posteriors", "", "Posteriors file (.json or .xlsx)")
	cmd.Flags().StringArrayVar(&bets, "bet", nil, "Bet as HYPOTHESIS=AMOUNT (repeatable)")
	cmd.Flags().StringArrayVar(&predictions, "predict", nil, "Prediction as CLUSTER=HYPOTHESIS:CONFIDENCE (repeatable)")
	cmd.Flags().StringVar(&paradigm, "paradigm", "", "Player's home paradigm (gets no persona)")
	cmd.Flags().StringVar(&rule, "rule", "", "Payoff rule: odds_against, proportional_posterior, log_score, quadratic_score")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write leaderboard, evidence and predictions to this .xlsx file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the result as JSON")
	return cmd
}

type betInput struct {
	Hypothesis core.HypothesisID
	Amount     float64
}

type predictionInput struct {
	Cluster    core.ClusterID
	Predicted  core.HypothesisID
	Confidence game.Confidence
}

type playRequest struct {
	ScenarioPath   string
	PosteriorsPath string
	Bets           []betInput
	Predictions    []predictionInput
	Paradigm       core.ParadigmID
	Rule           game.PayoffRule
	ExportPath     string
	JSON           bool
}

func parseBets(raw []string) ([]betInput, error) {
	out := make([]betInput, 0, len(raw))
	for _, r := range raw {
		h, amount, ok := strings.Cut(r, "=")
		if !ok || strings.TrimSpace(h) == "" {
			return nil, fmt.Errorf("invalid bet %q, want HYPOTHESIS=AMOUNT", r)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bet amount in %q: %w", r, err)
		}
		out = append(out, betInput{Hypothesis: core.HypothesisID(strings.TrimSpace(h)), Amount: value})
	}
	return out, nil
}

func parsePredictions(raw []string) ([]predictionInput, error) {
	out := make([]predictionInput, 0, len(raw))
	for _, r := range raw {
		cluster, rest, ok := strings.Cut(r, "=")
		if !ok || strings.TrimSpace(cluster) == "" {
			return nil, fmt.Errorf("invalid prediction %q, want CLUSTER=HYPOTHESIS:CONFIDENCE", r)
		}
		predicted, confidence, _ := strings.Cut(rest, ":")
		predicted = strings.TrimSpace(predicted)
		if strings.EqualFold(predicted, "none") {
			predicted = string(core.NoHypothesis)
		}
		out = append(out, predictionInput{
			Cluster:    core.ClusterID(strings.TrimSpace(cluster)),
			Predicted:  core.HypothesisID(predicted),
			Confidence: game.ParseConfidence(confidence),
		})
	}
	return out, nil
}

func runPlay(ctx context.Context, out io.Writer, c *container.Container, req playRequest) error {
	svc := c.GameService
	state, _, err := svc.NewGameFromFile(ctx, req.ScenarioPath, app.NewGameRequest{
		Rule:           req.Rule,
		PlayerParadigm: req.Paradigm,
	})
	if err != nil {
		return err
	}

	for _, b := range req.Bets {
		if _, err := svc.PlaceBet(ctx, state.ID, b.Hypothesis, b.Amount); err != nil {
			return err
		}
	}
	for _, p := range req.Predictions {
		if _, err := svc.Predict(ctx, state.ID, p.Cluster, p.Predicted, p.Confidence); err != nil {
			return err
		}
	}

	result, err := svc.Lock(ctx, state.ID)
	if err != nil {
		return err
	}

	if req.PosteriorsPath != "" {
		posteriors, err := c.Reader.ReadPosteriors(req.PosteriorsPath)
		if err != nil {
			return err
		}
		// Feed paradigms in scenario order so the log reads like a stream of arrivals
		for _, p := range state.Scenario.Paradigms {
			d, ok := posteriors[p.ID]
			if !ok {
				continue
			}
			if result, err = svc.SubmitPosteriors(ctx, state.ID, p.ID, d); err != nil {
				return err
			}
		}
	}

	if req.ExportPath != "" {
		err := c.Reader.WriteExport(req.ExportPath, excel.Export{
			Entries:     result.Leaderboard,
			Summary:     result.Summary,
			Evidence:    engine.EvidenceTable(&state.Scenario),
			Predictions: &result.Predictions,
		})
		if err != nil {
			return err
		}
	}

	if req.JSON {
		return writeJSON(out, result)
	}
	return printResult(out, result)
}

func printResult(out io.Writer, result app.Result) error {
	status := "final"
	if result.Provisional {
		status = "provisional, no posteriors yet"
	}
	fmt.Fprintf(out, "game %s (%s, rule %s)\n", result.GameID, status, result.Rule)
	fmt.Fprintf(out, "winning hypothesis: %s\n\n", displayHypothesis(result.Winner))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCOMPETITOR\tKIND\tSTAKED\tPAYOFF")
	for _, e := range result.Leaderboard {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.0f\t%+.2f\n", e.Rank, e.Name, e.Kind, e.Bets.Total(), e.Payoff)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "mean payoff %.2f, median %.2f\n", result.Summary.MeanPayoff, result.Summary.MedianPayoff)

	if len(result.Predictions.Records) > 0 {
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CLUSTER\tPREDICTED\tCONFIDENCE\tACTUAL\tPOINTS")
		for _, p := range result.Predictions.Records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%+d\n", p.Cluster, displayHypothesis(p.Predicted), p.Confidence, displayHypothesis(p.Actual), p.Points)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "prediction score: %d (%d correct)\n", result.Predictions.Total, result.Predictions.Correct)
	}
	return nil
}

func newBatchCmd() *cobra.Command {
	var concurrency int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "batch [scenario[:posteriors]...]",
		Short: "Score many scenarios concurrently",
		Long: `Score each scenario with personas only, optionally against a posteriors
file given after a colon. Concurrency defaults to BATCH_CONCURRENCY.

Example: bayesbet batch a.xlsx:a-post.json b.json --concurrency 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context(), false, func(cfg *config.Config) {
				if concurrency > 0 {
					cfg.Batch.Concurrency = concurrency
				}
			})
			if err != nil {
				return err
			}
			return runBatch(cmd.Context(), cmd.OutOrStdout(), c, parseJobs(args), asJSON)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum scenarios scored at once")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit results as JSON")
	return cmd
}

func parseJobs(args []string) []app.BatchJob {
	jobs := make([]app.BatchJob, len(args))
	for i, arg := range args {
		scenarioPath, posteriorsPath, _ := strings.Cut(arg, ":")
		jobs[i] = app.BatchJob{ScenarioPath: scenarioPath, PosteriorsPath: posteriorsPath}
	}
	return jobs
}

type batchLine struct {
	Scenario string      `json:"scenario"`
	Error    string      `json:"error,omitempty"`
	Result   *app.Result `json:"result,omitempty"`
}

func runBatch(ctx context.Context, out io.Writer, c *container.Container, jobs []app.BatchJob, asJSON bool) error {
	results, err := c.GameService.ScoreBatch(ctx, jobs)
	if err != nil {
		return err
	}

	failed := 0
	lines := make([]batchLine, len(results))
	for i, r := range results {
		lines[i] = batchLine{Scenario: r.Job.ScenarioPath, Result: r.Result}
		if r.Err != nil {
			lines[i].Error = r.Err.Error()
			failed++
		}
	}

	if asJSON {
		if err := writeJSON(out, lines); err != nil {
			return err
		}
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SCENARIO\tWINNER\tLEADER\tMEAN PAYOFF\tSTATUS")
		for _, l := range lines {
			if l.Result == nil {
				fmt.Fprintf(w, "%s\t-\t-\t-\terror: %s\n", l.Scenario, l.Error)
				continue
			}
			status := "final"
			if l.Result.Provisional {
				status = "provisional"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", l.Scenario, displayHypothesis(l.Result.Winner), l.Result.Summary.Leader, l.Result.Summary.MeanPayoff, status)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(jobs))
	}
	return nil
}

func displayHypothesis(h core.HypothesisID) string {
	if h.IsNone() {
		return "none"
	}
	return h.String()
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/martiendejong/Hazina-sub003/internal/reasoning"
)

func newReasonCommand(state *cliState) *cobra.Command {
	var (
		minConfidence float64
		maxSteps      int
		domain        string
		expectations  []string
		outputFormat  string
	)

	cmd := &cobra.Command{
		Use:   "reason <prompt>",
		Short: "Run one prompt through the escalation chain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.loadConfig(); err != nil {
				return err
			}

			engine, tp, err := buildEngine(state.cfg, state.logger)
			if err != nil {
				return err
			}
			defer func() { _ = tp.Shutdown(cmd.Context()) }()

			rctx := reasoning.NewContext()
			if state.cfg.Reasoning.MinConfidence > 0 {
				rctx.MinConfidence = state.cfg.Reasoning.MinConfidence
			}
			if cmd.Flags().Changed("min-confidence") {
				rctx.MinConfidence = minConfidence
			}
			if maxSteps > 0 {
				rctx.MaxSteps = maxSteps
			} else {
				rctx.MaxSteps = state.cfg.Reasoning.MaxSteps
			}
			rctx.Domain = domain
			rctx.GroundTruth, err = parseExpectations(expectations)
			if err != nil {
				return err
			}

			prompt := strings.Join(args, " ")
			run := engine.Reason(cmd.Context(), prompt, rctx)

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(run); err != nil {
					return err
				}
			case "yaml":
				if err := yaml.NewEncoder(os.Stdout).Encode(run); err != nil {
					return err
				}
			case "text":
				printRun(run)
			default:
				return fmt.Errorf("unknown output format %q (text, json, yaml)", outputFormat)
			}
			if !run.IsSuccessful {
				return fmt.Errorf("all reasoning layers failed")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0.8, "Confidence needed to stop escalating")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Maximum layers to try (0 = all)")
	cmd.Flags().StringVar(&domain, "domain", "", "Domain hint passed to every layer")
	cmd.Flags().StringArrayVar(&expectations, "expect", nil, "Expected fact as key=value (repeatable)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json or yaml")

	return cmd
}

func parseExpectations(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --expect %q, want key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

func printRun(run *reasoning.RunResult) {
	if !run.IsSuccessful {
		fmt.Println(red("✗ no layer produced a usable answer"))
		fmt.Println(gray(run.Error))
		return
	}

	fmt.Println(bold("Answer"))
	fmt.Println(run.FinalAnswer)
	fmt.Println()
	fmt.Printf("%s %s", bold("Confidence"), confidenceLabel(run.FinalConfidence))
	if run.EarlyStopped {
		fmt.Printf(" %s", gray("(early stop)"))
	}
	fmt.Println()

	for _, r := range run.LayerResults {
		status := green("ok")
		if !r.IsValid {
			status = red("failed")
		}
		fmt.Printf("  %s %s  confidence=%.2f  %dms  $%.4f\n",
			cyan(r.Provider), status, r.Confidence, r.DurationMs, r.Cost)
		for _, issue := range r.ValidationIssues {
			fmt.Printf("    %s\n", gray(issue))
		}
	}

	if cv := run.CrossValidation; cv != nil {
		fmt.Println(bold("Consensus"))
		for _, a := range cv.Agreements {
			fmt.Printf("  %s %s\n", green("+"), a)
		}
		for _, d := range cv.Disagreements {
			fmt.Printf("  %s %s\n", yellow("~"), d)
		}
		for _, issue := range cv.Issues {
			fmt.Printf("  %s %s\n", yellow("!"), issue.Description)
		}
	}

	fmt.Println(gray(fmt.Sprintf("total %dms  $%.4f", run.TotalDurationMs, run.TotalCost)))
}

func confidenceLabel(confidence float64) string {
	text := fmt.Sprintf("%.2f", confidence)
	if !isTTY() {
		return text
	}
	switch {
	case confidence >= 0.8:
		return green(text)
	case confidence >= 0.5:
		return yellow(text)
	default:
		return red(text)
	}
}

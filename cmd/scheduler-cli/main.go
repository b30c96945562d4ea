package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coursesched/internal/domain"
	"coursesched/internal/engine"
	"coursesched/pkg/export"
)

var (
	inputPath  string
	outputPath string
	reportPath string
	reportFmt  string
)

func main() {
	root := &cobra.Command{
		Use:   "scheduler-cli",
		Short: "Offline course-scheduling solver",
		Long:  "Runs the scheduling engine against a SchedulingInput JSON file without standing up the HTTP server.",
	}

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve a scheduling input and print the result envelope",
		RunE:  runSolve,
	}
	solveCmd.Flags().StringVar(&inputPath, "input", "", "path to a SchedulingInput JSON file (required)")
	solveCmd.Flags().StringVar(&outputPath, "output", "", "write the result envelope here instead of stdout")
	solveCmd.Flags().StringVar(&reportPath, "report", "", "also render a report (csv/pdf) to this path")
	solveCmd.Flags().StringVar(&reportFmt, "report-format", "csv", "report format: csv or pdf")
	_ = solveCmd.MarkFlagRequired("input")
	root.AddCommand(solveCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("parsing input file: %w", err)
	}

	var input domain.SchedulingInput
	if wrapped, ok := probe["input"]; ok {
		if err := json.Unmarshal(wrapped, &input); err != nil {
			return fmt.Errorf("parsing input file: %w", err)
		}
	} else if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("parsing input file: %w", err)
	}

	result := engine.Solve(context.Background(), input, engine.DefaultConfig(), nil)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	if outputPath == "" {
		fmt.Println(string(out))
	} else if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}

	if reportPath != "" {
		if err := writeReport(result); err != nil {
			return err
		}
	}

	return nil
}

func writeReport(result domain.ScheduleResult) error {
	dataset := export.FromResult(result)

	var rendered []byte
	var err error
	switch reportFmt {
	case "pdf":
		rendered, err = (export.PDFExporter{}).Render(dataset, "Schedule Report")
	default:
		rendered, err = (export.CSVExporter{}).Render(dataset)
	}
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return os.WriteFile(reportPath, rendered, 0o644)
}

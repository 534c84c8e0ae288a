package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/beechford-estate/smart-plans/pkg/models/api"
	"github.com/beechford-estate/smart-plans/pkg/services/ipa"
	"github.com/beechford-estate/smart-plans/pkg/services/optimizer"
)

var timeBudget time.Duration

func main() {
	rootCmd := &cobra.Command{
		Use:   "smart-plans",
		Short: "Run Smart Plans models against a JSON request file",
	}
	rootCmd.PersistentFlags().DurationVar(&timeBudget, "time-budget", 10*time.Second,
		"Per-solve time budget")

	rootCmd.AddCommand(
		solveCommand("deal-picker", optimizer.SolveDealPicker),
		solveCommand("debt-stack", optimizer.SolveDebtStack),
		solveCommand("leasing-mix", optimizer.SolveLeasingMix),
		solveCommand("capex-phasing", optimizer.SolveCapexPhasing),
		calculateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func solveCommand[Req, Resp any](name string, fn func(context.Context, Req) (*Resp, *api.InfeasibleError, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <request.json>",
		Short: "Solve a " + name + " request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req Req
			if err := readRequest(args[0], &req); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeBudget)
			defer cancel()

			resp, infErr, err := fn(ctx, req)
			if err != nil {
				return err
			}
			if infErr != nil {
				return printJSON(infErr)
			}
			return printJSON(resp)
		},
	}
}

func calculateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "calculate <request.json>",
		Short: "Run the IPA amortization calculator",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var inp ipa.Inputs
			if err := readRequest(args[0], &inp); err != nil {
				return err
			}
			res, err := ipa.Run(inp)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
}

func readRequest(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read request file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse request file: %w", err)
	}
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "detect [text...]",
		Short: "Detect the language of each argument, or of each stdin line",
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := buildComponents(cmd.Context(), ctx.cfg, ctx.logger)
			if err != nil {
				return err
			}
			defer comps.Close()

			inputs, err := collectInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			type detectRow struct {
				Input      string   `json:"input"`
				Normalized string   `json:"normalized"`
				Language   string   `json:"language"`
				Confidence *float64 `json:"confidence"`
				Source     string   `json:"source"`
			}

			results := make([]detectRow, 0, len(inputs))
			for _, in := range inputs {
				out, err := comps.service.Detect(cmd.Context(), in)
				if err != nil {
					return fmt.Errorf("detect %q: %w", in, err)
				}
				results = append(results, detectRow{
					Input:      in,
					Normalized: out.Text,
					Language:   out.Language.String(),
					Confidence: out.Confidence,
					Source:     out.Source,
				})
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Input, r.Normalized, r.Language, formatConfidence(r.Confidence), r.Source})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Input", "Normalized", "Language", "Confidence", "Source"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON instead of a table")
	return cmd
}

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "normalize [text...]",
		Short: "Convert Zawgyi-encoded text to standard Unicode",
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := buildComponents(cmd.Context(), ctx.cfg, ctx.logger)
			if err != nil {
				return err
			}
			defer comps.Close()

			inputs, err := collectInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(inputs))
			for _, in := range inputs {
				res, err := comps.service.Normalize(in)
				if err != nil {
					return fmt.Errorf("normalize %q: %w", in, err)
				}
				if !verbose {
					fmt.Fprintln(cmd.OutOrStdout(), res.Text)
					continue
				}
				rows = append(rows, []string{
					in,
					res.Text,
					strconv.FormatFloat(res.ZawgyiProbability, 'f', 3, 64),
					strconv.FormatBool(res.Converted),
				})
			}

			if verbose {
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Input", "Unicode", "Zawgyi P", "Converted"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detector probability per input")
	return cmd
}

// collectInputs returns args, or the non-blank lines of r when args is empty.
func collectInputs(r io.Reader, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	var inputs []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			inputs = append(inputs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input text: pass arguments or pipe lines on stdin")
	}
	return inputs, nil
}

func formatConfidence(c *float64) string {
	if c == nil {
		return "-"
	}
	return strconv.FormatFloat(*c, 'f', 3, 64)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

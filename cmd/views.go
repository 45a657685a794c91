package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/KaramelBytes/chartloom-cli/internal/pipeline"
	"github.com/KaramelBytes/chartloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	viewsRaw        bool
	viewsOutputPath string
	viewsFormat     string
	viewsPretty     bool
)

var viewsCmd = &cobra.Command{
	Use:   "views <file>",
	Short: "Derive the five chart views from an album record payload",
	Long: `Reads a payload file and runs the ingest/aggregate pipeline. By default the
file is expected to hold a data-URI style payload ("<meta>,<base64-body>");
with --raw it is read as a plain JSON array of album records.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}

		var res pipeline.Result
		if viewsRaw {
			res = pipeline.RunRecords(payload)
		} else {
			res = pipeline.Run(payload)
		}
		if !res.OK() {
			return errors.New(res.Error)
		}

		format := viewsFormat
		if format == "" && cfg != nil {
			format = cfg.OutputFormat
		}
		pretty := viewsPretty
		if !cmd.Flags().Changed("pretty") && cfg != nil {
			pretty = cfg.PrettyJSON
		}

		var out []byte
		switch format {
		case "markdown":
			out = []byte(res.Views.Markdown())
		case "", "json":
			if pretty {
				out, err = utils.PrettyJSON(res.Views)
			} else {
				out, err = utils.CompactJSON(res.Views)
			}
			if err != nil {
				return err
			}
			out = append(out, '\n')
		default:
			return fmt.Errorf("unsupported --format: %s (use json or markdown)", format)
		}

		if viewsOutputPath != "" {
			if err := utils.SafeWriteFile(viewsOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote views to %s\n", viewsOutputPath)
			return nil
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewsCmd)
	viewsCmd.Flags().BoolVar(&viewsRaw, "raw", false, "treat the file as a plain JSON record array (no data-URI envelope)")
	viewsCmd.Flags().StringVarP(&viewsOutputPath, "output", "o", "", "optional path to write the views")
	viewsCmd.Flags().StringVar(&viewsFormat, "format", "", "output format: 'json' | 'markdown' (default from config)")
	viewsCmd.Flags().BoolVar(&viewsPretty, "pretty", true, "indent JSON output")
}

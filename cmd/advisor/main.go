package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"agri-advisor/internal/engine"
	"agri-advisor/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

var catalogPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "advisor",
		Short: "Agricultural advisor - offline risk and recommendation engine",
		Long: `Evaluates saved OpenWeather payloads (current conditions, 5-day/3-hour
forecast and air pollution) into risk indices, spraying windows, crop
rankings and per-day activity verdicts without calling any API.`,
	}

	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Path to a crop catalog YAML file (default: built-in catalog)")

	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(cropsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// evaluateCmd runs the engine over saved provider responses
func evaluateCmd() *cobra.Command {
	var currentFile, forecastFile, airFile, crop, at, output string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate saved weather payloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := engine.LoadCatalog(catalogPath)
			if err != nil {
				return err
			}

			payload := services.ProviderPayload{Crop: crop}
			if err := readJSON(currentFile, &payload.Current); err != nil {
				return err
			}
			if err := readJSON(forecastFile, &payload.Forecast); err != nil {
				return err
			}
			if err := readJSON(airFile, &payload.Air); err != nil {
				return err
			}
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at format (use RFC3339): %w", err)
				}
				payload.Now = &t
			}
			if err := validator.New().Struct(&payload); err != nil {
				return fmt.Errorf("need --current or --forecast: %w", err)
			}

			report := engine.Evaluate(payload.Input(), catalog)

			switch output {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			case "text":
				printReport(cmd.OutOrStdout(), report)
				return nil
			default:
				return fmt.Errorf("unknown output format %q (use json or text)", output)
			}
		},
	}

	cmd.Flags().StringVar(&currentFile, "current", "", "Current weather JSON file")
	cmd.Flags().StringVar(&forecastFile, "forecast", "", "Forecast JSON file")
	cmd.Flags().StringVar(&airFile, "air", "", "Air pollution JSON file")
	cmd.Flags().StringVar(&crop, "crop", "", "Crop to highlight and use for heat limits")
	cmd.Flags().StringVar(&at, "at", "", "Evaluation time in RFC3339 (default: now)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	return cmd
}

// cropsCmd lists the crop catalog
func cropsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crops",
		Short: "List the crop catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := engine.LoadCatalog(catalogPath)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CROP\tSEASON\tTEMP °C\tHUMIDITY %\tWATER\tDURATION\tMSP")
			for _, c := range catalog.Crops() {
				fmt.Fprintf(w, "%s\t%s\t%.0f-%.0f\t%.0f-%.0f\t%s\t%s\t%.0f\n",
					c.Name, c.Season,
					c.Temperature.Min, c.Temperature.Max,
					c.Humidity.Min, c.Humidity.Max,
					c.WaterNeed, c.Duration, c.MSP)
			}
			return w.Flush()
		},
	}
}

// readJSON decodes path into out; an empty path leaves out untouched.
func readJSON(path string, out interface{}) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func printReport(out io.Writer, r engine.Report) {
	fmt.Fprintf(out, "Date %s, season %s\n\n", r.Date, r.Season)

	fmt.Fprintln(out, "Risk indices:")
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, item := range []struct {
		name  string
		score engine.RiskScore
	}{
		{"Spray safety", r.Risks.Spray},
		{"Disease pressure", r.Risks.Disease},
		{"Heat stress", r.Risks.Heat},
		{"Frost risk", r.Risks.Frost},
		{"Evapotranspiration", r.Risks.ET0},
	} {
		if !item.score.Available {
			fmt.Fprintf(w, "  %s\t-\t%s\n", item.name, item.score.Label)
			continue
		}
		fmt.Fprintf(w, "  %s\t%g\t%s\t%s\n", item.name, item.score.Value, item.score.Label, item.score.Advice)
	}
	w.Flush()

	if len(r.BestWindow) > 0 {
		first, last := r.BestWindow[0], r.BestWindow[len(r.BestWindow)-1]
		fmt.Fprintf(out, "\nBest spraying window: %s to %s\n", first.Time.Format("Mon 15:04"), last.Time.Format("Mon 15:04"))
	} else {
		fmt.Fprintln(out, "\nNo good spraying window in the next 24h")
	}

	if r.Air != nil {
		fmt.Fprintf(out, "Air quality: %s (AQI %d). %s\n", r.Air.AQILabel, r.Air.AQI, r.Air.Advice)
	}

	fmt.Fprintln(out, "\nOutlook:")
	for i, d := range r.Outlook {
		statuses := make([]string, 0, len(r.Activities[i].Assessments))
		for _, a := range r.Activities[i].Assessments {
			statuses = append(statuses, fmt.Sprintf("%s=%s", a.Activity, a.Status))
		}
		fmt.Fprintf(out, "  %s %-7s %s [%s]\n", d.Day.Date, d.Level, d.Message, strings.Join(statuses, " "))
	}

	fmt.Fprintln(out, "\nRecommended crops:")
	for _, c := range r.Crops.Recommended {
		fmt.Fprintf(out, "  %-12s %3.0f  %s\n", c.Crop.Name, c.Score, c.Fit)
	}
	if r.YourCrop != nil {
		fmt.Fprintf(out, "\nYour crop %s: %.0f (%s)\n", r.YourCrop.Crop.Name, r.YourCrop.Score, r.YourCrop.Fit)
	}

	for _, a := range r.Alerts {
		fmt.Fprintf(out, "! %s: %s\n", a.Kind, a.Message)
	}
}

package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/laborlens/jobmarket-cli/internal/feature"
	"github.com/laborlens/jobmarket-cli/internal/model"
	"github.com/laborlens/jobmarket-cli/internal/normalize"
	"github.com/laborlens/jobmarket-cli/internal/pipeline"
	"github.com/laborlens/jobmarket-cli/internal/salary"
)

var (
	predictTitle      string
	predictLocation   string
	predictContract   string
	predictExperience string
	predictYears      float64
	predictTech       []string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict annual salary for a job profile",
	Long:  "Loads the trained model and feature schema and prints the predicted annual salary in EUR for the given profile.",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := pipeline.NewPaths(cfg.Data)

		m, err := salary.Load(paths.Model)
		if err != nil {
			return err
		}
		schema, err := feature.LoadSchema(paths.Schema)
		if err != nil {
			return err
		}

		contract, ok := normalize.CanonicalContract(predictContract)
		if !ok {
			return eris.Errorf("predict: unrecognized contract type %q", predictContract)
		}
		experience, ok := normalize.CanonicalExperience(predictExperience)
		if !ok {
			return eris.Errorf("predict: unrecognized experience level %q", predictExperience)
		}

		locs := normalize.NewLocationTable(normalize.DefaultLocations)
		category, remote := locs.Lookup(predictLocation)

		rec := model.JobRecord{
			Title:        predictTitle,
			Location:     predictLocation,
			LocationCat:  category,
			Contract:     contract,
			Remote:       remote,
			Experience:   experience,
			Technologies: model.NewTechSet(predictTech...),
		}
		if cmd.Flags().Changed("experience-years") {
			rec.ExpYears = &predictYears
		}

		prediction, err := m.Predict(rec, schema)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"salary_annual_eur": prediction,
			"schema_version":    m.SchemaVersion,
		})
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictTitle, "title", "", "job title (required)")
	predictCmd.Flags().StringVar(&predictLocation, "location", "", "raw location text")
	predictCmd.Flags().StringVar(&predictContract, "contract", "", "contract type (full-time, part-time, contract, internship; Spanish wording like indefinido works too)")
	predictCmd.Flags().StringVar(&predictExperience, "experience", "", "experience level (junior, mid, senior)")
	predictCmd.Flags().Float64Var(&predictYears, "experience-years", 0, "years of experience")
	predictCmd.Flags().StringSliceVar(&predictTech, "tech", nil, "technologies (comma-separated)")
	_ = predictCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(predictCmd)
}

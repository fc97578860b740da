package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/forms"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/llm"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/profile"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/responses"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/schemas"
)

var (
	analyzeURL     string
	analyzeProfile string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a job application form",
	Long:  "Fetches a job posting URL, extracts and categorizes its application form fields, and, when a profile is given, prints the responses that would be submitted. Nothing is sent to the destination.",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeURL, "url", "u", "", "Job posting URL (required)")
	analyzeCmd.Flags().StringVarP(&analyzeProfile, "profile", "p", "", "Path to candidate profile JSON (optional)")

	if err := analyzeCmd.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	form, err := forms.Scrape(ctx, analyzeURL, nil)
	if err != nil {
		return fmt.Errorf("failed to analyze form: %w", err)
	}

	fmt.Printf("URL:        %s\n", analyzeURL)
	fmt.Printf("Flow:       %s\n", form.Flow)
	fmt.Printf("Job:        %s at %s\n", form.JobDetails.Title, form.JobDetails.Company)
	fmt.Printf("Submit:     %s %s\n", form.SubmitMethod, form.SubmitAction)
	fmt.Printf("Confidence: %.0f%%\n", forms.Confidence(form.Fields)*100)
	fmt.Printf("Estimated:  %ds\n\n", forms.EstimateSeconds(form.Fields))

	fmt.Printf("Fields (%d):\n", len(form.Fields))
	for _, field := range form.Fields {
		required := ""
		if field.Required {
			required = " (required)"
		}
		fmt.Printf("  %-24s %-16s %s%s\n", field.Name, field.Category, field.Label, required)
	}

	if analyzeProfile == "" {
		return nil
	}

	prof, err := loadProfile(analyzeProfile)
	if err != nil {
		return err
	}

	generator := responses.NewGenerator(buildClient(ctx))
	planned := generator.Generate(ctx, form, prof)

	fmt.Printf("\nPlanned responses (%d):\n", len(planned))
	for _, field := range form.Fields {
		if value, ok := planned[field.Name]; ok {
			fmt.Printf("  %-24s %s\n", field.Name, value)
		}
	}
	return nil
}

// loadProfile reads and schema-validates a candidate profile JSON file.
func loadProfile(path string) (*profile.UserProfile, error) {
	schemaPath := schemas.ResolveSchemaPath("schemas/profile.schema.json")
	if schemaPath != "" {
		if err := schemas.ValidateJSON(schemaPath, path); err != nil {
			return nil, fmt.Errorf("invalid profile: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var prof profile.UserProfile
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return &prof, nil
}

// buildClient returns an LLM client when GEMINI_API_KEY is set, nil
// otherwise. A nil client makes the generator fall back to template text.
func buildClient(ctx context.Context) llm.Client {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil
	}
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: LLM client unavailable, using template responses: %v\n", err)
		return nil
	}
	return client
}

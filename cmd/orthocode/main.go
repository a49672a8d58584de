package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"

	"orthocode/internal/config"
	"orthocode/internal/domain"
	"orthocode/internal/gateway"
	_ "orthocode/internal/gateway/claude"
	_ "orthocode/internal/gateway/gemini"
	_ "orthocode/internal/gateway/openai"
	"orthocode/internal/handler"
	"orthocode/internal/logging"
	"orthocode/internal/port"
	"orthocode/internal/ratelimit"
	"orthocode/internal/service"
	"orthocode/internal/validator"
)

type encounterFlags struct {
	text        string
	inputFile   string
	laterality  string
	patientType string
	setting     string
	timeSpent   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "orthocode",
		Short:         "Orthopedic CPT/ICD-10 coding assistant",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(newPromptCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newProvidersCmd())
	return rootCmd
}

func bindEncounterFlags(cmd *cobra.Command, f *encounterFlags) {
	cmd.Flags().StringVar(&f.text, "text", "", "clinical documentation text")
	cmd.Flags().StringVar(&f.inputFile, "input-file", "", "read clinical documentation from a file (- for stdin)")
	cmd.Flags().StringVar(&f.laterality, "laterality", "", "procedure laterality")
	cmd.Flags().StringVar(&f.patientType, "patient-type", "", "new or established patient")
	cmd.Flags().StringVar(&f.setting, "setting", "", "place of service")
	cmd.Flags().StringVar(&f.timeSpent, "time-spent", "", "documented time")
}

func newPromptCmd() *cobra.Command {
	var f encounterFlags
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Render the system and user prompts for an encounter without calling a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := f.requestBody(cmd.InOrStdin())
			if err != nil {
				return err
			}
			req, err := validator.ReadCodingRequest(bytes.NewReader(body))
			if err != nil {
				return writeCodingError(cmd.OutOrStdout(), err)
			}
			prompts := gateway.BuildPrompts(req)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# prompt version: %s\n\n", gateway.SystemPromptVersion)
			fmt.Fprintf(out, "## system\n%s\n\n## user\n%s\n", prompts.SystemPrompt, prompts.UserPrompt)
			return nil
		},
	}
	bindEncounterFlags(cmd, &f)
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var f encounterFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run an encounter through the configured AI provider and print the coding result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger := logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr())

			body, err := f.requestBody(cmd.InOrStdin())
			if err != nil {
				return err
			}

			var gw port.AIGateway
			gw, err = gateway.New(&cfg.Gateway)
			if err != nil && !errors.Is(err, gateway.ErrNotConfigured) {
				return fmt.Errorf("failed to initialize AI gateway: %w", err)
			}
			if c, ok := gw.(io.Closer); ok {
				defer func() { _ = c.Close() }()
			}

			// A one-shot run never needs the shared window.
			rl := cfg.RateLimit
			rl.Backend = "memory"
			limiter, err := ratelimit.NewFromConfig(&rl)
			if err != nil {
				return err
			}
			svc := service.NewCodingService(limiter, gw, logger, noop.NewTracerProvider().Tracer("orthocode"))

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Gateway.Timeout())
			defer cancel()
			result, err := svc.Generate(ctx, bytes.NewReader(body))
			if err != nil {
				return writeCodingError(cmd.OutOrStdout(), err)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	bindEncounterFlags(cmd, &f)
	return cmd
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the registered AI gateway providers",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range gateway.Providers() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

// requestBody assembles the same JSON body the HTTP endpoint accepts so the CLI
// goes through identical validation.
func (f *encounterFlags) requestBody(stdin io.Reader) ([]byte, error) {
	text := f.text
	switch {
	case f.inputFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	case f.inputFile != "":
		data, err := os.ReadFile(f.inputFile)
		if err != nil {
			return nil, fmt.Errorf("reading input file: %w", err)
		}
		text = string(data)
	}

	return json.Marshal(handler.GenerateCodesRequest{
		ClinicalInput: text,
		Laterality:    f.laterality,
		PatientType:   f.patientType,
		Setting:       f.setting,
		TimeSpent:     f.timeSpent,
	})
}

func writeCodingError(w io.Writer, err error) error {
	ce := domain.AsCodingError(err)
	if werr := writeJSON(w, handler.NewErrorResponse(ce)); werr != nil {
		return werr
	}
	return ce
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resume-reviewer/internal/bootstrap"
	"resume-reviewer/internal/extract"
	"resume-reviewer/internal/llm"
	"resume-reviewer/internal/review"
	"resume-reviewer/internal/shared/config"
	"resume-reviewer/internal/shared/telemetry"
)

const app = "prompttest"

var rootCmd = &cobra.Command{
	Use:          app + " --resume path/to/resume.pdf",
	Short:        "Run a local PDF resume through extraction and analysis and print the critique",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runReview(cmd.Context(), os.Stdout)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("resume", "r", "", "path to a PDF resume")
	flags.String("provider", "", "LLM provider (gemini or openai)")
	flags.String("model", "", "LLM model")
	flags.Duration("timeout", 0, "analysis timeout")
	flags.Bool("dry-run", false, "print the prompt instead of calling the provider")
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.BoolP("json", "j", false, "json format for logging")

	for _, name := range []string{"resume", "provider", "model", "timeout", "dry-run", "debug", "json"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			log.Fatalf("binding %s flag: %v", name, err)
		}
	}
	if err := viper.BindEnv("provider", "LLM_PROVIDER"); err != nil {
		log.Fatalf("binding LLM_PROVIDER environment variable: %v", err)
	}
	if err := viper.BindEnv("model", "LLM_MODEL"); err != nil {
		log.Fatalf("binding LLM_MODEL environment variable: %v", err)
	}
}

func runReview(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := telemetry.Init(viper.GetBool("json"), viper.GetBool("debug")); err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer telemetry.Sync()

	path := strings.TrimSpace(viper.GetString("resume"))
	if path == "" {
		return errors.New("--resume is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}

	cfg, cfgErr := config.Load()
	applyOverrides(&cfg)

	var analyzer llm.Analyzer
	if viper.GetBool("dry-run") {
		analyzer = llm.AnalyzerFunc(func(_ context.Context, prompt string) (string, error) {
			return prompt, nil
		})
	} else {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfgErr != nil && !errors.Is(cfgErr, config.ErrConfigurationMissing) {
			return cfgErr
		}
		analyzer, err = bootstrap.NewAnalyzer(ctx, cfg)
		if err != nil {
			return err
		}
		analyzer = llm.NewRetrying(analyzer, cfg.LLMRetryAttempts, time.Second)
	}

	svc := review.NewService(extract.NewPDFExtractor(), analyzer, review.Limits{
		MaxUploadBytes:  cfg.MaxUploadBytes,
		MaxResumeChars:  cfg.MaxResumeChars,
		MinResumeChars:  cfg.MinResumeChars,
		AnalysisTimeout: cfg.AnalysisTimeout,
	})
	res, err := svc.Review(ctx, review.Upload{
		FileName:    filepath.Base(path),
		ContentType: contentTypeFor(path),
		Size:        int64(len(data)),
		Data:        data,
	})
	if err != nil {
		return err
	}

	telemetry.Info("prompttest.done", map[string]any{
		"provider":     cfg.LLMProvider,
		"model":        cfg.LLMModel,
		"resume_chars": res.ResumeChars,
		"truncated":    res.Truncated,
		"duration_ms":  res.Duration.Milliseconds(),
	})
	_, err = fmt.Fprintln(out, res.Analysis)
	return err
}

func applyOverrides(cfg *config.Config) {
	if provider := strings.TrimSpace(viper.GetString("provider")); provider != "" && provider != cfg.LLMProvider {
		cfg.LLMProvider = strings.ToLower(provider)
		cfg.LLMModel = config.DefaultModel(cfg.LLMProvider)
	}
	if model := strings.TrimSpace(viper.GetString("model")); model != "" {
		cfg.LLMModel = model
	}
	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		cfg.AnalysisTimeout = timeout
	}
}

func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

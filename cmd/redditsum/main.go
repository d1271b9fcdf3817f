package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/RedditSummarizer/internal/config"
	"github.com/TobiSchelling/RedditSummarizer/internal/llm"
	"github.com/TobiSchelling/RedditSummarizer/internal/logging"
	"github.com/TobiSchelling/RedditSummarizer/internal/present"
	"github.com/TobiSchelling/RedditSummarizer/internal/reddit"
	"github.com/TobiSchelling/RedditSummarizer/internal/server"
	"github.com/TobiSchelling/RedditSummarizer/internal/summarize"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "redditsum",
	Short:   "AI summaries of Reddit threads",
	Long:    "redditsum fetches a Reddit thread, asks an LLM for a structured summary and shows it on the command line or in a small web UI.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			logging.Setup(os.Stderr, "info", verbose)
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logging.Setup(os.Stderr, cfg.Logging.Level, verbose)
		if path != "" {
			log.WithField("path", path).Debug("Loaded config")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summarizeCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("redditsum", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/redditsum/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to choose the LLM provider, then export the API key it names.")
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and web UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		renderer, err := present.NewRenderer(cfg.Presentation.Presenter, summarize.Labels())
		if err != nil {
			return err
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(svc, renderer, server.Options{CORSOrigin: cfg.Server.CORSOrigin}, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 5000, "Port to run server on (overrides PORT and config)")
}

// --- summarize command ---

var (
	rawOutput bool
	presenter string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [url]",
	Short: "Summarize one Reddit thread to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := cfg.Presentation.Presenter
		if presenter != "" {
			name = presenter
		}
		renderer, err := present.NewRenderer(name, summarize.Labels())
		if err != nil {
			return err
		}

		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}

		result, err := svc.Summarize(cmd.Context(), args[0])
		if err != nil {
			var ve *summarize.ValidationError
			if errors.As(err, &ve) {
				return err
			}
			return fmt.Errorf("%w (run with -v for details)", err)
		}

		out := cmd.OutOrStdout()
		if rawOutput {
			fmt.Fprintln(out, result.Summary)
			return nil
		}
		printResult(out, result, renderer.Render(result.Summary))
		return nil
	},
}

func init() {
	summarizeCmd.Flags().BoolVar(&rawOutput, "raw", false, "Print the model's text without sectioning")
	summarizeCmd.Flags().StringVar(&presenter, "presenter", "", "Section renderer: auto, sections or numbered")
}

func printResult(w io.Writer, result *summarize.Result, parsed present.ParsedSummary) {
	post := result.Post
	fmt.Fprintf(w, "%s\n", post.Title)
	fmt.Fprintf(w, "r/%s · u/%s · %d upvotes · %d comments\n", post.Subreddit, post.Author, post.Score, post.NumComments)
	fmt.Fprintf(w, "Analyzed %d comments\n", result.CommentsAnalyzed)

	for _, sec := range parsed.Sections {
		fmt.Fprintln(w)
		if sec.Label != "" {
			fmt.Fprintln(w, sec.Label)
			fmt.Fprintln(w, strings.Repeat("-", len(sec.Label)))
		}
		if sec.IsList() {
			for _, b := range sec.Bullets {
				fmt.Fprintf(w, "  * %s\n", b)
			}
			continue
		}
		fmt.Fprintln(w, sec.Text)
	}
}

func newService(ctx context.Context) (*summarize.Service, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	summ := cfg.Summarization
	provider, err := llm.CreateProvider(ctx, llm.Config{
		Provider:  summ.Provider,
		Model:     summ.Model,
		APIKey:    summ.APIKey,
		BaseURL:   summ.BaseURL,
		OllamaURL: summ.OllamaURL,
		Timeout:   summ.Timeout.Std(),
	})
	if err != nil {
		return nil, err
	}

	fetcher := reddit.NewFetcher(reddit.Options{
		UserAgent:   cfg.Reddit.UserAgent,
		FetchLimit:  cfg.Reddit.FetchLimit,
		MaxComments: cfg.Reddit.MaxComments,
		Timeout:     cfg.Reddit.Timeout.Std(),
	})

	return summarize.NewService(fetcher, summarize.NewSummarizer(provider), cfg.Reddit.Domain), nil
}

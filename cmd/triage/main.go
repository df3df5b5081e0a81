package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/inbox-triage/triage/internal/agent"
	"github.com/inbox-triage/triage/internal/config"
	"github.com/inbox-triage/triage/internal/sample"
	"github.com/inbox-triage/triage/internal/web"
)

var cfgFile string

func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

func main() {
	// Optional .env for local overrides, missing file is fine
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "triage",
		Short: "Triage - Rule-based inbox triage agent",
		Long: `Triage classifies inbound email into categories, summarizes each
message, derives a priority, and proposes a follow-up action such as a
reply draft, an unsubscribe attempt, or a review flag.

Processing is fully deterministic and runs locally.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.triage/config.yaml)")

	rootCmd.AddCommand(processCmd())
	rootCmd.AddCommand(sampleCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func processCmd() *cobra.Command {
	var (
		useSample bool
		pretty    bool
	)

	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Process a batch of emails and print the decisions",
		Long: `Read a JSON payload of the form {"emails": [...]} from a file
(or stdin when the file is "-" or omitted), run the triage pipeline, and
print the agent response as JSON on stdout.

Examples:
  triage process inbox.json
  cat inbox.json | triage process
  triage process --sample --pretty`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runProcess(path, useSample, pretty)
		},
	}

	cmd.Flags().BoolVar(&useSample, "sample", false, "Process the built-in sample inbox instead of reading input")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")

	return cmd
}

func sampleCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print the built-in sample inbox as JSON",
		Long:  "Print the embedded demo inbox in the payload format accepted by 'triage process'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(pretty)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")

	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local triage dashboard",
		Long: `Start a local web server with a browser-based dashboard for the
triage agent. The dashboard shows the sample inbox and lets you run the
pipeline and inspect the resulting decisions.

The server listens on localhost only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config)")

	return cmd
}

func loadAgent() (*config.Config, *agent.Agent, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	triageAgent, err := agent.New(agent.Options{SignOff: cfg.Agent.SignOff})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return cfg, triageAgent, nil
}

func runProcess(path string, useSample, pretty bool) error {
	_, triageAgent, err := loadAgent()
	if err != nil {
		return err
	}

	var emails []agent.Email
	if useSample {
		emails, err = sample.Inbox()
		if err != nil {
			return fmt.Errorf("failed to load sample inbox: %w", err)
		}
	} else {
		emails, err = readEmails(path)
		if err != nil {
			return err
		}
	}

	resp := triageAgent.ProcessInbox(emails)
	return writeJSON(os.Stdout, resp, pretty)
}

func readEmails(path string) ([]agent.Email, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var payload struct {
		Emails *[]agent.Email `json:"emails"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	if payload.Emails == nil {
		return nil, fmt.Errorf("input is missing the required \"emails\" field")
	}
	return *payload.Emails, nil
}

func runSample(pretty bool) error {
	emails, err := sample.Inbox()
	if err != nil {
		return fmt.Errorf("failed to load sample inbox: %w", err)
	}

	payload := map[string]interface{}{"emails": emails}
	return writeJSON(os.Stdout, payload, pretty)
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func runServe(cmd *cobra.Command, port int) error {
	cfg, triageAgent, err := loadAgent()
	if err != nil {
		return err
	}

	logger := cfg.SetupLogger()

	if !cmd.Flags().Changed("port") {
		port = cfg.Server.Port
	}

	server, err := web.NewServer(port, cfg, triageAgent, logger)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Starting triage dashboard at http://localhost:%d\n", port)
	fmt.Println("Press Ctrl+C to stop")

	return server.Start()
}

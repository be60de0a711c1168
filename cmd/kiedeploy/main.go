package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/artpar/kiedeploy/internal/config"
	"github.com/artpar/kiedeploy/internal/core/builder"
	"github.com/artpar/kiedeploy/internal/core/bundle"
	"github.com/artpar/kiedeploy/internal/core/naming"
	"github.com/artpar/kiedeploy/internal/core/scenario"
	"github.com/artpar/kiedeploy/internal/core/validation"
	"github.com/artpar/kiedeploy/internal/shell/cluster"
	"github.com/artpar/kiedeploy/internal/shell/deployer"
	"github.com/artpar/kiedeploy/internal/shell/readiness"
	"github.com/artpar/kiedeploy/internal/shell/store"
	"github.com/artpar/kiedeploy/internal/shell/template"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Exit codes
const (
	ExitSuccess       = 0
	ExitConfigError   = 1
	ExitScenarioError = 2
	ExitDeployError   = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Parse command line flags
	flags := flag.NewFlagSet("kiedeploy", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "Path to config file")
	scenarioPath := flags.String("scenario", "", "Path to scenario file")
	namespace := flags.String("namespace", "", "Target namespace (generated when empty)")
	render := flags.Bool("render", false, "Print the built objects as YAML instead of deploying")
	waitRoutes := flags.Bool("wait", false, "Wait for route endpoints after deploying")
	showHistory := flags.Bool("history", false, "List recorded submissions and exit")
	application := flags.String("application", "", "With -history, only list submissions of this application")
	submissionID := flags.String("submission", "", "With -history, show one submission by ID")
	showVersion := flags.Bool("version", false, "Print version and exit")
	if err := flags.Parse(args); err != nil {
		return ExitConfigError
	}

	// Handle version flag
	if *showVersion {
		fmt.Fprintf(stdout, "kiedeploy %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	// Load configuration
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	logger := SetupLogger(cfg, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *showHistory {
		return showSubmissions(ctx, cfg, historyQuery{application: *application, id: *submissionID}, stdout, logger)
	}

	if *scenarioPath == "" {
		fmt.Fprintln(stderr, "missing -scenario")
		flags.Usage()
		return ExitScenarioError
	}

	resolver, err := config.Load(cfg.Properties.File)
	if err != nil {
		logger.Error("failed to load properties", "error", err, "file", cfg.Properties.File)
		return ExitConfigError
	}

	file, err := LoadScenarioFile(*scenarioPath)
	if err != nil {
		logger.Error("failed to load scenario", "error", err)
		return ExitScenarioError
	}

	sc, err := file.Build(builder.Options{
		Config: resolver,
		Source: templateSource(cfg, logger),
	})
	if err != nil {
		logger.Error("failed to build scenario", "error", err)
		return ExitScenarioError
	}

	if *render {
		if err := renderScenario(stdout, sc); err != nil {
			logger.Error("failed to render scenario", "error", err)
			return ExitScenarioError
		}
		return ExitSuccess
	}

	if allowed, reason := validation.CanSubmit(bundlesOf(sc)); !allowed {
		logger.Error("scenario cannot be submitted", "reason", reason)
		return ExitScenarioError
	}

	return deploy(ctx, cfg, sc, targetNamespace(*namespace, cfg, sc), *waitRoutes, stdout, logger)
}

func bundlesOf(sc *scenario.Scenario) []*bundle.Bundle {
	deployments := sc.Deployments()
	out := make([]*bundle.Bundle, len(deployments))
	for i, d := range deployments {
		out[i] = d.Bundle()
	}
	return out
}

// templateSource searches the configured directory first, then the
// built-in templates.
func templateSource(cfg *Config, logger *slog.Logger) *template.FSSource {
	if cfg.Templates.Dir == "" {
		return template.NewFSSource(logger, template.Embedded())
	}
	return template.NewFSSource(logger, os.DirFS(cfg.Templates.Dir), template.Embedded())
}

func targetNamespace(flagValue string, cfg *Config, sc *scenario.Scenario) string {
	switch {
	case flagValue != "":
		return flagValue
	case cfg.Kube.Namespace != "":
		return cfg.Kube.Namespace
	default:
		return naming.Namespace(sc.ApplicationName)
	}
}

func renderScenario(w io.Writer, sc *scenario.Scenario) error {
	for i, d := range sc.Deployments() {
		out, err := template.Render(d.Bundle())
		if err != nil {
			return fmt.Errorf("deployment %d: %w", i, err)
		}
		if i > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
	return nil
}

func deploy(ctx context.Context, cfg *Config, sc *scenario.Scenario, namespace string, waitRoutes bool, stdout io.Writer, logger *slog.Logger) int {
	client, err := cluster.NewClientFromKubeconfig(cfg.Kube.Kubeconfig, logger)
	if err != nil {
		logger.Error("failed to connect to cluster", "error", err)
		return ExitConfigError
	}

	var history deployer.History
	if cfg.History.Enabled {
		s, err := openHistory(cfg.History.DSN)
		if err != nil {
			logger.Error("failed to open history", "error", err, "dsn", cfg.History.DSN)
			return ExitConfigError
		}
		defer s.Close()
		history = s
	}

	var waiter deployer.Waiter
	if waitRoutes {
		waiter = &readiness.Waiter{
			Interval: cfg.Readiness.Interval,
			Timeout:  cfg.Readiness.Timeout,
			Logger:   logger,

			InsecureSkipVerify: cfg.Readiness.Insecure,
		}
	}

	outcomes, err := deployer.New(client, waiter, history, logger).Deploy(ctx, sc, namespace)
	printOutcomes(stdout, outcomes)
	if err != nil {
		logger.Error("deployment failed", "error", err)
		return ExitDeployError
	}
	return ExitSuccess
}

func openHistory(dsn string) (store.Store, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	return store.NewSQLiteStore(dsn)
}

// historyQuery selects what -history prints: one submission by ID, the
// submissions of one application, or everything.
type historyQuery struct {
	application string
	id          string
}

func showSubmissions(ctx context.Context, cfg *Config, q historyQuery, stdout io.Writer, logger *slog.Logger) int {
	s, err := openHistory(cfg.History.DSN)
	if err != nil {
		logger.Error("failed to open history", "error", err, "dsn", cfg.History.DSN)
		return ExitConfigError
	}
	defer s.Close()

	subs, err := querySubmissions(ctx, s, q)
	if err != nil {
		logger.Error("failed to read submissions", "error", err)
		return ExitConfigError
	}
	if q.id != "" {
		err = printSubmission(stdout, &subs[0])
	} else {
		err = printHistory(stdout, subs)
	}
	if err != nil {
		logger.Error("failed to print submissions", "error", err)
	}
	return ExitSuccess
}

func querySubmissions(ctx context.Context, s store.Store, q historyQuery) ([]store.Submission, error) {
	switch {
	case q.id != "":
		sub, err := s.GetSubmission(ctx, q.id)
		if err != nil {
			return nil, err
		}
		return []store.Submission{*sub}, nil
	case q.application != "":
		return s.ListSubmissionsByApplication(ctx, q.application, store.DefaultListOptions())
	default:
		return s.ListSubmissions(ctx, store.DefaultListOptions())
	}
}

func printOutcomes(w io.Writer, outcomes []cluster.Outcome) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEPLOYMENT\tNAMESPACE\tOBJECTS")
	for _, o := range outcomes {
		names := make([]string, 0, len(o.Objects))
		for _, ref := range o.Objects {
			names = append(names, ref.Kind+"/"+ref.Name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Deployment, o.Namespace, strings.Join(names, ","))
	}
	tw.Flush()
}

func printSubmission(w io.Writer, s *store.Submission) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", s.ID)
	fmt.Fprintf(tw, "Created:\t%s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(tw, "Application:\t%s\n", s.Application)
	fmt.Fprintf(tw, "Namespace:\t%s\n", s.Namespace)
	fmt.Fprintf(tw, "Deployment:\t%s\n", s.Deployment)
	fmt.Fprintf(tw, "Status:\t%s\n", s.Status)
	fmt.Fprintf(tw, "Objects:\t%s\n", strings.Join(s.Objects, ","))
	if s.Error != "" {
		fmt.Fprintf(tw, "Error:\t%s\n", s.Error)
	}
	return tw.Flush()
}

func printHistory(w io.Writer, subs []store.Submission) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tAPPLICATION\tNAMESPACE\tDEPLOYMENT\tSTATUS\tERROR")
	for _, s := range subs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.Application, s.Namespace, s.Deployment, s.Status, s.Error)
	}
	return tw.Flush()
}

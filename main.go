package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"evaluate_homework/config"
	"evaluate_homework/evaluator"
	"evaluate_homework/gdocs"
	"evaluate_homework/report"

	"github.com/chainguard-dev/clog"
)

type options struct {
	folder     string
	rubricPath string
	dataDir    string
	outDir     string
	mock       bool
	html       bool
	verbose    bool
}

// parseFlags returns ok=false when usage was printed and the program should
// stop without error.
func parseFlags(args []string, out io.Writer) (opts options, ok bool, err error) {
	fs := flag.NewFlagSet("evaluate_homework", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.folder, "f", "", "Google Drive folder name (exact match)")
	fs.StringVar(&opts.rubricPath, "r", "", "path to the rubric text file")
	fs.StringVar(&opts.dataDir, "data", defaultDataDir(), "directory holding "+evaluator.MockFile)
	fs.StringVar(&opts.outDir, "out", ".", "directory the report is written to")
	fs.BoolVar(&opts.mock, "mock", false, "replay the recorded completion instead of calling OpenAI")
	fs.BoolVar(&opts.html, "html", false, "also write an HTML report")
	fs.BoolVar(&opts.verbose, "v", false, "enable debug logs")
	help := fs.Bool("h", false, "show usage")
	fs.Usage = func() {
		fmt.Fprintln(out, "Usage: evaluate_homework -f <folder name> -r <rubric file> [-mock] [-html] [-out dir]")
		fs.PrintDefaults()
	}

	if len(args) == 0 {
		fs.Usage()
		return opts, false, nil
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, false, nil
		}
		return opts, false, err
	}
	if *help || opts.folder == "" || opts.rubricPath == "" {
		fs.Usage()
		return opts, false, nil
	}
	return opts, true, nil
}

func defaultDataDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "Data"
	}
	return filepath.Join(filepath.Dir(exe), "Data")
}

// documentSource is the part of *gdocs.Session the pipeline needs.
type documentSource interface {
	GetFolderDocuments(ctx context.Context, name string) ([]gdocs.Document, error)
}

type app struct {
	opts   options
	stdout io.Writer
	// connect authorizes against Google and returns the document source.
	connect func(ctx context.Context) (documentSource, error)
	// llm builds the completion client once documents are available.
	llm func(ctx context.Context) (evaluator.LLMClient, error)
}

func newApp(opts options, stdout io.Writer) *app {
	loader := config.NewLoader()
	return &app{
		opts:   opts,
		stdout: stdout,
		connect: func(ctx context.Context) (documentSource, error) {
			return gdocs.Authenticate(ctx, loader.LoadOAuthSettings(ctx))
		},
		llm: func(ctx context.Context) (evaluator.LLMClient, error) {
			if opts.mock {
				clog.InfoContextf(ctx, "Mock mode: replaying %s", filepath.Join(opts.dataDir, evaluator.MockFile))
				return evaluator.MockLLM{DataDir: opts.dataDir}, nil
			}
			settings := loader.LoadLLMSettings(ctx)
			return evaluator.NewOpenAILLMFromConfig(&settings)
		},
	}
}

// run executes the whole evaluation. A returned error means no report was written.
func (a *app) run(ctx context.Context) error {
	src, err := a.connect(ctx)
	if err != nil {
		return err
	}
	docs, err := src.GetFolderDocuments(ctx, a.opts.folder)
	if err != nil {
		return err
	}
	clog.InfoContextf(ctx, "[cli] found %d documents in folder %q", len(docs), a.opts.folder)

	llm, err := a.llm(ctx)
	if err != nil {
		return err
	}
	ev, err := evaluator.NewEvaluator(llm)
	if err != nil {
		return err
	}
	rubric, err := os.ReadFile(a.opts.rubricPath)
	if err != nil {
		return fmt.Errorf("reading rubric: %w", err)
	}

	b, err := evaluateAll(ctx, ev, a.opts.folder, docs, string(rubric))
	if err != nil {
		return err
	}

	path, err := b.WriteFile(a.opts.outDir)
	if err != nil {
		return err
	}
	clog.InfoContextf(ctx, "[cli] evaluation saved to %s (%d documents)", path, b.Len())
	if a.opts.html {
		htmlPath, err := b.WriteHTML(a.opts.outDir)
		if err != nil {
			return err
		}
		clog.InfoContextf(ctx, "[cli] HTML report saved to %s", htmlPath)
	}
	return b.Table(a.stdout)
}

// evaluateAll grades documents one at a time. Failures of a single document
// are logged and the document is left out; only cancellation and a missing
// or unreadable mock fixture stop the run.
func evaluateAll(ctx context.Context, ev *evaluator.Evaluator, folder string, docs []gdocs.Document, rubric string) (*report.Builder, error) {
	b := report.NewBuilder(folder)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log := clog.FromContext(ctx).With("document", doc.Name)
		if strings.TrimSpace(doc.Text) == "" {
			log.Info("Skipping document with no text")
			continue
		}
		log.Info("Evaluating document")

		results, err := ev.Grade(ctx, doc.Text, rubric)
		switch {
		case err == nil:
			b.Add(ctx, doc.Name, doc.ID, results)
		case errors.Is(err, evaluator.ErrMockNotFound), errors.Is(err, evaluator.ErrMockDecode):
			return nil, err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case errors.Is(err, evaluator.ErrNoEvaluation):
			log.Info("No evaluation found in the model answer, skipping")
		default:
			var remote *evaluator.RemoteError
			if errors.As(err, &remote) {
				log = log.With("status", remote.StatusCode)
			}
			log.Error(fmt.Sprintf("Error evaluating %s: %v", doc.Name, err))
		}
	}
	return b, nil
}

func newLogger(w io.Writer, verbose bool) *clog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return clog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	opts, ok, err := parseFlags(os.Args[1:], os.Stdout)
	if err != nil {
		os.Exit(2)
	}
	if !ok {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = clog.WithLogger(ctx, newLogger(os.Stdout, opts.verbose))

	if err := newApp(opts, os.Stdout).run(ctx); err != nil {
		clog.FatalContextf(ctx, "Error: %v", err)
	}
}

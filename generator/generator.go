// Package generator turns a config.Config into TypeScript declaration files. It
// loads the schema and documents through package parser, renders each target
// through its plugin pipeline, and writes all outputs only when every target
// rendered cleanly.
package generator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/sync/errgroup"

	"github.com/mlwelles/graphqlOpsGen/config"
	"github.com/mlwelles/graphqlOpsGen/logging"
	"github.com/mlwelles/graphqlOpsGen/model"
	"github.com/mlwelles/graphqlOpsGen/parser"
)

// ErrScalar marks operations referencing custom scalars without a mapping when
// strict scalars are required.
var ErrScalar = errors.New("unmapped scalar")

// Generator runs one configuration.
type Generator struct {
	cfg       *config.Config
	logger    *logrus.Logger
	registry  *Registry
	formatter Formatter
}

// Option customizes a Generator.
type Option func(*Generator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logrus.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithRegistry replaces the plugin registry.
func WithRegistry(r *Registry) Option {
	return func(g *Generator) { g.registry = r }
}

// WithFormatter replaces the formatter built from the config's
// afterOneFileWrite hook. A nil formatter disables formatting.
func WithFormatter(f Formatter) Option {
	return func(g *Generator) { g.formatter = f }
}

// New returns a Generator for cfg.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		logger:   logging.Discard(),
		registry: DefaultRegistry(),
	}
	if len(cfg.Hooks.AfterOneFileWrite) > 0 {
		g.formatter = CommandFormatter{Command: cfg.Hooks.AfterOneFileWrite, Dir: cfg.Layout.Root}
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate is the one-call form: New(cfg, opts...).Run(ctx).
func Generate(ctx context.Context, cfg *config.Config, opts ...Option) (*Result, error) {
	return New(cfg, opts...).Run(ctx)
}

// FileResult describes one written output.
type FileResult struct {
	Target     config.TargetID
	Path       string
	Operations int
	Fragments  int
	Bytes      int
}

// Result summarizes a successful run.
type Result struct {
	SchemaFiles    []string
	Files          []FileResult
	FormatFailures []FormatFailure
	// UnmappedScalars lists, per target, custom scalars rendered as any.
	UnmappedScalars map[config.TargetID][]string
}

// Run generates every target. Either all outputs are written or, on any schema,
// document, scalar, render or write error, none are and the errors come back
// joined. A failed rename puts back the files already replaced. Returned errors
// are left to the caller to report, except write failures which are also logged
// with phase=write. Formatter failures do not fail the run; they are logged with
// phase=format and listed in Result.FormatFailures.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	log := g.logger

	schema, schemaFiles, err := parser.LoadSchema(g.cfg.Schema)
	if err != nil {
		return nil, err
	}
	log.WithField("phase", logging.PhaseSchema).Debugf("Loaded schema from %d files", len(schemaFiles))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	targets, err := g.documents(schema)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, unmapped, err := g.renderAll(ctx, schema, targets)
	if err != nil {
		return nil, err
	}

	if err := writeAll(files); err != nil {
		log.WithField("phase", logging.PhaseWrite).WithError(err).Error("Writing outputs failed; destinations restored")
		return nil, err
	}

	res := &Result{SchemaFiles: schemaFiles, UnmappedScalars: unmapped}
	for i, t := range g.cfg.Targets {
		res.Files = append(res.Files, FileResult{
			Target:     t.ID,
			Path:       t.Output,
			Operations: len(targets[i].Operations),
			Fragments:  len(targets[i].Fragments),
			Bytes:      len(files[i].data),
		})
		log.WithFields(logging.Fields{"phase": logging.PhaseWrite, "target": t.ID, "operations": len(targets[i].Operations)}).Infof("Generated %s", t.Output)
	}

	if g.formatter != nil {
		for _, f := range files {
			if err := g.formatter.Format(ctx, f.path); err != nil {
				failure := FormatFailure{Path: f.path, Err: err}
				res.FormatFailures = append(res.FormatFailures, failure)
				log.WithFields(logging.Fields{"phase": logging.PhaseFormat, "file": f.path}).WithError(err).Error("Formatter failed; file left unformatted")
			}
		}
	}
	return res, nil
}

// documents loads and validates the document set of every target. The union of
// all document sets serves as the pool spread fragments are resolved from.
func (g *Generator) documents(schema *ast.Schema) ([]*model.TargetDocuments, error) {
	log := g.logger.WithField("phase", logging.PhaseDocuments)
	loader := parser.NewLoader(g.cfg.Layout.Root)

	var errs []error
	poolDocs, err := loader.Load(g.cfg.AllDocuments)
	if err != nil {
		errs = append(errs, err)
	}
	pool := parser.NewFragmentPool(poolDocs)

	out := make([]*model.TargetDocuments, len(g.cfg.Targets))
	for i := range g.cfg.Targets {
		t := &g.cfg.Targets[i]
		docs, err := loader.Load(t.Documents)
		if err != nil {
			// Files already reported while loading the pool are not repeated.
			errs = append(errs, fmt.Errorf("target %s: %w", t.ID, err))
			continue
		}
		if len(errs) > 0 {
			// Validation against a partial fragment pool only adds noise.
			continue
		}
		td, err := parser.Assemble(docs, pool, schema)
		if err != nil {
			errs = append(errs, fmt.Errorf("target %s: %w", t.ID, err))
			continue
		}
		log.WithFields(logging.Fields{"target": t.ID, "files": len(docs), "operations": len(td.Operations), "fragments": len(td.Fragments)}).Debug("Collected documents")
		out[i] = td
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// renderAll renders every target concurrently. Rendering only reads the schema
// and documents; each target owns its RenderContext.
func (g *Generator) renderAll(ctx context.Context, schema *ast.Schema, targets []*model.TargetDocuments) ([]*file, map[config.TargetID][]string, error) {
	n := len(g.cfg.Targets)
	files := make([]*file, n)
	unmapped := make([][]string, n)
	errs := make([]error, n)

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))
	for i := range g.cfg.Targets {
		t := &g.cfg.Targets[i]
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			plugins, err := g.registry.Pipeline(t.Plugins)
			if err != nil {
				errs[i] = fmt.Errorf("target %s: %w", t.ID, err)
				return nil
			}
			rc := newRenderContext(g.cfg, t, schema, targets[i])
			data, err := render(rc, plugins)
			if err != nil {
				errs[i] = fmt.Errorf("target %s: %w", t.ID, err)
				return nil
			}
			files[i] = &file{path: t.Output, data: data}
			unmapped[i] = rc.Unmapped()
			g.logger.WithFields(logging.Fields{"phase": logging.PhaseRender, "target": t.ID}).Debugf("Rendered %d plugins, %d bytes", len(plugins), len(data))
			return nil
		})
	}
	_ = grp.Wait()

	log := g.logger.WithField("phase", logging.PhaseScalar)
	byTarget := make(map[config.TargetID][]string)
	for i, t := range g.cfg.Targets {
		if len(unmapped[i]) == 0 {
			continue
		}
		byTarget[t.ID] = unmapped[i]
		msg := fmt.Sprintf("target %s: operations use scalars without a mapping: %s", t.ID, strings.Join(unmapped[i], ", "))
		if g.cfg.StrictScalars {
			errs = append(errs, fmt.Errorf("%w: %s", ErrScalar, msg))
		} else {
			// Logged at error level so errors-only runs still surface it.
			log.WithField("target", t.ID).Error(msg + " (typed as any)")
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, nil, err
	}
	return files, byTarget, nil
}

// Package pipeline composes parser, transform passes, renderers, layout,
// formatter and writer into one run and reports what happened.
package pipeline

import (
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/format"
	"github.com/mark3labs/swagger2ts/internal/ir"
	"github.com/mark3labs/swagger2ts/internal/layout"
	"github.com/mark3labs/swagger2ts/internal/parser"
	"github.com/mark3labs/swagger2ts/internal/render"
	"github.com/mark3labs/swagger2ts/internal/transform"
	"github.com/mark3labs/swagger2ts/internal/writer"
)

// Source produces a fresh IR for every call.
type Source interface {
	Parse() (*ir.GeneratorInput, error)
}

// DocumentSource parses a loaded OpenAPI document.
type DocumentSource struct {
	Doc     *openapi3.T
	Options []parser.Option
}

func (s DocumentSource) Parse() (*ir.GeneratorInput, error) {
	return parser.Parse(s.Doc, s.Options...)
}

// StaticSource hands out deep-enough copies of a prebuilt IR so passes never
// mutate the original.
type StaticSource struct {
	Input ir.GeneratorInput
}

func (s StaticSource) Parse() (*ir.GeneratorInput, error) {
	in := s.Input
	in.Endpoints = make([]ir.EndpointItem, len(s.Input.Endpoints))
	for i, ep := range s.Input.Endpoints {
		if ep.Meta != nil {
			m := make(ir.Meta, len(ep.Meta))
			for k, v := range ep.Meta {
				m[k] = v
			}
			ep.Meta = m
		}
		ep.Namespace = append([]string(nil), ep.Namespace...)
		in.Endpoints[i] = ep
	}
	return &in, nil
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithPasses(passes ...transform.Pass) Option {
	return func(p *Pipeline) { p.passes = passes }
}

func WithRenderers(renderers ...render.Renderer) Option {
	return func(p *Pipeline) { p.renderers = renderers }
}

func WithLayout(s layout.Strategy) Option {
	return func(p *Pipeline) { p.layout = s }
}

func WithFormatter(f format.Formatter) Option {
	return func(p *Pipeline) { p.formatter = f }
}

func WithWriter(w writer.Writer) Option {
	return func(p *Pipeline) { p.writer = w }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// Pipeline runs a single code generation. It holds no state between runs.
type Pipeline struct {
	source    Source
	passes    []transform.Pass
	renderers []render.Renderer
	layout    layout.Strategy
	formatter format.Formatter
	writer    writer.Writer
	logger    *zap.SugaredLogger
}

// New builds a pipeline with the default passes, identity layout, no
// formatting and a dry-run writer unless overridden.
func New(src Source, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:    src,
		passes:    transform.Defaults(),
		layout:    layout.Identity{},
		formatter: format.Noop{},
		writer:    writer.DryRun{},
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse runs the source and the transform passes only.
func (p *Pipeline) Parse() (*ir.GeneratorInput, []string, error) {
	in, err := p.source.Parse()
	if err != nil {
		return nil, nil, err
	}
	steps, err := transform.Run(in, p.passes...)
	if err != nil {
		return nil, nil, err
	}
	return in, steps, nil
}

// IRSnapshot returns the transformed IR as indented JSON.
func (p *Pipeline) IRSnapshot() ([]byte, error) {
	in, _, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return ir.MarshalSnapshot(in)
}

// Plan runs every phase. Any failure aborts before the write phase starts,
// except failures inside the write phase itself.
func (p *Pipeline) Plan() (*ir.ExecutionPlan, error) {
	start := time.Now()
	log := p.logger

	phase := time.Now()
	in, err := p.source.Parse()
	if err != nil {
		return nil, err
	}
	plan := &ir.ExecutionPlan{EndpointCount: len(in.Endpoints)}
	plan.Metrics.ParseMs = millis(time.Since(phase))
	log.Debugw("phase done", "phase", "parse", "count", plan.EndpointCount, "duration_ms", plan.Metrics.ParseMs)

	phase = time.Now()
	plan.TransformSteps, err = transform.Run(in, p.passes...)
	if err != nil {
		return nil, err
	}
	plan.EndpointCount = len(in.Endpoints)
	plan.Metrics.TransformMs = millis(time.Since(phase))
	log.Debugw("phase done", "phase", "transform", "steps", plan.TransformSteps, "duration_ms", plan.Metrics.TransformMs)

	phase = time.Now()
	var files []ir.PlannedFile
	owner := map[string]string{}
	plan.RendererReports = make([]ir.RendererReport, 0, len(p.renderers))
	for _, r := range p.renderers {
		out, err := r.Render(in)
		if err != nil {
			code := errs.CodeOf(err)
			if code == "" {
				code = errs.ValidationError
			}
			return nil, errs.Wrap(code, err, r.ID(), "render")
		}
		for _, f := range out.Files {
			if prev, dup := owner[f.Path]; dup {
				return nil, &errs.Error{
					Code:    errs.ValidationError,
					Message: "render: " + r.ID() + " and " + prev + " planned the same file",
					Path:    f.Path,
				}
			}
			owner[f.Path] = r.ID()
		}
		warnings := out.Warnings
		if warnings == nil {
			warnings = []string{}
		}
		for _, w := range warnings {
			log.Warnw(w, "renderer", r.ID())
		}
		plan.RendererReports = append(plan.RendererReports, ir.RendererReport{
			RendererID:   r.ID(),
			PlannedFiles: len(out.Files),
			Warnings:     warnings,
		})
		files = append(files, out.Files...)
	}
	plan.Metrics.RenderMs = millis(time.Since(phase))
	log.Debugw("phase done", "phase", "render", "count", len(files), "duration_ms", plan.Metrics.RenderMs)

	phase = time.Now()
	files = p.layout.Apply(files)
	ir.SortFiles(files)
	plan.Metrics.LayoutMs = millis(time.Since(phase))
	log.Debugw("phase done", "phase", "layout", "count", len(files), "duration_ms", plan.Metrics.LayoutMs)

	// Formatting happens before the writer compares with disk, so
	// formatting-only differences never cause a rewrite.
	phase = time.Now()
	for i := range files {
		formatted, err := p.formatter.Format(files[i].Path, files[i].Content)
		if err != nil {
			return nil, err
		}
		files[i].Content = formatted
	}
	res, err := p.writer.Write(files)
	if err != nil {
		return nil, err
	}
	plan.PlannedFiles = res.Written
	if plan.PlannedFiles == nil {
		plan.PlannedFiles = []ir.PlannedFile{}
	}
	plan.SkippedFiles = res.Skipped
	plan.Metrics.WriteMs = millis(time.Since(phase))
	plan.Metrics.TotalMs = millis(time.Since(start))

	log.Infow("plan complete",
		"endpoints", plan.EndpointCount,
		"written", len(plan.PlannedFiles),
		"skipped", plan.SkippedFiles,
		"duration_ms", plan.Metrics.TotalMs)
	return plan, nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

package enumpatch

import (
	"context"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/ir"
	"github.com/mark3labs/swagger2ts/internal/model"
	"github.com/mark3labs/swagger2ts/internal/writer"
)

const (
	// Source tags patches built from listing endpoints.
	Source = "materal-api"
	// Confidence is recorded on every generated patch.
	Confidence = 0.7
)

// Config drives Run.
type Config struct {
	Fetcher  *Fetcher
	Strategy Strategy
	Logger   *zap.SugaredLogger
}

// Run discovers listing endpoints in doc, fetches them one at a time and
// returns a patch document sorted by enum name. The first target that
// exhausts its retries aborts the run.
func Run(ctx context.Context, doc *openapi3.T, cfg Config) (*model.EnumPatchDocument, error) {
	if cfg.Fetcher == nil {
		return nil, errs.New(errs.ValidationError, "enum patch: no fetcher configured")
	}
	strategy, err := ParseStrategy(string(cfg.Strategy))
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	targets := Discover(doc)
	log.Infow("enum targets discovered", "count", len(targets))
	out := &model.EnumPatchDocument{SchemaVersion: model.PatchSchemaVersion, Patches: []model.EnumPatch{}}
	for _, t := range targets {
		body, err := cfg.Fetcher.Fetch(ctx, t.Path)
		if err != nil {
			return nil, err
		}
		pairs, err := ParsePairs(body)
		if err != nil {
			return nil, errs.Wrap(errs.CodeOf(err), err, cfg.Fetcher.URL(t.Path), "enum patch: "+t.EnumName)
		}
		conf := Confidence
		out.Patches = append(out.Patches, model.EnumPatch{
			EnumName:   t.EnumName,
			Members:    SuggestNames(t.EnumName, pairs, strategy),
			Source:     Source,
			Confidence: &conf,
		})
		log.Debugw("enum patched", "path", t.Path, "count", len(pairs))
	}
	sort.SliceStable(out.Patches, func(i, j int) bool { return out.Patches[i].EnumName < out.Patches[j].EnumName })
	return out, nil
}

// Write stores doc at path through w and reports whether the file changed.
func Write(w writer.Writer, path string, doc *model.EnumPatchDocument) (bool, error) {
	data, err := model.MarshalEnumPatchDocument(doc)
	if err != nil {
		return false, errs.Wrap(errs.IOError, err, path, "enum patch: encode")
	}
	res, err := w.Write([]ir.PlannedFile{{Path: path, Content: string(data)}})
	if err != nil {
		return false, err
	}
	return len(res.Written) > 0, nil
}

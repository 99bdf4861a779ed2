// Package transform holds the ordered passes that mutate the generator IR in
// place between parsing and rendering.
package transform

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/ir"
)

// Pass mutates the IR. Passes run strictly in the order given to Run and each
// one sees the mutations of the previous ones. Passes talk to renderers only
// through EndpointItem.Meta.
type Pass interface {
	Name() string
	Apply(in *ir.GeneratorInput) error
}

// Run applies passes in order and returns their names. The first failure
// aborts the run.
func Run(in *ir.GeneratorInput, passes ...Pass) ([]string, error) {
	steps := make([]string, 0, len(passes))
	for _, p := range passes {
		if err := p.Apply(in); err != nil {
			return steps, err
		}
		steps = append(steps, p.Name())
	}
	return steps, nil
}

// Defaults returns the baseline pass list used by the CLI.
func Defaults() []Pass {
	return []Pass{NormalizeEndpointPass{}, QueryHeuristicPass{}, RefreshTokenPass{}}
}

// NormalizeEndpointPass puts endpoints in canonical (path, method,
// operationName) order, fills empty namespaces and derives query/mutation
// capability from the method. Applying it twice is a no-op.
type NormalizeEndpointPass struct{}

func (NormalizeEndpointPass) Name() string { return "normalize-endpoint" }

func (NormalizeEndpointPass) Apply(in *ir.GeneratorInput) error {
	for i := range in.Endpoints {
		ep := &in.Endpoints[i]
		if strings.TrimSpace(ep.OperationName) == "" {
			return &errs.Error{
				Code:    errs.ValidationError,
				Message: "empty operationName",
				Path:    string(ep.Method) + " " + ep.Path,
			}
		}
		if len(ep.Namespace) == 0 {
			ep.Namespace = []string{ir.DefaultNamespace}
		}
		if ep.Method == ir.GET {
			ep.SupportsQuery, ep.SupportsMutation = true, false
		} else {
			ep.SupportsQuery, ep.SupportsMutation = false, true
		}
	}
	sort.SliceStable(in.Endpoints, func(i, j int) bool {
		a, b := in.Endpoints[i], in.Endpoints[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Method != b.Method {
			return methodRank(a.Method) < methodRank(b.Method)
		}
		return a.OperationName < b.OperationName
	})
	return nil
}

func methodRank(m ir.HTTPMethod) int {
	for i, o := range ir.MethodOrder {
		if o == m {
			return i
		}
	}
	return len(ir.MethodOrder)
}

// queryVerb matches names like getList or searchUsers but not get or getting.
var queryVerb = regexp.MustCompile(`^(get|query|search|fetch|find|list)[A-Z]`)

// QueryHeuristicPass marks POST endpoints whose operation name starts with a
// read verb as query-capable. Mutation capability is left as is.
type QueryHeuristicPass struct{}

func (QueryHeuristicPass) Name() string { return "query-heuristic" }

func (QueryHeuristicPass) Apply(in *ir.GeneratorInput) error {
	for i := range in.Endpoints {
		ep := &in.Endpoints[i]
		if ep.Method != ir.POST || !queryVerb.MatchString(ep.OperationName) {
			continue
		}
		ep.SupportsQuery = true
		ep.Meta.Set(ir.MetaQueryHeuristic, "verb-prefix")
	}
	return nil
}

// RefreshTokenPass flags token refresh endpoints so renderers skip the
// client's auth-refresh wrapper for them. Without the flag a failing refresh
// would trigger another refresh.
type RefreshTokenPass struct{}

func (RefreshTokenPass) Name() string { return "refresh-token" }

func (RefreshTokenPass) Apply(in *ir.GeneratorInput) error {
	for i := range in.Endpoints {
		ep := &in.Endpoints[i]
		name := strings.ToLower(ep.OperationName)
		path := strings.ToLower(strings.TrimRight(ep.Path, "/"))
		if strings.HasSuffix(name, "refreshtoken") || strings.HasSuffix(path, "refreshtoken") {
			ep.Meta.Set(ir.MetaSkipAuthRefresh, "true")
		}
	}
	return nil
}

package ir

// Intermediate representation shared by parser, passes, renderers and writer.

type HTTPMethod string

const (
	GET    HTTPMethod = "GET"
	POST   HTTPMethod = "POST"
	PUT    HTTPMethod = "PUT"
	PATCH  HTTPMethod = "PATCH"
	DELETE HTTPMethod = "DELETE"
)

// MethodOrder is the fixed order in which a path's operations are visited.
var MethodOrder = []HTTPMethod{GET, POST, PUT, PATCH, DELETE}

// DefaultNamespace groups operations that carry no tag.
const DefaultNamespace = "default"

type ProjectContext struct {
	PackageName    string   `json:"packageName"`
	BasePath       string   `json:"basePath,omitempty"`
	Terminals      []string `json:"terminals"`
	RetryOwnership string   `json:"retryOwnership,omitempty"`
}

// EndpointItem is one (path, method) pair that has an operation defined.
type EndpointItem struct {
	Namespace         []string   `json:"namespace"`
	OperationName     string     `json:"operationName"`
	Method            HTTPMethod `json:"method"`
	Path              string     `json:"path"`
	Summary           string     `json:"summary,omitempty"`
	InputTypeName     string     `json:"inputTypeName"`
	OutputTypeName    string     `json:"outputTypeName"`
	RequestBodyField  string     `json:"requestBodyField,omitempty"`
	QueryFields       []string   `json:"queryFields"`
	PathFields        []string   `json:"pathFields"`
	HeaderFields      []string   `json:"headerFields,omitempty"`
	HasRequestOptions bool       `json:"hasRequestOptions"`
	SupportsQuery     bool       `json:"supportsQuery"`
	SupportsMutation  bool       `json:"supportsMutation"`
	Deprecated        bool       `json:"deprecated"`
	Meta              Meta       `json:"meta,omitempty"`
}

// HasBody reports whether the endpoint sends a request body.
func (e *EndpointItem) HasBody() bool { return e.RequestBodyField != "" }

// FieldCount is the number of distinct input fields (path, query, body).
func (e *EndpointItem) FieldCount() int {
	n := len(e.PathFields) + len(e.QueryFields)
	if e.HasBody() {
		n++
	}
	return n
}

type GeneratorInput struct {
	Project      ProjectContext      `json:"project"`
	Endpoints    []EndpointItem      `json:"endpoints"`
	ModelImport  *ModelImportConfig  `json:"modelImportConfig,omitempty"`
	ClientImport *ClientImportConfig `json:"clientImportConfig,omitempty"`
}

// PlannedFile is the unit of renderer output and writer input. Path is
// slash-separated and relative to the output root.
type PlannedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type RendererReport struct {
	RendererID   string   `json:"rendererId"`
	PlannedFiles int      `json:"plannedFiles"`
	Warnings     []string `json:"warnings"`
}

type PlanMetrics struct {
	ParseMs     float64 `json:"parseMs"`
	TransformMs float64 `json:"transformMs"`
	RenderMs    float64 `json:"renderMs"`
	LayoutMs    float64 `json:"layoutMs"`
	WriteMs     float64 `json:"writeMs"`
	TotalMs     float64 `json:"totalMs"`
}

// ExecutionPlan is a debug/audit artifact describing one pipeline run.
// PlannedFiles holds the files the writer changed (or would change); files
// whose content was already up to date are counted in SkippedFiles.
type ExecutionPlan struct {
	EndpointCount   int              `json:"endpointCount"`
	TransformSteps  []string         `json:"transformSteps"`
	RendererReports []RendererReport `json:"rendererReports"`
	PlannedFiles    []PlannedFile    `json:"plannedFiles"`
	SkippedFiles    int              `json:"skippedFiles"`
	Metrics         PlanMetrics      `json:"metrics"`
}

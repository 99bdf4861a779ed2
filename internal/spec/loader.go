package spec

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2ts/internal/errs"
)

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	Logger      *zap.SugaredLogger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
		Logger:      zap.NewNop().Sugar(),
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithLogger(l *zap.SugaredLogger) Option { return func(s *Settings) { s.Logger = l } }

// Load reads and validates an OpenAPI v3 document from a file path or an
// http/https URL. Swagger 2.0 input is converted to v3 first. Validation is
// permissive: unresolved $ref errors are logged and loading proceeds.
func Load(ctx context.Context, input string, opts ...Option) (*openapi3.T, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errs.New(errs.InputError, "spec: input is empty")
	}
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	raw, location, err := readInput(ctx, input, settings)
	if err != nil {
		return nil, err
	}

	version, err := detectVersion(raw)
	if err != nil {
		return nil, errs.Wrap(errs.ParseError, err, location, "spec: detect version")
	}

	var doc *openapi3.T
	switch version {
	case 3:
		loader := openapi3.NewLoader()
		loader.IsExternalRefsAllowed = true
		var u *url.URL
		if pu, perr := url.Parse(location); perr == nil && pu.Scheme != "" {
			u = pu
		} else {
			u = &url.URL{Path: filepath.ToSlash(location)}
		}
		doc, err = loader.LoadFromDataWithPath(raw, u)
		if err != nil {
			return nil, errs.Wrap(errs.ParseError, err, location, "spec: load OpenAPI v3")
		}
	case 2:
		var v2 openapi2.T
		if err := decodeV2(raw, &v2); err != nil {
			return nil, errs.Wrap(errs.ParseError, err, location, "spec: parse Swagger v2")
		}
		doc, err = openapi2conv.ToV3(&v2)
		if err != nil {
			return nil, errs.Wrap(errs.ConversionError, err, location, "spec: convert v2 to v3")
		}
	}

	if err := doc.Validate(ctx); err != nil {
		if !tolerable(err) {
			return nil, errs.Wrap(errs.ValidationError, err, location, "spec: validate")
		}
		settings.Logger.Warnw("proceeding despite validation error", "path", location, "error", err)
	}
	return doc, nil
}

func readInput(ctx context.Context, input string, settings Settings) ([]byte, string, error) {
	u, uerr := url.Parse(input)
	if uerr == nil && u.Scheme != "" && u.Host != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
		case "file":
			return nil, input, &errs.Error{Code: errs.InputError, Message: "spec: file:// URLs are blocked", Path: input}
		default:
			return nil, input, &errs.Error{Code: errs.InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", u.Scheme), Path: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, input, errs.Wrap(errs.NetworkError, err, input, "spec: fetch")
		}
		return raw, input, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, input, errs.Wrap(errs.InputError, err, input, "spec: resolve path")
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, abs, errs.Wrap(errs.InputError, err, abs, "spec: read file")
	}
	return raw, abs, nil
}

// decodeV2 reads a YAML or JSON Swagger 2.0 document. openapi2 types only
// carry json tags, so YAML is re-encoded as JSON first.
func decodeV2(raw []byte, v2 *openapi2.T) error {
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return err
	}
	data, err := json.Marshal(stringKeys(tree))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v2)
}

// stringKeys converts YAML mappings with non-string keys (unquoted status
// codes, for example) into JSON-compatible maps.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = stringKeys(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = stringKeys(e)
		}
		return t
	}
	return v
}

// detectVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else an error.
func detectVersion(data []byte) (int, error) {
	var root struct {
		OpenAPI string `yaml:"openapi"`
		Swagger string `yaml:"swagger"`
	}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, err
	}
	switch {
	case strings.HasPrefix(strings.TrimSpace(root.OpenAPI), "3."):
		return 3, nil
	case strings.HasPrefix(strings.TrimSpace(root.Swagger), "2."):
		return 2, nil
	}
	return 0, errors.New("missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := max(settings.MaxRetries, 1)
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		settings.Logger.Debugw("spec fetch failed, retrying", "url", rawURL, "attempt", i+1, "error", err)
	}
	return nil, lastErr
}

func fetchOnce(ctx context.Context, client *http.Client, rawURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		transient := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, transient, errors.Newf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	body, err := io.ReadAll(resp.Body)
	return body, true, err
}

// tolerable reports validation errors that still allow a best-effort build.
func tolerable(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unresolved ref")
}

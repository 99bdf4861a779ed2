package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// configKeys lists every normalized key a config file may carry. Commands
// ignore keys that belong to other commands.
var configKeys = map[string]bool{
	// shared
	"input": true, "out": true, "dryrun": true, "verbose": true, "logjson": true, "format": true,
	// generate
	"includetags": true, "excludetags": true, "packagename": true, "basepath": true,
	"renderers": true, "terminals": true, "barrels": true, "retryownership": true,
	"clientmode": true, "clientpath": true, "clientpackage": true, "clientimportname": true,
	"modelimporttype": true, "modelpackagepath": true, "modelrelativepath": true,
	"irsnapshot": true, "report": true,
	// models
	"style": true, "models": true, "enumpatch": true, "conflictpolicy": true,
	// enum-patch
	"baseurl": true, "token": true, "envfile": true, "namingstrategy": true,
	"maxretries": true, "timeoutms": true, "ratelimit": true,
	// barrels
	"dir": true, "roots": true,
}

type configValues map[string]configValue

type configValue struct {
	key   string // as written in the file
	value any
}

// readConfigFile loads a YAML or JSON config file and normalizes its keys.
func readConfigFile(path string) (configValues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}
	values := configValues{}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n := normalizeKey(k)
		if !configKeys[n] {
			return nil, newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, k))
		}
		values[n] = configValue{key: k, value: raw[k]}
	}
	return values, nil
}

// configFromFlags reads the file named by --config, if any.
func configFromFlags(flags *pflag.FlagSet) (configValues, string, error) {
	path, err := flags.GetString("config")
	if err != nil {
		return nil, "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return configValues{}, "", nil
	}
	values, err := readConfigFile(path)
	return values, path, err
}

func (c configValues) str(name string, dst *string) error {
	v, ok := c[name]
	if !ok {
		return nil
	}
	s, err := valueAsString(v.value)
	if err != nil {
		return fieldError(v.key, err)
	}
	*dst = s
	return nil
}

func (c configValues) list(name string, dst *[]string) error {
	v, ok := c[name]
	if !ok {
		return nil
	}
	l, err := valueAsStringSlice(v.value)
	if err != nil {
		return fieldError(v.key, err)
	}
	*dst = sanitizeList(l)
	return nil
}

func (c configValues) boolean(name string, dst *bool) error {
	v, ok := c[name]
	if !ok {
		return nil
	}
	b, err := valueAsBool(v.value)
	if err != nil {
		return fieldError(v.key, err)
	}
	*dst = b
	return nil
}

func (c configValues) integer(name string, dst *int) error {
	v, ok := c[name]
	if !ok {
		return nil
	}
	n, err := valueAsInt(v.value)
	if err != nil {
		return fieldError(v.key, err)
	}
	*dst = n
	return nil
}

func (c configValues) float(name string, dst *float64) error {
	v, ok := c[name]
	if !ok {
		return nil
	}
	f, err := valueAsFloat(v.value)
	if err != nil {
		return fieldError(v.key, err)
	}
	*dst = f
	return nil
}

func fieldError(key string, err error) error {
	return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
}

// flagOverrides copies explicitly set flags over file values.
type flagOverrides struct {
	flags *pflag.FlagSet
	err   error
}

func (o *flagOverrides) str(name string, dst *string) {
	if o.err != nil || !o.flags.Changed(name) {
		return
	}
	v, err := o.flags.GetString(name)
	o.err = err
	*dst = strings.TrimSpace(v)
}

func (o *flagOverrides) list(name string, dst *[]string) {
	if o.err != nil || !o.flags.Changed(name) {
		return
	}
	v, err := o.flags.GetStringSlice(name)
	o.err = err
	*dst = sanitizeList(v)
}

func (o *flagOverrides) boolean(name string, dst *bool) {
	if o.err != nil || !o.flags.Changed(name) {
		return
	}
	v, err := o.flags.GetBool(name)
	o.err = err
	*dst = v
}

func (o *flagOverrides) integer(name string, dst *int) {
	if o.err != nil || !o.flags.Changed(name) {
		return
	}
	v, err := o.flags.GetInt(name)
	o.err = err
	*dst = v
}

func (o *flagOverrides) float(name string, dst *float64) {
	if o.err != nil || !o.flags.Changed(name) {
		return
	}
	v, err := o.flags.GetFloat64(name)
	o.err = err
	*dst = v
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func valueAsInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("expected integer, got %v", val)
		}
		return int(val), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid integer value %q", val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func valueAsFloat(v any) (float64, error) {
	switch val := v.(type) {
	case int:
		return float64(val), nil
	case float64:
		return val, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", val)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

// sanitizeList trims entries and drops blanks and repeats, keeping order.
func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

package enumpatch

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/errs"
	"github.com/mark3labs/swagger2ts/internal/model"
	"github.com/mark3labs/swagger2ts/internal/naming"
)

// Strategy controls member name suggestion.
type Strategy string

const (
	StrategyAuto Strategy = "auto"
	StrategyNone Strategy = "none"
)

// ParseStrategy validates a naming strategy string.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyAuto, StrategyNone:
		return st, nil
	case "":
		return StrategyAuto, nil
	}
	return "", errs.Newf(errs.ValidationError, "unknown naming strategy %q (want auto or none)", s)
}

// Pair is one listed enum member: Key is the value, Value the label.
type Pair struct {
	Key   string
	Value string
}

// ParsePairs reads the Data array of a listing response. Scalar keys and
// labels of any JSON type are coerced to strings.
func ParsePairs(body []byte) ([]Pair, error) {
	var envelope struct {
		Data []struct {
			Key   json.RawMessage `json:"Key"`
			Value json.RawMessage `json:"Value"`
		} `json:"Data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errs.Wrap(errs.ParseError, err, "", "enum listing: invalid JSON")
	}
	pairs := make([]Pair, 0, len(envelope.Data))
	for i, item := range envelope.Data {
		key, err := scalar(item.Key)
		if err != nil {
			return nil, errs.Wrap(errs.ParseError, err, "Data["+strconv.Itoa(i)+"].Key", "enum listing: bad key")
		}
		label, err := scalar(item.Value)
		if err != nil {
			return nil, errs.Wrap(errs.ParseError, err, "Data["+strconv.Itoa(i)+"].Value", "enum listing: bad label")
		}
		pairs = append(pairs, Pair{Key: key, Value: label})
	}
	return pairs, nil
}

func scalar(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	}
	return "", errs.Newf(errs.ParseError, "expected a scalar, got %s", raw)
}

// SanitizeIdentifier splits s on non-alphanumeric runs, PascalCases each word
// and prefixes a leading digit with "Value".
func SanitizeIdentifier(s string) string {
	return naming.ToIdentifier(s)
}

// SuggestNames builds patch members for one enum. Under StrategyAuto each
// member gets a name from its label, else from the enum name and value, else
// "<Enum>Value"; repeats are suffixed 2, 3, ... in order.
func SuggestNames(enumName string, pairs []Pair, strategy Strategy) []model.EnumPatchMember {
	members := make([]model.EnumPatchMember, len(pairs))
	names := make([]string, len(pairs))
	for i, p := range pairs {
		members[i] = model.EnumPatchMember{Value: p.Key, Comment: strings.TrimSpace(p.Value)}
		if strategy != StrategyAuto {
			continue
		}
		name := SanitizeIdentifier(p.Value)
		if name == "" {
			if v := SanitizeIdentifier(p.Key); v != "" {
				name = SanitizeIdentifier(enumName) + v
			}
		}
		if name == "" {
			name = SanitizeIdentifier(enumName) + "Value"
		}
		names[i] = name
	}
	if strategy == StrategyAuto {
		for i, n := range naming.Unique(names) {
			members[i].SuggestedName = n
		}
	}
	return members
}

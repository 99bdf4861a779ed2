package cli

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mark3labs/swagger2ts/internal/errs"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// describe maps pipeline errors to what a user can act on. Input problems
// become usage errors; the rest keep their code and gain a hint.
func describe(err error, input string) error {
	if err == nil {
		return nil
	}
	switch errs.CodeOf(err) {
	case errs.InputError, errs.ParseError, errs.ConversionError:
		return newUsageError(fmt.Sprintf("spec %s: %v", input, err))
	case errs.StructuralError:
		return errors.WithHint(err, "the document declares no operations; check that paths define at least one HTTP operation")
	case errs.NetworkError:
		return errors.WithHint(err, "check the base URL, the token and network access; retries are already exhausted")
	case errs.FormatError:
		return errors.WithHint(err, "run with --format=false to write unformatted output")
	case errs.IOError:
		return errors.WithHint(err, "choose a different --out or check directory permissions")
	}
	return err
}

// Render formats err for the terminal, appending any hints.
func Render(err error) string {
	var b strings.Builder
	b.WriteString("error: ")
	b.WriteString(err.Error())
	if hint := errors.FlattenHints(err); hint != "" {
		b.WriteString("\nhint: ")
		b.WriteString(hint)
	}
	return b.String()
}

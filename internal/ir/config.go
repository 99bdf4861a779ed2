package ir

import (
	"strings"

	"github.com/mark3labs/swagger2ts/internal/errs"
)

type ClientImportMode string

const (
	ClientGlobal  ClientImportMode = "global"
	ClientLocal   ClientImportMode = "local"
	ClientPackage ClientImportMode = "package"
)

// ClientImportConfig selects how generated code imports the HTTP client.
type ClientImportConfig struct {
	Mode          ClientImportMode `json:"mode"`
	ClientPath    string           `json:"clientPath,omitempty"`    // local: path relative to the output root
	ClientPackage string           `json:"clientPackage,omitempty"` // package: module specifier
	ImportName    string           `json:"importName,omitempty"`
}

func (c *ClientImportConfig) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Mode {
	case ClientGlobal:
	case ClientLocal:
		if strings.TrimSpace(c.ClientPath) == "" {
			return errs.New(errs.ValidationError, "client import: local mode requires clientPath")
		}
	case ClientPackage:
		if strings.TrimSpace(c.ClientPackage) == "" {
			return errs.New(errs.ValidationError, "client import: package mode requires clientPackage")
		}
	default:
		return errs.Newf(errs.ValidationError, "client import: unknown mode %q (allowed: global, local, package)", c.Mode)
	}
	return nil
}

type ModelImportType string

const (
	ModelImportPackage  ModelImportType = "package"
	ModelImportRelative ModelImportType = "relative"
)

// ModelImportConfig selects how generated code imports model types.
type ModelImportConfig struct {
	ImportType   ModelImportType `json:"importType"`
	PackagePath  string          `json:"packagePath,omitempty"`
	RelativePath string          `json:"relativePath,omitempty"`
}

func (c *ModelImportConfig) Validate() error {
	if c == nil {
		return nil
	}
	switch c.ImportType {
	case ModelImportPackage:
		if strings.TrimSpace(c.PackagePath) == "" {
			return errs.New(errs.ValidationError, "model import: package style requires packagePath")
		}
	case ModelImportRelative:
		if strings.TrimSpace(c.RelativePath) == "" {
			return errs.New(errs.ValidationError, "model import: relative style requires relativePath")
		}
	default:
		return errs.Newf(errs.ValidationError, "model import: unknown importType %q (allowed: package, relative)", c.ImportType)
	}
	return nil
}

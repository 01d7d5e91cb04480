package exportcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/signumhq/signum/internal/generator"
)

const exportSiteMessageType = "signum.export.site"

// ResultCallback receives the export result once the archive is written. The
// callback is optional and invoked synchronously from the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of an export command execution.
type ResultEnvelope struct {
	Result      *generator.Result
	ArchivePath string
	DryRun      bool
}

// ExportSiteCommand compiles the stored site into a static archive on disk.
type ExportSiteCommand struct {
	OutputPath     string         `json:"output_path"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (ExportSiteCommand) Type() string { return exportSiteMessageType }

// Validate ensures the output target is usable.
func (m ExportSiteCommand) Validate() error {
	errs := validation.Errors{}
	if !m.DryRun && strings.TrimSpace(m.OutputPath) == "" {
		errs["output_path"] = validation.NewError(
			"signum.export.output_required",
			"output_path is required unless dry_run is set",
		)
	}
	if trimmed := strings.TrimSpace(m.OutputPath); trimmed != "" && !strings.HasSuffix(trimmed, ".zip") {
		errs["output_path"] = validation.NewError(
			"signum.export.output_extension",
			"output_path must end in .zip",
		)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

package exportcmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/signumhq/signum/internal/commands"
	"github.com/signumhq/signum/internal/generator"
	"github.com/signumhq/signum/internal/logging"
	"github.com/signumhq/signum/internal/site"
	"github.com/signumhq/signum/pkg/interfaces"
)

var errNotConfigured = errors.New("export handler missing dependencies")

// ExportSiteHandler loads the stored site, compiles it, and writes the
// archive to the requested path.
type ExportSiteHandler struct {
	inner *commands.Handler[ExportSiteCommand]
}

// NewExportSiteHandler constructs a handler wired to the provided store and
// exporter.
func NewExportSiteHandler(store site.Store, service *generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ExportSiteCommand]) *ExportSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ExportSiteCommand) error {
		if store == nil || service == nil {
			return goerrors.Wrap(errNotConfigured, goerrors.CategoryCommand, "export requires a site store and generator").
				WithTextCode("EXPORT_NOT_CONFIGURED")
		}

		loaded, err := store.LoadSite(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryCommand, "export could not load site").
				WithTextCode("EXPORT_SITE_LOAD_FAILED")
		}

		if msg.DryRun {
			result, err := service.Export(ctx, loaded, io.Discard)
			if err != nil {
				return err
			}
			invokeCallback(msg.ResultCallback, ResultEnvelope{Result: result, DryRun: true})
			return nil
		}

		path := strings.TrimSpace(msg.OutputPath)
		out, err := os.Create(path)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryCommand, "export could not create archive file").
				WithTextCode("EXPORT_ARCHIVE_CREATE_FAILED")
		}

		result, exportErr := service.Export(ctx, loaded, out)
		closeErr := out.Close()
		if exportErr != nil {
			os.Remove(path)
			return exportErr
		}
		if closeErr != nil {
			return goerrors.Wrap(closeErr, goerrors.CategoryCommand, "export could not finalise archive file").
				WithTextCode("EXPORT_ARCHIVE_WRITE_FAILED")
		}

		invokeCallback(msg.ResultCallback, ResultEnvelope{Result: result, ArchivePath: path})
		return nil
	}

	handlerOpts := append([]commands.HandlerOption[ExportSiteCommand]{
		commands.WithLogger[ExportSiteCommand](baseLogger),
		commands.WithOperation[ExportSiteCommand]("export.site"),
	}, opts...)

	return &ExportSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute runs the export command.
func (h *ExportSiteHandler) Execute(ctx context.Context, msg ExportSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}

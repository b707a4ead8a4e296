package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zipcaster/internal/config"
	"zipcaster/internal/domain"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
)

const DefaultPathFormat = "Splatoon-3-Battles-2006-01-02-15-04-05.json"

type JSONFileOptions struct {
	// Path wins over Dir and PathFormat when set.
	Path string
	// PathFormat is a time layout evaluated in UTC at export time.
	PathFormat string
	Dir        string
	Gzip       bool
	JSONLines  bool
}

type JSONFileExporter struct {
	opts   JSONFileOptions
	now    func() time.Time
	logger zerolog.Logger
}

func NewJSONFileExporter(opts JSONFileOptions, logger zerolog.Logger) *JSONFileExporter {
	if opts.PathFormat == "" {
		opts.PathFormat = DefaultPathFormat
	}
	return &JSONFileExporter{opts: opts, now: time.Now, logger: logger}
}

func JSONFileOptionsFromConfig(cfg *config.Config) JSONFileOptions {
	return JSONFileOptions{
		Path:       cfg.ExportPath,
		PathFormat: cfg.ExportPathFormat,
		Dir:        cfg.ExportDir,
		Gzip:       cfg.ExportGzip,
		JSONLines:  cfg.ExportJSONLines,
	}
}

func (e *JSONFileExporter) Name() string { return config.ExporterJSON }

// OutputPath resolves where the next export is written.
func (e *JSONFileExporter) OutputPath(at time.Time) string {
	path := e.opts.Path
	if path == "" {
		path = filepath.Join(e.opts.Dir, at.UTC().Format(e.opts.PathFormat))
	}
	if e.opts.Gzip && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
	}
	return path
}

func (e *JSONFileExporter) Export(ctx context.Context, records []domain.BattleRecord) error {
	if len(records) == 0 {
		e.logger.Debug().Str("exporter", e.Name()).Msg("nothing to export")
		return nil
	}

	at := e.now()
	path := e.OutputPath(at)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if e.opts.Gzip {
		gz = gzip.NewWriter(f)
		w = gz
	}
	buf := bufio.NewWriter(w)

	if err := e.write(ctx, buf, records, at); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	e.logger.Info().
		Str("exporter", e.Name()).
		Str("path", path).
		Int("count", len(records)).
		Msg("battles exported")
	return nil
}

func (e *JSONFileExporter) write(ctx context.Context, w *bufio.Writer, records []domain.BattleRecord, at time.Time) error {
	if !e.opts.JSONLines {
		w.WriteByte('[')
	}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := stamp(rec, e.Name(), at)
		if err != nil {
			return err
		}
		if !e.opts.JSONLines && i > 0 {
			w.WriteByte(',')
		}
		w.Write(raw)
		if e.opts.JSONLines {
			w.WriteByte('\n')
		}
	}
	if !e.opts.JSONLines {
		w.WriteByte(']')
	}
	return nil
}

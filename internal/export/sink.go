package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	applog "github.com/romaric67/bdget-app/internal/log"
)

// ShareFunc hands a finished report file to an external share mechanism.
// A nil ShareFunc means exporting stops at writing the file.
type ShareFunc func(ctx context.Context, path string) error

// FileSink writes reports into a directory and optionally hands them to a
// share collaborator afterwards.
type FileSink struct {
	dir    string
	share  ShareFunc
	logger *applog.Logger
}

func NewFileSink(dir string, share ShareFunc, logger *applog.Logger) *FileSink {
	if logger == nil {
		logger = applog.New(applog.ComponentExport, 0)
	}
	return &FileSink{dir: dir, share: share, logger: logger}
}

// Export writes content under the date-stamped report name and invokes the
// share collaborator if one is configured. The written file is kept even
// when sharing fails.
func (s *FileSink) Export(ctx context.Context, content string, t time.Time) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.dir, Filename(t))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	s.logger.InfoContext(ctx, "Report exported", applog.FieldExportPath, path)

	if s.share != nil {
		if err := s.share(ctx, path); err != nil {
			return path, fmt.Errorf("share report: %w", err)
		}
	}
	return path, nil
}

package tagging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"alltihop/internal/logging"
	"alltihop/internal/metadata"
	"alltihop/internal/rename"
	"alltihop/internal/services"
	"alltihop/internal/sidecar"
)

// ServiceOptions configure a tagging run over the archive.
type ServiceOptions struct {
	PiecesDir      string
	Username       string
	PreserveBlanks bool
	OverwriteMeta  bool
	Apply          bool
}

// Report summarizes a tagging run.
type Report struct {
	Planned         int
	Tagged          int
	SidecarsWritten int
	FieldFailures   int
	Notes           []string
}

// Service walks the archive and tags each piece's audio file, writing the
// metadata sidecar alongside it. Per-piece and per-field failures are
// collected, never fatal.
type Service struct {
	tagger *Tagger
	logger *slog.Logger
}

// NewService constructs the tagging service.
func NewService(tagger *Tagger, logger *slog.Logger) *Service {
	return &Service{tagger: tagger, logger: logging.NewComponentLogger(logger, "tagging")}
}

// TagPieces processes every piece in the export. Dry runs report what would
// be tagged without touching any file.
func (s *Service) TagPieces(ctx context.Context, pieces []metadata.Piece, opts ServiceOptions) (*Report, error) {
	logger := logging.WithContext(ctx, s.logger)
	if strings.TrimSpace(opts.PiecesDir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tagging", "resolve pieces dir", "Pieces directory not configured; set paths.pieces_dir or pass --pieces-dir", nil)
	}
	if strings.TrimSpace(opts.Username) == "" {
		return nil, services.Wrap(services.ErrValidation, "tagging", "resolve username", "No username available; the export has no user and --username was not given", nil)
	}
	if info, err := os.Stat(opts.PiecesDir); err != nil || !info.IsDir() {
		return nil, services.Wrap(services.ErrConfiguration, "tagging", "open pieces dir", fmt.Sprintf("Pieces directory %s is missing or not a directory", opts.PiecesDir), err)
	}

	report := &Report{}
	for _, piece := range pieces {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		shortID := strings.TrimSpace(piece.ShortID)
		if shortID == "" {
			report.Notes = append(report.Notes, fmt.Sprintf("piece %q has no short_id; skipped", piece.DisplayTitle()))
			continue
		}
		dir := filepath.Join(opts.PiecesDir, shortID)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			report.Notes = append(report.Notes, fmt.Sprintf("no folder for piece %s", shortID))
			continue
		}

		base := rename.FileBase(opts.Username, piece.DisplayTitle(), opts.PreserveBlanks)
		audio, ok := FindAudio(dir, base)
		if !ok {
			report.Notes = append(report.Notes, fmt.Sprintf("piece %s has no audio file; skipped", shortID))
			continue
		}
		if !CanTag(audio) {
			report.Notes = append(report.Notes, fmt.Sprintf("piece %s audio %s is not MP4-family; skipped", shortID, filepath.Base(audio)))
			continue
		}
		cover, hasCover := FindCover(dir, base)
		if !hasCover {
			report.Notes = append(report.Notes, fmt.Sprintf("piece %s has no cover; tagging without artwork", shortID))
		}

		report.Planned++
		if !opts.Apply {
			logger.Info(
				"would tag",
				logging.String(logging.FieldPiece, shortID),
				logging.String("audio", filepath.Base(audio)),
				logging.Bool("cover", hasCover),
			)
			continue
		}

		path, written, err := sidecar.Write(dir, base, piece, opts.OverwriteMeta)
		if err != nil {
			report.Notes = append(report.Notes, fmt.Sprintf("piece %s sidecar: %v", shortID, err))
		} else if written {
			report.SidecarsWritten++
			logger.Info("sidecar written", logging.String(logging.FieldPiece, shortID), logging.String("path", filepath.Base(path)))
		}

		result, err := s.tagger.Tag(ctx, audio, Request{
			Title:     piece.DisplayTitle(),
			Artist:    opts.Username,
			Comment:   BuildComment(piece.Description, piece.Collaborators, opts.Username),
			CreatedAt: piece.CreatedAt,
			Tempo:     piece.Tempo.String(),
			CoverPath: cover,
			PieceJSON: piece.Raw,
		})
		if err != nil {
			report.Notes = append(report.Notes, fmt.Sprintf("piece %s tagging: %v", shortID, err))
			logger.Warn("tagging failed", logging.String(logging.FieldPiece, shortID), logging.Error(err))
			continue
		}
		report.Tagged++
		for _, field := range result.Fields {
			if field.Err != nil {
				report.FieldFailures++
				report.Notes = append(report.Notes, fmt.Sprintf("piece %s field %s: %v", shortID, field.Field, field.Err))
				logger.Warn("tag field failed", logging.String(logging.FieldPiece, shortID), logging.String("field", field.Field), logging.Error(field.Err))
			}
		}
	}
	return report, nil
}

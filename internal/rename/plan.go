package rename

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"alltihop/internal/fileutil"
	"alltihop/internal/logging"
	"alltihop/internal/metadata"
	"alltihop/internal/services"
	"alltihop/internal/textutil"
)

// Operation is one planned move of an asset to its portable name.
type Operation struct {
	Kind       Kind
	ShortID    string
	Title      string
	Src        string
	Dst        string
	LegacyMode LegacyMode
}

// Plan is the full set of moves for one run plus everything the planner
// noticed but did not turn into an operation.
type Plan struct {
	Operations []Operation
	Notes      []string

	MissingAudio int
	MissingCover int
	AlreadyNamed int
}

// Options configure a planning pass.
type Options struct {
	PiecesDir      string
	Username       string
	PreserveBlanks bool
	LegacyMode     LegacyMode
}

// Planner builds rename plans from export metadata. It never writes to the
// filesystem; dry-run and apply consume the same plan.
type Planner struct {
	opts   Options
	logger *slog.Logger
}

// NewPlanner constructs a planner.
func NewPlanner(opts Options, logger *slog.Logger) *Planner {
	return &Planner{opts: opts, logger: logging.NewComponentLogger(logger, "planner")}
}

// FileBase builds the portable base name for a piece. Owner and title are
// sanitized separately and joined with " - "; the separator itself obeys the
// whitespace policy but the sanitized parts are not touched again, so
// underscores produced by character replacement survive.
func FileBase(username, title string, preserveBlanks bool) string {
	owner := textutil.SafeFileBase(username, preserveBlanks)
	name := textutil.SafeFileBase(title, preserveBlanks)
	sep := " - "
	if !preserveBlanks {
		sep = "_-_"
	}
	return owner + sep + name
}

// Plan walks every piece and emits at most one operation per located asset.
// Destinations are collision-free both against the disk and against each
// other within the pass.
func (p *Planner) Plan(ctx context.Context, pieces []metadata.Piece) (*Plan, error) {
	logger := logging.WithContext(ctx, p.logger)
	if strings.TrimSpace(p.opts.PiecesDir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "planning", "resolve pieces dir", "Pieces directory not configured; set paths.pieces_dir or pass --pieces-dir", nil)
	}
	if strings.TrimSpace(p.opts.Username) == "" {
		return nil, services.Wrap(services.ErrValidation, "planning", "resolve username", "No username available for filenames; the export has no user and --username was not given", nil)
	}
	if info, err := os.Stat(p.opts.PiecesDir); err != nil || !info.IsDir() {
		return nil, services.Wrap(services.ErrConfiguration, "planning", "open pieces dir", fmt.Sprintf("Pieces directory %s is missing or not a directory", p.opts.PiecesDir), err)
	}

	plan := &Plan{}
	claimed := make(map[string]struct{})
	for _, piece := range pieces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		shortID := strings.TrimSpace(piece.ShortID)
		if shortID == "" {
			plan.Notes = append(plan.Notes, fmt.Sprintf("piece %q has no short_id; skipped", piece.DisplayTitle()))
			continue
		}
		dir := filepath.Join(p.opts.PiecesDir, shortID)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			plan.Notes = append(plan.Notes, fmt.Sprintf("no folder for piece %s (%q)", shortID, piece.DisplayTitle()))
			continue
		}

		base := FileBase(p.opts.Username, piece.DisplayTitle(), p.opts.PreserveBlanks)
		if err := p.planAsset(plan, claimed, piece, KindAudio, base, dir); err != nil {
			return nil, err
		}
		if err := p.planAsset(plan, claimed, piece, KindCover, base, dir); err != nil {
			return nil, err
		}
		if err := p.planAsset(plan, claimed, piece, KindAttachment, base, dir); err != nil {
			return nil, err
		}
	}
	logger.Info(
		"plan built",
		logging.Int("operations", len(plan.Operations)),
		logging.Int("missing_audio", plan.MissingAudio),
		logging.Int("missing_cover", plan.MissingCover),
		logging.Int("already_named", plan.AlreadyNamed),
	)
	return plan, nil
}

func (p *Planner) planAsset(plan *Plan, claimed map[string]struct{}, piece metadata.Piece, kind Kind, base, dir string) error {
	shortID := strings.TrimSpace(piece.ShortID)
	var src string
	var found bool
	switch kind {
	case KindAudio:
		src, found = LocateAudio(dir)
		if !found {
			plan.MissingAudio++
			plan.Notes = append(plan.Notes, fmt.Sprintf("piece %s has no audio file", shortID))
			return nil
		}
	case KindCover:
		src, found = LocateCover(dir)
		if !found {
			plan.MissingCover++
			plan.Notes = append(plan.Notes, fmt.Sprintf("piece %s has no cover image", shortID))
			return nil
		}
	case KindAttachment:
		name := strings.TrimSpace(piece.Attachment)
		if name == "" {
			return nil
		}
		src, found = LocateAttachment(dir, name)
		if !found {
			plan.Notes = append(plan.Notes, fmt.Sprintf("piece %s attachment %q not found", shortID, name))
			return nil
		}
	default:
		return services.Wrap(services.ErrValidation, "planning", "resolve asset kind", fmt.Sprintf("Unknown asset kind %q", kind), nil)
	}

	ext := filepath.Ext(src)
	name := base + ext
	if kind == KindCover {
		name = base + ".cover" + ext
	}
	desired := filepath.Join(dir, name)
	if desired == src {
		return nil
	}

	occupied, err := fileutil.PathExists(desired)
	if err != nil {
		return services.Wrap(services.ErrTransient, "planning", "probe destination", fmt.Sprintf("Cannot inspect %s", desired), err)
	}
	if occupied && isRenamedAlready(src, desired) {
		plan.AlreadyNamed++
		plan.Notes = append(plan.Notes, fmt.Sprintf("piece %s %s already renamed (%s)", shortID, kind, filepath.Base(desired)))
		return nil
	}

	dst, err := fileutil.UniquePathExcluding(desired, claimed)
	if err != nil {
		return services.Wrap(services.ErrTransient, "planning", "resolve destination", fmt.Sprintf("Cannot allocate destination for %s", src), err)
	}
	claimed[dst] = struct{}{}
	plan.Operations = append(plan.Operations, Operation{
		Kind:       kind,
		ShortID:    shortID,
		Title:      piece.DisplayTitle(),
		Src:        src,
		Dst:        dst,
		LegacyMode: p.opts.LegacyMode,
	})
	return nil
}

// isRenamedAlready reports whether the file at src is a leftover artifact of
// the file at dst: the same file (hardlink, or a symlink resolving there), or
// a byte-identical regular copy. In that case the desired name is not a
// collision but the result of an earlier run.
func isRenamedAlready(src, dst string) bool {
	if fileutil.SameFile(src, dst) {
		return true
	}
	equal, err := fileutil.SameContent(src, dst)
	return err == nil && equal
}

package rename

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"alltihop/internal/fileutil"
	"alltihop/internal/metadata"
	"alltihop/internal/oplog"
	"alltihop/internal/services"
)

func planSinglePiece(t *testing.T, piecesDir string, mode LegacyMode) *Plan {
	t.Helper()
	planner := NewPlanner(Options{PiecesDir: piecesDir, Username: "alice", LegacyMode: mode}, nil)
	plan, err := planner.Plan(context.Background(), []metadata.Piece{{ShortID: "abc123", Title: "Song One"}})
	if err != nil {
		t.Fatal(err)
	}
	return plan
}

func openTestLog(t *testing.T, dir string) *oplog.Appender {
	t.Helper()
	appender, err := oplog.OpenAppender(filepath.Join(dir, "rename_log.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { appender.Close() })
	return appender
}

func TestExecuteDryRunIsSideEffectFree(t *testing.T) {
	piecesDir := t.TempDir()
	dir := writePieceDir(t, piecesDir, "abc123", map[string]string{
		"audio.mp4": "audio payload",
		"cover.jpg": "cover payload",
	})
	plan := planSinglePiece(t, piecesDir, LegacyNone)

	summary, err := NewExecutor(nil).Execute(context.Background(), plan, ExecuteOptions{Apply: false})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Planned != 2 || summary.Applied != 0 {
		t.Fatalf("dry run summary: %+v", summary)
	}
	if len(summary.Records) != 0 {
		t.Fatal("dry run must not produce records")
	}
	if _, err := os.Stat(filepath.Join(dir, "audio.mp4")); err != nil {
		t.Fatal("dry run must not move files")
	}
}

func TestExecuteApplyMovesAndLogsEachOperation(t *testing.T) {
	piecesDir := t.TempDir()
	dir := writePieceDir(t, piecesDir, "abc123", map[string]string{
		"audio.mp4": "audio payload",
		"cover.jpg": "cover payload",
	})
	audioHash, err := fileutil.HashFile(filepath.Join(dir, "audio.mp4"))
	if err != nil {
		t.Fatal(err)
	}
	plan := planSinglePiece(t, piecesDir, LegacyNone)
	appender := openTestLog(t, t.TempDir())

	stamp := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	summary, err := NewExecutor(nil).Execute(context.Background(), plan, ExecuteOptions{
		Apply: true,
		Log:   appender,
		Now:   func() time.Time { return stamp },
	})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Applied != 2 {
		t.Fatalf("expected 2 applied, got %+v", summary)
	}

	renamedAudio := filepath.Join(dir, "alice_-_Song_One.mp4")
	gotHash, err := fileutil.HashFile(renamedAudio)
	if err != nil {
		t.Fatal(err)
	}
	if gotHash != audioHash {
		t.Fatal("content changed during move")
	}
	if _, err := os.Lstat(filepath.Join(dir, "audio.mp4")); !os.IsNotExist(err) {
		t.Fatal("legacy mode none must not leave an artifact")
	}
	if _, err := os.Stat(filepath.Join(dir, "alice_-_Song_One.cover.jpg")); err != nil {
		t.Fatal("cover not renamed")
	}

	records, skippedLines, err := oplog.ReadLog(appender.Path())
	if err != nil {
		t.Fatal(err)
	}
	if skippedLines != 0 || len(records) != 2 {
		t.Fatalf("expected 2 clean records, got %d (skipped lines %d)", len(records), skippedLines)
	}
	for _, rec := range records {
		if rec.RunID != summary.RunID {
			t.Fatalf("run id missing from record: %+v", rec)
		}
		if rec.AppliedAt != "2026-08-31T12:00:00Z" {
			t.Fatalf("applied_at: %q", rec.AppliedAt)
		}
		if rec.LegacyResult != string(fileutil.OutcomeNone) {
			t.Fatalf("legacy_result: %q", rec.LegacyResult)
		}
	}
}

func TestExecuteLegacyLinkLeavesSameFileAtSource(t *testing.T) {
	piecesDir := t.TempDir()
	dir := writePieceDir(t, piecesDir, "abc123", map[string]string{"audio.mp4": "payload"})
	plan := planSinglePiece(t, piecesDir, LegacyLink)
	appender := openTestLog(t, t.TempDir())

	summary, err := NewExecutor(nil).Execute(context.Background(), plan, ExecuteOptions{Apply: true, Log: appender})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Applied != 1 {
		t.Fatalf("summary: %+v", summary)
	}
	src := filepath.Join(dir, "audio.mp4")
	dst := filepath.Join(dir, "alice_-_Song_One.mp4")
	if !fileutil.SameFile(src, dst) {
		t.Fatal("legacy link should resolve to the renamed file")
	}
	if summary.Records[0].LegacyResult != string(fileutil.OutcomeHardlink) &&
		summary.Records[0].LegacyResult != string(fileutil.OutcomeSymlink) {
		t.Fatalf("legacy_result: %q", summary.Records[0].LegacyResult)
	}
}

func TestExecuteLegacyCopyLeavesIndependentCopy(t *testing.T) {
	piecesDir := t.TempDir()
	dir := writePieceDir(t, piecesDir, "abc123", map[string]string{"audio.mp4": "payload"})
	plan := planSinglePiece(t, piecesDir, LegacyCopy)
	appender := openTestLog(t, t.TempDir())

	if _, err := NewExecutor(nil).Execute(context.Background(), plan, ExecuteOptions{Apply: true, Log: appender}); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(dir, "audio.mp4")
	dst := filepath.Join(dir, "alice_-_Song_One.mp4")
	if fileutil.SameFile(src, dst) {
		t.Fatal("legacy copy must be an independent inode")
	}
	equal, err := fileutil.SameContent(src, dst)
	if err != nil || !equal {
		t.Fatalf("legacy copy content mismatch: equal=%v err=%v", equal, err)
	}
}

func TestExecuteApplyRequiresLog(t *testing.T) {
	plan := &Plan{Operations: []Operation{{Kind: KindAudio, Src: "a", Dst: "b"}}}
	_, err := NewExecutor(nil).Execute(context.Background(), plan, ExecuteOptions{Apply: true})
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if services.ExitCode(err) != 2 {
		t.Fatalf("configuration failures map to exit 2, got %d", services.ExitCode(err))
	}
}

func TestExecuteNeverOverwritesOccupiedDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "audio.mp4")
	occupied := filepath.Join(dir, "alice_-_Song_One.mp4")
	if err := os.WriteFile(src, []byte("new audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(occupied, []byte("existing file"), 0o644); err != nil {
		t.Fatal(err)
	}
	appender := openTestLog(t, t.TempDir())

	// A stale plan targeting an occupied path: the executor re-resolves and
	// the occupant is never touched.
	plan := &Plan{Operations: []Operation{{
		Kind: KindAudio, ShortID: "abc123", Title: "Song One",
		Src: src, Dst: occupied, LegacyMode: LegacyNone,
	}}}
	summary, err := NewExecutor(nil).Execute(context.Background(), plan, ExecuteOptions{Apply: true, Log: appender})
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(occupied)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "existing file" {
		t.Fatal("occupied destination was overwritten")
	}
	if summary.Applied != 1 {
		t.Fatalf("summary: %+v", summary)
	}
	if summary.Records[0].Dst != filepath.Join(dir, "alice_-_Song_One__1.mp4") {
		t.Fatalf("re-resolved destination: %q", summary.Records[0].Dst)
	}
}

func TestExecuteSkipsVanishedSource(t *testing.T) {
	dir := t.TempDir()
	appender := openTestLog(t, t.TempDir())
	plan := &Plan{Operations: []Operation{{
		Kind: KindAudio, ShortID: "abc123",
		Src: filepath.Join(dir, "gone.mp4"), Dst: filepath.Join(dir, "renamed.mp4"),
	}}}
	summary, err := NewExecutor(nil).Execute(context.Background(), plan, ExecuteOptions{Apply: true, Log: appender})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 || summary.Applied != 0 {
		t.Fatalf("summary: %+v", summary)
	}
	if records, _, _ := oplog.ReadLog(appender.Path()); len(records) != 0 {
		t.Fatal("skipped operations must not be logged")
	}
}

func TestExecuteSecondRunIsIdempotent(t *testing.T) {
	for _, mode := range []LegacyMode{LegacyNone, LegacyLink, LegacyCopy} {
		t.Run(string(mode), func(t *testing.T) {
			piecesDir := t.TempDir()
			writePieceDir(t, piecesDir, "abc123", map[string]string{"audio.mp4": "payload"})
			appender := openTestLog(t, t.TempDir())

			plan := planSinglePiece(t, piecesDir, mode)
			if _, err := NewExecutor(nil).Execute(context.Background(), plan, ExecuteOptions{Apply: true, Log: appender}); err != nil {
				t.Fatal(err)
			}

			again := planSinglePiece(t, piecesDir, mode)
			if len(again.Operations) != 0 {
				t.Fatalf("second plan should be empty under mode %s, got %+v", mode, again.Operations)
			}
		})
	}
}

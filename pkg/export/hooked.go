package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/hooks"
)

// SaveHooked writes snapshots like SaveSnapshots, running the hooks from
// hooksDir/hooks.yaml around the write. An empty hooksDir runs no hooks.
// A failing pre-snapshot hook cancels the write. The summary describes the
// hook runs and is empty when none ran.
func SaveHooked(ctx context.Context, bd *board.Board, base, theme, hooksDir string, formats ...string) (paths []string, summary string, err error) {
	if len(formats) == 0 {
		formats = []string{FormatSVG, FormatPNG}
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	planned := make([]string, len(formats))
	for i, f := range formats {
		planned[i] = stem + "." + f
	}

	hx, err := hooks.Load(hooksDir, hooks.SnapshotContext{
		Path:      strings.Join(planned, string(os.PathListSeparator)),
		Format:    strings.Join(formats, ","),
		Title:     bd.Title,
		ItemCount: len(bd.Nodes),
		LinkCount: len(bd.LiveEdges()),
		Timestamp: time.Now(),
	}, hooksDir == "")
	if err != nil {
		return nil, "", err
	}
	if hx == nil {
		paths, err = SaveSnapshots(ctx, bd, base, theme, formats...)
		return paths, "", err
	}

	if err := hx.RunPreSnapshot(ctx); err != nil {
		return nil, hx.Summary(), err
	}
	paths, err = SaveSnapshots(ctx, bd, base, theme, formats...)
	if err != nil {
		return nil, hx.Summary(), err
	}
	err = hx.RunPostSnapshot(ctx)
	return paths, hx.Summary(), err
}

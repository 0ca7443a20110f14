package app

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/boardsmith/internal/boards"
	"github.com/vk/boardsmith/internal/catalog"
	"github.com/vk/boardsmith/internal/planner"
	"github.com/vk/boardsmith/internal/resolver"
)

// ListBoards returns every named board, sorted by short name without regard
// to case.
func (a *App) ListBoards(ctx context.Context) ([]*boards.Profile, error) {
	db, err := a.boardDB(a.withLogger(ctx))
	if err != nil {
		return nil, err
	}
	return db.List(), nil
}

// CFlags returns the compiler flags for a board.
func (a *App) CFlags(ctx context.Context, board string) (string, error) {
	profile, err := a.lookupBoard(a.withLogger(ctx), board)
	if err != nil {
		return "", err
	}
	return profile.CFlags(a.settings.ArduinoVersion), nil
}

// Property returns a raw boards.txt property. The key has the form
// BOARD.PROPERTY, e.g. "uno.build.f_cpu".
func (a *App) Property(ctx context.Context, key string) (string, error) {
	board, property, ok := strings.Cut(key, ".")
	if !ok || board == "" || property == "" {
		return "", fmt.Errorf("property %q must have the form BOARD.PROPERTY", key)
	}
	db, err := a.boardDB(a.withLogger(ctx))
	if err != nil {
		return "", err
	}
	return db.Property(board, property)
}

// SourceDirs returns the source directories of the requested libraries, core
// included, without their dependencies. The board selects the core variant;
// without one the standard variant is used.
func (a *App) SourceDirs(ctx context.Context, board string, libs []string) ([]string, error) {
	ctx = a.withLogger(ctx)

	variant := catalog.DefaultVariant
	if board != "" {
		profile, err := a.lookupBoard(ctx, board)
		if err != nil {
			return nil, err
		}
		variant = profile.Variant
	}

	var dirs []string
	for _, lib := range withCore(libs) {
		found, err := a.locator.Locate(ctx, lib, variant)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, found...)
	}
	return dirs, nil
}

// Objects returns the object file names a library compiles to.
func (a *App) Objects(ctx context.Context, lib string) ([]string, error) {
	ctx = a.withLogger(ctx)
	// Variant directories only hold headers, so any variant yields the same
	// objects for core.
	variant := catalog.NoVariant
	if lib == catalog.Core {
		variant = catalog.DefaultVariant
	}
	return a.planner().Objects(ctx, lib, variant)
}

// Order resolves the requested libraries plus core and returns them in
// build order, dependencies first.
func (a *App) Order(ctx context.Context, libs []string) ([]string, error) {
	res, err := resolver.New(a.catalog).Resolve(a.withLogger(ctx), withCore(libs))
	if err != nil {
		return nil, err
	}
	return res.Order, nil
}

func (a *App) lookupBoard(ctx context.Context, board string) (*boards.Profile, error) {
	db, err := a.boardDB(ctx)
	if err != nil {
		return nil, err
	}
	return db.Lookup(board)
}

func (a *App) planner() *planner.Planner {
	return planner.New(a.locator, a.cache, a.settings.ArduinoVersion)
}

// withCore returns libs without duplicates and with core appended when it
// was not requested.
func withCore(libs []string) []string {
	out := make([]string, 0, len(libs)+1)
	for _, lib := range libs {
		if !slices.Contains(out, lib) {
			out = append(out, lib)
		}
	}
	if !slices.Contains(out, catalog.Core) {
		out = append(out, catalog.Core)
	}
	return out
}

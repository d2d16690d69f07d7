package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookreaderapp/bookreader-core/internal/catalog"
	"github.com/bookreaderapp/bookreader-core/internal/domain"
	"github.com/bookreaderapp/bookreader-core/internal/locator"
	"github.com/bookreaderapp/bookreader-core/internal/normalize"
	"github.com/bookreaderapp/bookreader-core/internal/store/sqlite"
)

type testEnv struct {
	store     *sqlite.Store
	catalog   *catalog.Catalog
	locator   *locator.Service
	library   *Library
	tracker   *Tracker
	audioRoot string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	st, err := sqlite.Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cat, err := catalog.OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	audioRoot := t.TempDir()
	logger := slog.New(slog.DiscardHandler)
	loc := locator.New(cat, audioRoot, "", logger)
	tracker := NewTracker(st, logger)
	t.Cleanup(func() { tracker.Close() })

	return &testEnv{
		store:     st,
		catalog:   cat,
		locator:   loc,
		library:   NewLibrary(st, loc, logger),
		tracker:   tracker,
		audioRoot: audioRoot,
	}
}

// seedBook inserts a book with n chapters of the given play time and
// returns the chapter IDs ascending.
func (e *testEnv) seedBook(t *testing.T, title string, n int, playTime int64) (int64, []int64) {
	t.Helper()
	ctx := context.Background()

	bookID, err := e.store.UpsertBook(ctx, &domain.Book{Title: title, Author: "An Author"})
	require.NoError(t, err)

	var ids []int64
	for i := 1; i <= n; i++ {
		id, err := e.store.UpsertChapter(ctx, &domain.Chapter{
			BookID:   bookID,
			Title:    fmt.Sprintf("%03d", i),
			FileName: fmt.Sprintf("%03d.mp3", i),
			PlayTime: playTime,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return bookID, ids
}

func TestNavigatorSequence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Push the second book's chapter IDs to [5,6,7].
	env.seedBook(t, "Padding Book", 4, 100000)
	_, ids := env.seedBook(t, "The Real Book", 3, 100000)
	require.Equal(t, []int64{5, 6, 7}, ids)

	lib := env.library

	first, err := lib.IsFirstChapter(ctx, 5)
	require.NoError(t, err)
	assert.True(t, first)

	last, err := lib.IsLastChapter(ctx, 7)
	require.NoError(t, err)
	assert.True(t, last)

	next, err := lib.NextChapterID(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(7), next)

	prev, err := lib.PreviousChapterID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), prev, "no previous before the first chapter")

	pos, err := lib.ChapterPosition(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	total, err := lib.TotalChaptersInBook(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	all, err := lib.AllChapterIDsInBook(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6, 7}, all)
}

func TestNavigatorUnknownChapter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBook(t, "Only Book", 2, 100000)

	lib := env.library
	const missing = int64(404)

	c, err := lib.Chapter(ctx, missing)
	require.NoError(t, err)
	assert.Nil(t, c)

	next, err := lib.NextChapter(ctx, missing)
	require.NoError(t, err)
	assert.Nil(t, next)

	prev, err := lib.PreviousChapter(ctx, missing)
	require.NoError(t, err)
	assert.Nil(t, prev)

	ids, err := lib.AllChapterIDsInBook(ctx, missing)
	require.NoError(t, err)
	assert.Empty(t, ids)

	pos, err := lib.ChapterPosition(ctx, missing)
	require.NoError(t, err)
	assert.Zero(t, pos)

	total, err := lib.TotalChaptersInBook(ctx, missing)
	require.NoError(t, err)
	assert.Zero(t, total)

	first, err := lib.IsFirstChapter(ctx, missing)
	require.NoError(t, err)
	assert.False(t, first)

	last, err := lib.IsLastChapter(ctx, missing)
	require.NoError(t, err)
	assert.False(t, last)

	lastChapter, err := lib.LastChapterOfBook(ctx, missing)
	require.NoError(t, err)
	assert.Nil(t, lastChapter)
}

func TestResumeStartPosition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, ids := env.seedBook(t, "Resume Book", 1, 100000)
	id := ids[0]

	tests := []struct {
		stored int64
		want   int64
	}{
		{15000, 5000},
		{3000, 0},
		{0, 0},
		{ResumeRewindMs, 0},
		{ResumeRewindMs + 1, 1},
	}

	for _, tt := range tests {
		require.NoError(t, env.store.UpdatePosition(ctx, id, tt.stored))

		got, err := env.tracker.ResumeStartPosition(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "stored %d", tt.stored)
	}

	// Unknown chapters resume at zero.
	got, err := env.tracker.ResumeStartPosition(ctx, 404)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, ids := env.seedBook(t, "Session Book", 2, 100000)
	id := ids[0]

	require.NoError(t, env.store.RecordPlaybackEvent(ctx, id, 15000, 1000, false))

	session, err := env.library.StartSession(ctx, env.tracker, id)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, domain.SessionIdle, session.State())

	// Play resumes 10s behind the stored position.
	pos, err := session.Play(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), pos)
	assert.Equal(t, domain.SessionPlaying, session.State())

	// Progress below the threshold only moves the position.
	adv, err := session.Observe(ctx, 30000)
	require.NoError(t, err)
	assert.False(t, adv.Completed)

	// Pause checkpoints; drain the detached write before reading back.
	require.NoError(t, session.Pause(31000))
	assert.Equal(t, domain.SessionPaused, session.State())
	require.NoError(t, env.tracker.Close())

	c, err := env.store.GetChapter(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(31000), c.LastPlayedPosition)
	assert.NotZero(t, c.LastPlayedTimestamp)
	assert.False(t, c.FinishedPlaying)

	// Resume checkpoints too; drain it before the completion write.
	_, err = session.Play(ctx)
	require.NoError(t, err)
	require.NoError(t, env.tracker.Close())

	adv, err = session.Observe(ctx, 96000)
	require.NoError(t, err)
	assert.True(t, adv.Completed)
	assert.Equal(t, ids[1], adv.NextChapterID, "auto-advance to the next chapter")
	assert.Equal(t, domain.SessionCompleted, session.State())

	require.NoError(t, env.tracker.Close())
	c, err = env.store.GetChapter(ctx, id)
	require.NoError(t, err)
	assert.True(t, c.FinishedPlaying)
	assert.Equal(t, int64(96000), c.LastPlayedPosition)

	// COMPLETED is terminal for the session.
	_, err = session.Play(ctx)
	assert.Error(t, err)
	_, err = session.Observe(ctx, 97000)
	assert.Error(t, err)
}

func TestSessionResumeCheckpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, ids := env.seedBook(t, "Resume Book", 1, 100000)
	id := ids[0]

	session, err := env.library.StartSession(ctx, env.tracker, id)
	require.NoError(t, err)
	require.NotNil(t, session)

	_, err = session.Play(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Pause(20000))
	require.NoError(t, env.tracker.Close())

	// Clobber the stored position so the resume checkpoint is observable.
	require.NoError(t, env.store.UpdatePosition(ctx, id, 0))

	pos, err := session.Play(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), pos, "resume keeps the paused position")
	require.NoError(t, env.tracker.Close())

	c, err := env.store.GetChapter(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), c.LastPlayedPosition)
	assert.False(t, c.FinishedPlaying)
}

func TestSessionNoAdvanceOnLastChapter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, ids := env.seedBook(t, "Short Book", 2, 100000)
	lastID := ids[1]

	session, err := env.library.StartSession(ctx, env.tracker, lastID)
	require.NoError(t, err)
	_, err = session.Play(ctx)
	require.NoError(t, err)

	adv, err := session.Observe(ctx, 96000)
	require.NoError(t, err)
	assert.True(t, adv.Completed)
	assert.Zero(t, adv.NextChapterID, "auto-advance suppressed on the last chapter")
}

func TestSessionUnknownChapter(t *testing.T) {
	env := newTestEnv(t)

	session, err := env.library.StartSession(context.Background(), env.tracker, 404)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestResolveChapterAudio(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, ids := env.seedBook(t, "the name of the wind", 1, 100000)
	id := ids[0]

	// Nothing imported yet: neutral not-found.
	loc, err := env.library.ResolveChapterAudio(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.LocationNotFound, loc.Kind)

	// Place the audio file under the normalized book directory and
	// register it.
	token := normalize.Token("the name of the wind")
	require.Equal(t, "TheNameOfTheWind", token)

	bookDir := filepath.Join(env.audioRoot, "Audiobooks", "BookReader", "audio", token)
	require.NoError(t, os.MkdirAll(bookDir, 0o755))
	payload := append([]byte("ID3"), make([]byte, 32)...)
	require.NoError(t, os.WriteFile(filepath.Join(bookDir, "001.mp3"), payload, 0o644))

	created, ok := env.locator.CreateLocator(ctx, token, "001.mp3", "")
	require.True(t, ok)

	loc, err = env.library.ResolveChapterAudio(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.LocationCatalog, loc.Kind)
	assert.Equal(t, created, loc.Locator)

	// Unknown chapters resolve to the neutral value.
	loc, err = env.library.ResolveChapterAudio(ctx, 404)
	require.NoError(t, err)
	assert.False(t, loc.Found())
}

package dictionary

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveAndLoad(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	d := New()
	d.Add("fish", "an animal that lives in water", "noun")
	d.Add("fish", "to try to catch fish", "verb")
	d.Add("red", "the colour of blood", "adjective")
	d.Put(Entry{Name: "empty"})

	require.NoError(t, s.Save(ctx, d))

	words, defs, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, words)
	assert.Equal(t, 3, defs)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.Entries(), loaded.Entries())
}

func TestStoreSaveReplacesDefinitions(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	first := New()
	first.Add("fish", "old definition", "noun")
	first.Add("red", "the colour of blood", "adjective")
	require.NoError(t, s.Save(ctx, first))

	second := New()
	second.Add("fish", "new definition", "")
	second.Add("fish", "another definition", "")
	require.NoError(t, s.Save(ctx, second))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)

	fish, ok := loaded.Get("fish")
	require.True(t, ok)
	assert.Equal(t, []string{"new definition", "another definition"}, fish.Definitions)
	assert.Equal(t, "noun", fish.Type, "an empty type keeps the stored one")

	red, ok := loaded.Get("red")
	require.True(t, ok, "words missing from the saved dictionary are kept")
	assert.Equal(t, []string{"the colour of blood"}, red.Definitions)
}

func TestStoreSaveCanceledContext(t *testing.T) {
	_, s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New()
	d.Add("fish", "an animal", "")
	assert.Error(t, s.Save(ctx, d))

	words, _, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, words)
}

func TestStoreRuns(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		run, err := s.RecordRun(ctx, Run{
			SourceWord: "fish",
			Order:      2,
			Iterations: 10 + i,
			Words:      12,
			Text:       "a b c",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		_, err = ulid.ParseStrict(run.ID)
		require.NoError(t, err, "run ID should be a ULID")
		ids = append(ids, run.ID)
	}

	runs, err := s.Runs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID, "newest run first")
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Equal(t, 12, runs[0].Iterations)
	assert.True(t, runs[0].CreatedAt.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, "fish", runs[0].SourceWord)
}

func TestStoreRecordRunAssignsDefaults(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	run, err := s.RecordRun(ctx, Run{Order: 1, Text: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	_, err = s.RecordRun(ctx, run)
	assert.Error(t, err, "duplicate run IDs are rejected")
}

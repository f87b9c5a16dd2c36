package journal

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/sharecart/pkg/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "journal"), cart.NewCodec())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_AppendGet(t *testing.T) {
	j := openTestJournal(t)

	record := cart.Record{
		MapX:       73,
		MapY:       1023,
		Misc:       [cart.MiscCount]uint16{54, 540, 999, 65535},
		PlayerName: "Fearless Concurrency",
		Switch:     [cart.SwitchCount]bool{true, false, true},
	}

	entry, err := j.Append(record)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Time.IsZero())
	assert.Equal(t, record, entry.Record)

	got, err := j.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, record, got.Record)
	assert.True(t, entry.Time.Equal(got.Time))
}

func TestJournal_StoresNormalizedRecord(t *testing.T) {
	j := openTestJournal(t)

	entry, err := j.Append(cart.Record{MapX: 0xFFFF, PlayerName: "a\nb"})
	require.NoError(t, err)

	got, err := j.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.Record{MapX: 1023, PlayerName: "ab"}, got.Record)
}

func TestJournal_GetErrors(t *testing.T) {
	j := openTestJournal(t)

	_, err := j.Get("not-a-ksuid")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.Contains(t, err.Error(), "invalid snapshot id")

	_, err = j.Get(ksuid.New().String())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestJournal_ListNewestFirst(t *testing.T) {
	j := openTestJournal(t)

	var ids []string
	for i := 0; i < 5; i++ {
		entry, err := j.Append(cart.Record{Misc: [cart.MiscCount]uint16{uint16(i)}})
		require.NoError(t, err)
		ids = append(ids, entry.ID)
	}

	entries, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i, entry := range entries {
		want := 4 - i
		assert.Equal(t, ids[want], entry.ID)
		assert.Equal(t, uint16(want), entry.Record.Misc[0])
	}

	limited, err := j.List(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[4], limited[0].ID)
	assert.Equal(t, ids[3], limited[1].ID)
}

func TestJournal_ListEmpty(t *testing.T) {
	j := openTestJournal(t)

	entries, err := j.List(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJournal_LiteralQuoteNames(t *testing.T) {
	j := openTestJournal(t)

	names := []string{"`x", "`", `"""x`, "`a`"}
	for _, name := range names {
		_, err := j.Append(cart.Record{MapX: 3, PlayerName: name})
		require.NoError(t, err)
	}

	entries, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, entries, len(names))
	for i, entry := range entries {
		assert.Equal(t, names[len(names)-1-i], entry.Record.PlayerName)
		assert.Equal(t, uint16(3), entry.Record.MapX)
	}
}

func TestJournal_ListSkipsUnreadable(t *testing.T) {
	j := openTestJournal(t)
	core, logs := observer.New(zapcore.WarnLevel)
	j.SetLogger(zap.New(core))

	good, err := j.Append(cart.Record{PlayerName: "good"})
	require.NoError(t, err)

	bad := j.last.Next()
	require.NoError(t, j.db.Set(bad.Bytes(), []byte("[Main\n"), pebble.Sync))
	j.last = bad

	newer, err := j.Append(cart.Record{PlayerName: "newer"})
	require.NoError(t, err)

	entries, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, good.ID, entries[1].ID)
	assert.Equal(t, 1, logs.FilterMessage("skipping unreadable snapshot").Len())

	// The unreadable snapshot can still be removed
	require.NoError(t, j.Delete(bad.String()))
	_, err = j.Get(bad.String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJournal_Delete(t *testing.T) {
	j := openTestJournal(t)

	first, err := j.Append(cart.Record{MapX: 1})
	require.NoError(t, err)
	second, err := j.Append(cart.Record{MapX: 2})
	require.NoError(t, err)

	require.NoError(t, j.Delete(first.ID))

	_, err = j.Get(first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, second.ID, entries[0].ID)

	assert.ErrorIs(t, j.Delete(first.ID), ErrNotFound)
	assert.ErrorIs(t, j.Delete("not-a-ksuid"), ErrInvalidID)
}

func TestJournal_Prune(t *testing.T) {
	j := openTestJournal(t)

	for i := 0; i < 6; i++ {
		_, err := j.Append(cart.Record{MapY: uint16(i)})
		require.NoError(t, err)
	}

	removed, err := j.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 4, removed)

	entries, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint16(5), entries[0].Record.MapY)
	assert.Equal(t, uint16(4), entries[1].Record.MapY)

	removed, err = j.Prune(10)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestJournal_Reopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")

	j, err := Open(dir, nil)
	require.NoError(t, err)
	before, err := j.Append(cart.Record{PlayerName: "persisted"})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(dir, nil)
	require.NoError(t, err)
	defer j.Close()

	got, err := j.Get(before.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Record.PlayerName)

	after, err := j.Append(cart.Record{PlayerName: "later"})
	require.NoError(t, err)
	assert.Greater(t, after.ID, before.ID, fmt.Sprintf("%s should sort after %s", after.ID, before.ID))
}

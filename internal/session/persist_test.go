// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestPersist(t *testing.T) *PersistedStore {
	t.Helper()
	return NewPersistedStore(t.TempDir())
}

func TestPersistedStoreRoundTrip(t *testing.T) {
	p := newTestPersist(t)

	err := p.Write("tok-1", "admin", Profile{"name": "A"})
	require.NoError(t, err)

	rec, err := p.Read()
	require.NoError(t, err)
	require.Equal(t, "tok-1", rec.Token)
	require.Equal(t, "admin", rec.Role)
	require.Equal(t, "A", rec.User.String("name"))
}

func TestPersistedStoreReadEmpty(t *testing.T) {
	p := newTestPersist(t)

	rec, err := p.Read()
	require.NoError(t, err, "an empty directory is not a storage failure")
	require.Empty(t, rec.Token)
	require.Empty(t, rec.Role)
	require.Nil(t, rec.User)
}

func TestPersistedStoreEntryPermissions(t *testing.T) {
	p := newTestPersist(t)
	require.NoError(t, p.Write("tok", "admin", nil))

	info, err := os.Stat(filepath.Join(p.Dir(), "token"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestPersistedStoreCorruptUserEntry(t *testing.T) {
	p := newTestPersist(t)
	require.NoError(t, p.Write("tok-1", "admin", Profile{"name": "A"}))

	// Damage only the user entry.
	userPath := filepath.Join(p.Dir(), "user.json")
	require.NoError(t, os.WriteFile(userPath, []byte("not-json"), 0600))

	rec, err := p.Read()
	require.NoError(t, err, "a damaged entry is dropped, not a failure")
	require.Equal(t, "tok-1", rec.Token)
	require.Equal(t, "admin", rec.Role)
	require.Nil(t, rec.User)

	// The damaged entry was deleted so the next read is clean.
	_, statErr := os.Stat(userPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestPersistedStoreWriteUserOnly(t *testing.T) {
	p := newTestPersist(t)
	require.NoError(t, p.Write("tok-1", "admin", Profile{"name": "A"}))

	require.NoError(t, p.WriteUser(Profile{"name": "B"}))

	rec, err := p.Read()
	require.NoError(t, err)
	require.Equal(t, "tok-1", rec.Token, "token untouched by profile update")
	require.Equal(t, "admin", rec.Role, "role untouched by profile update")
	require.Equal(t, "B", rec.User.String("name"))
}

func TestPersistedStoreWriteNilUserRemovesEntry(t *testing.T) {
	p := newTestPersist(t)
	require.NoError(t, p.Write("tok-1", "admin", Profile{"name": "A"}))

	require.NoError(t, p.WriteUser(nil))

	_, err := os.Stat(filepath.Join(p.Dir(), "user.json"))
	require.True(t, os.IsNotExist(err))
}

func TestPersistedStoreClear(t *testing.T) {
	p := newTestPersist(t)
	require.NoError(t, p.Write("tok-1", "admin", Profile{"name": "A"}))

	require.NoError(t, p.Clear())

	for _, name := range []string{"token", "role", "user.json"} {
		_, err := os.Stat(filepath.Join(p.Dir(), name))
		require.True(t, os.IsNotExist(err), "entry %s should be gone", name)
	}

	// Clearing an already-empty store is fine.
	require.NoError(t, p.Clear())
}

func TestPersistedStoreToken(t *testing.T) {
	p := newTestPersist(t)
	require.Empty(t, p.Token())

	require.NoError(t, p.Write("tok-9", "admin", nil))
	require.Equal(t, "tok-9", p.Token())

	require.NoError(t, p.Clear())
	require.Empty(t, p.Token(), "token source reflects storage, not memory")
}

func TestPersistedStoreBrokenStorage(t *testing.T) {
	// A store whose directory path is actually a file: every entry read
	// fails with a real I/O error, not a missing-file error.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "state")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	p := NewPersistedStore(blocker)
	rec, err := p.Read()
	require.Error(t, err, "broken storage is reported")
	require.Empty(t, rec.Token, "record still usable and degrades to no session")
	require.Empty(t, rec.Role)
}

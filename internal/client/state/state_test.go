package state

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/atinyakov/GophStore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPersister struct {
	saved   []Snapshot
	loadErr error
	saveErr error
	initial Snapshot
}

func (m *memPersister) Load() (Snapshot, error) { return m.initial, m.loadErr }

func (m *memPersister) Save(s Snapshot) error {
	m.saved = append(m.saved, s)
	return m.saveErr
}

var testStores = []models.Store{
	{ID: "1", Name: "TechStore"},
	{ID: "2", Name: "EletroMax"},
}

func newSession(t *testing.T) (*Session, *memPersister, *int) {
	t.Helper()
	p := &memPersister{}
	s := NewSession(p)
	changes := 0
	s.OnChange = func() { changes++ }
	s.SetStores(testStores)
	return s, p, &changes
}

func TestSelectStore(t *testing.T) {
	s, p, changes := newSession(t)
	*changes = 0

	assert.False(t, s.SelectStore("99"))
	assert.Equal(t, "", s.CurrentStoreID())
	assert.Equal(t, models.ViewAllProducts, s.View())
	assert.Empty(t, p.saved)
	assert.Zero(t, *changes)

	s.SetPassword("typed")
	require.True(t, s.SelectStore("1"))
	assert.Equal(t, "1", s.CurrentStoreID())
	assert.Equal(t, models.ViewStoreProducts, s.View())
	assert.Empty(t, s.Password())
	assert.Equal(t, Snapshot{CurrentStore: "1"}, p.saved[len(p.saved)-1])
	assert.Equal(t, 1, *changes)
}

func TestSelectStore_KeepsLogin(t *testing.T) {
	s, _, _ := newSession(t)
	require.True(t, s.SelectStore("1"))
	require.NoError(t, s.CompleteLogin("tok"))

	s.ShowAllProducts()
	require.True(t, s.SelectStore("1"))
	assert.True(t, s.LoggedIn())
	assert.Equal(t, models.ViewStoreProducts, s.View())

	s.SetPassword("typed")
	require.True(t, s.SelectStore("2"))
	assert.True(t, s.LoggedIn(), "switching stores does not log out")
	assert.Equal(t, "tok", s.Token())
	assert.Empty(t, s.Password())
	assert.Equal(t, "1", s.Snapshot().AuthStore)
}

func TestLogin(t *testing.T) {
	s, p, _ := newSession(t)

	assert.ErrorIs(t, s.CompleteLogin("tok"), ErrNoStore)
	assert.False(t, s.LoggedIn())

	require.True(t, s.SelectStore("1"))
	s.SetPassword("wrong")
	s.FailLogin()
	assert.Empty(t, s.Password())
	assert.False(t, s.LoggedIn())

	s.SetPassword("123456")
	require.NoError(t, s.CompleteLogin("tok"))
	assert.True(t, s.LoggedIn())
	assert.Empty(t, s.Password())
	assert.Equal(t, Snapshot{CurrentStore: "1", IsLoggedIn: true, Token: "tok", AuthStore: "1"}, p.saved[len(p.saved)-1])
}

func TestLogout(t *testing.T) {
	s, p, _ := newSession(t)
	require.True(t, s.SelectStore("1"))
	require.NoError(t, s.CompleteLogin("tok"))
	require.NoError(t, s.BeginEdit("p1"))

	s.Logout()
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.Token())
	assert.Equal(t, "1", s.CurrentStoreID())
	assert.Equal(t, models.ViewStoreProducts, s.View())
	assert.Empty(t, s.EditingID())
	assert.Equal(t, Snapshot{CurrentStore: "1"}, p.saved[len(p.saved)-1])

	s.ShowAllProducts()
	s.Logout()
	assert.Equal(t, models.ViewAllProducts, s.View())
}

func TestCanManage(t *testing.T) {
	own := models.Product{ID: "a", StoreID: "1"}
	other := models.Product{ID: "b", StoreID: "2"}

	s, _, _ := newSession(t)
	assert.False(t, s.CanManage(own))

	require.True(t, s.SelectStore("1"))
	assert.False(t, s.CanManage(own))

	require.NoError(t, s.CompleteLogin("tok"))
	assert.True(t, s.CanManage(own))
	assert.False(t, s.CanManage(other))

	s.Logout()
	assert.False(t, s.CanManage(own))
}

func TestViewTransitionsRequireLogin(t *testing.T) {
	s, _, _ := newSession(t)

	assert.ErrorIs(t, s.EnterAddProduct(), models.ErrNotLoggedIn)
	assert.ErrorIs(t, s.EnterManageProducts(), models.ErrNotLoggedIn)
	assert.ErrorIs(t, s.BeginEdit("p1"), models.ErrNotLoggedIn)
	assert.Equal(t, models.ViewAllProducts, s.View())

	require.True(t, s.SelectStore("1"))
	require.NoError(t, s.CompleteLogin("tok"))

	require.NoError(t, s.EnterAddProduct())
	assert.Equal(t, models.ViewAddProduct, s.View())
	assert.Empty(t, s.EditingID())

	require.NoError(t, s.BeginEdit("p1"))
	assert.Equal(t, models.ViewAddProduct, s.View())
	assert.Equal(t, "p1", s.EditingID())

	s.CancelForm()
	assert.Equal(t, models.ViewStoreProducts, s.View())
	assert.Empty(t, s.EditingID())

	require.NoError(t, s.EnterManageProducts())
	assert.Equal(t, models.ViewManageProducts, s.View())
}

func TestRestore(t *testing.T) {
	cases := []struct {
		name         string
		saved        Snapshot
		wantLoggedIn bool
		wantStore    string
	}{
		{"logged in", Snapshot{CurrentStore: "1", IsLoggedIn: true, Token: "tok"}, true, "1"},
		{"logged in without store", Snapshot{IsLoggedIn: true, Token: "tok"}, false, ""},
		{"logged in without token", Snapshot{CurrentStore: "2", IsLoggedIn: true}, false, "2"},
		{"logged out", Snapshot{CurrentStore: "2"}, false, "2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession(&memPersister{initial: tc.saved})
			require.NoError(t, s.Restore())
			assert.Equal(t, tc.wantLoggedIn, s.LoggedIn())
			assert.Equal(t, tc.wantStore, s.CurrentStoreID())
			if s.LoggedIn() {
				assert.NotEmpty(t, s.CurrentStoreID())
			}
		})
	}

	s := NewSession(&memPersister{loadErr: errors.New("disk")})
	assert.Error(t, s.Restore())
}

func TestPersistErrorIsReported(t *testing.T) {
	p := &memPersister{saveErr: errors.New("read-only")}
	s := NewSession(p)
	s.SetStores(testStores)
	var got error
	s.OnPersistError = func(err error) { got = err }

	require.True(t, s.SelectStore("1"))
	assert.EqualError(t, got, "read-only")
	assert.Equal(t, "1", s.CurrentStoreID())
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	fs := NewFileStore(path)

	empty, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{}, empty)

	want := Snapshot{CurrentStore: "3", IsLoggedIn: true, Token: "tok", AuthStore: "3"}
	require.NoError(t, fs.Save(want))

	got, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	var raw map[string]map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "3", raw[StorageKey]["currentStore"])
	assert.Equal(t, true, raw[StorageKey]["isLoggedIn"])
}

func TestFileStore_PreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o600))

	require.NoError(t, NewFileStore(path).Save(Snapshot{CurrentStore: "1"}))

	var raw map[string]json.RawMessage
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `"dark"`, string(raw["theme"]))
	assert.Contains(t, raw, StorageKey)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)

	require.NoError(t, NewFileStore(path).Save(Snapshot{CurrentStore: "1"}))
	got, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "1", got.CurrentStore)
}

func TestSessionWithFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s := NewSession(NewFileStore(path))
	s.SetStores(testStores)
	require.True(t, s.SelectStore("2"))
	require.NoError(t, s.CompleteLogin("tok"))

	restored := NewSession(NewFileStore(path))
	require.NoError(t, restored.Restore())
	assert.Equal(t, "2", restored.CurrentStoreID())
	assert.True(t, restored.LoggedIn())
	assert.Equal(t, "tok", restored.Token())
	assert.Equal(t, models.ViewAllProducts, restored.View())
}

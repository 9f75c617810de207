// Package state holds the storefront client's session and view state and
// mirrors it to durable storage.
package state

import (
	"errors"

	"github.com/atinyakov/GophStore/internal/models"
)

// ErrNoStore is returned when an operation needs a selected store.
var ErrNoStore = errors.New("no store selected")

// Session is the single record of what the user is looking at and whether
// they may change it. It is not safe for concurrent use; its owner
// serializes access.
//
// Invariant: LoggedIn implies a current store.
type Session struct {
	currentStore string
	loggedIn     bool
	token        string
	authStore    string

	view      models.View
	editingID string
	password  string
	stores    []models.Store

	persister Persister

	// OnChange is called after every mutation.
	OnChange func()
	// OnPersistError receives save failures. Mutations still apply.
	OnPersistError func(error)
}

// NewSession returns a session showing all products. A nil persister keeps
// the session in memory only.
func NewSession(p Persister) *Session {
	return &Session{view: models.ViewAllProducts, persister: p}
}

// Restore loads the persisted snapshot.
func (s *Session) Restore() error {
	if s.persister == nil {
		return nil
	}
	snap, err := s.persister.Load()
	if err != nil {
		return err
	}
	s.currentStore = snap.CurrentStore
	s.loggedIn = snap.IsLoggedIn
	s.token = snap.Token
	s.authStore = snap.AuthStore
	if s.authStore == "" {
		s.authStore = s.currentStore
	}
	if s.currentStore == "" || s.token == "" {
		s.dropLogin()
	}
	s.notify()
	return nil
}

// Snapshot returns the durable part of the session.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		CurrentStore: s.currentStore,
		IsLoggedIn:   s.loggedIn,
		Token:        s.token,
		AuthStore:    s.authStore,
	}
}

func (s *Session) commit() {
	if s.persister != nil {
		if err := s.persister.Save(s.Snapshot()); err != nil && s.OnPersistError != nil {
			s.OnPersistError(err)
		}
	}
	s.notify()
}

func (s *Session) notify() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

func (s *Session) dropLogin() {
	s.loggedIn = false
	s.token = ""
	s.authStore = ""
}

// SetStores replaces the known stores.
func (s *Session) SetStores(stores []models.Store) {
	s.stores = append([]models.Store(nil), stores...)
	s.notify()
}

// Stores returns the known stores.
func (s *Session) Stores() []models.Store { return s.stores }

// Store resolves a known store.
func (s *Session) Store(id string) (models.Store, bool) {
	for _, st := range s.stores {
		if st.ID == id {
			return st, true
		}
	}
	return models.Store{}, false
}

// CurrentStore returns the selected store, if it is known.
func (s *Session) CurrentStore() (models.Store, bool) {
	if s.currentStore == "" {
		return models.Store{}, false
	}
	return s.Store(s.currentStore)
}

func (s *Session) CurrentStoreID() string { return s.currentStore }
func (s *Session) LoggedIn() bool         { return s.loggedIn }
func (s *Session) Token() string          { return s.token }
func (s *Session) View() models.View      { return s.view }
func (s *Session) EditingID() string      { return s.editingID }
func (s *Session) Password() string       { return s.password }

// SelectStore switches to the store-products view of id and reports whether
// id is a known store. An unknown id changes nothing. Selecting the store
// the session is authenticated for keeps the login; selecting another store
// clears the password input but leaves an existing login in place.
func (s *Session) SelectStore(id string) bool {
	if _, ok := s.Store(id); !ok {
		return false
	}
	if id != s.currentStore || !s.loggedIn || s.authStore != id {
		s.password = ""
	}
	s.currentStore = id
	s.view = models.ViewStoreProducts
	s.editingID = ""
	s.commit()
	return true
}

// SetPassword records the password typed for the current store.
func (s *Session) SetPassword(p string) {
	s.password = p
}

// CompleteLogin marks the current store as authenticated with token.
func (s *Session) CompleteLogin(token string) error {
	if s.currentStore == "" {
		return ErrNoStore
	}
	s.loggedIn = true
	s.token = token
	s.authStore = s.currentStore
	s.password = ""
	s.commit()
	return nil
}

// FailLogin clears the password input and leaves everything else unchanged.
func (s *Session) FailLogin() {
	s.password = ""
	s.notify()
}

// Logout clears the login. The store selection survives. A form or the
// management list falls back to the store's products.
func (s *Session) Logout() {
	s.dropLogin()
	s.editingID = ""
	if s.view == models.ViewAddProduct || s.view == models.ViewManageProducts {
		s.view = models.ViewStoreProducts
	}
	s.commit()
}

// CanManage reports whether the session may edit or delete p.
func (s *Session) CanManage(p models.Product) bool {
	return s.loggedIn && s.currentStore != "" && s.currentStore == p.StoreID
}

// ShowAllProducts switches to the all-products view.
func (s *Session) ShowAllProducts() {
	s.view = models.ViewAllProducts
	s.editingID = ""
	s.notify()
}

func (s *Session) requireLogin() error {
	if !s.loggedIn || s.currentStore == "" {
		return models.ErrNotLoggedIn
	}
	return nil
}

// EnterAddProduct opens an empty product form.
func (s *Session) EnterAddProduct() error {
	if err := s.requireLogin(); err != nil {
		return err
	}
	s.view = models.ViewAddProduct
	s.editingID = ""
	s.notify()
	return nil
}

// EnterManageProducts opens the management list of the current store.
func (s *Session) EnterManageProducts() error {
	if err := s.requireLogin(); err != nil {
		return err
	}
	s.view = models.ViewManageProducts
	s.editingID = ""
	s.notify()
	return nil
}

// BeginEdit opens the product form on product id.
func (s *Session) BeginEdit(id string) error {
	if err := s.requireLogin(); err != nil {
		return err
	}
	s.view = models.ViewAddProduct
	s.editingID = id
	s.notify()
	return nil
}

// CancelForm leaves the product form for the store's products.
func (s *Session) CancelForm() {
	s.editingID = ""
	if s.currentStore == "" {
		s.view = models.ViewAllProducts
	} else {
		s.view = models.ViewStoreProducts
	}
	s.notify()
}

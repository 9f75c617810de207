// Package storefront binds the session state, the API client and a view
// together into the storefront's user actions.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atinyakov/GophStore/internal/client/api"
	"github.com/atinyakov/GophStore/internal/client/display"
	"github.com/atinyakov/GophStore/internal/client/state"
	"github.com/atinyakov/GophStore/internal/models"
	"golang.org/x/sync/errgroup"
)

// API is the part of the server API the storefront uses.
type API interface {
	Stores(ctx context.Context) ([]models.Store, error)
	Authenticate(ctx context.Context, storeID, password string) (*models.Store, string, error)
	Products(ctx context.Context) ([]models.Product, error)
	ProductsByStore(ctx context.Context, storeID string) ([]models.Product, error)
	CreateProduct(ctx context.Context, token string, f api.ProductForm) (*models.Product, error)
	UpdateProduct(ctx context.Context, token, id string, f api.ProductForm) (*models.Product, error)
	DeleteProduct(ctx context.Context, token, id string) error
}

// Level is the severity of a toast.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	}
	return "info"
}

// Item is one displayed product.
type Item struct {
	Product   models.Product
	StoreName string
	CanManage bool
}

// Screen is everything the view needs to draw the current state.
type Screen struct {
	View     models.View
	Store    *models.Store
	LoggedIn bool
	Stores   []models.Store
	Filters  display.Filters
	Items    []Item
	// Form is set in the add-product view, prefilled when editing.
	Form    *FormInput
	Editing string
}

// Empty reports whether there is nothing to list.
func (s Screen) Empty() bool { return len(s.Items) == 0 }

// Renderer draws screens and transient notifications.
type Renderer interface {
	Render(Screen)
	Toast(Level, string)
}

// Controller owns the session and serializes every user action on it.
// Network calls run without the lock held.
type Controller struct {
	api      API
	session  *state.Session
	view     Renderer
	debounce *display.Debouncer

	mu       sync.Mutex
	products []models.Product
	filters  display.Filters
	seq      uint64
}

// New creates a Controller. The session should not be shared.
func New(a API, session *state.Session, view Renderer) *Controller {
	session.OnPersistError = func(err error) {
		view.Toast(LevelError, "could not save session: "+err.Error())
	}
	return &Controller{
		api:      a,
		session:  session,
		view:     view,
		debounce: display.NewDebouncer(display.DefaultDelay),
	}
}

// Init restores the session, loads stores and products concurrently and
// shows all products.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	if err := c.session.Restore(); err != nil {
		c.view.Toast(LevelError, "could not restore session: "+err.Error())
	}
	c.mu.Unlock()

	var (
		stores   []models.Store
		products []models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if stores, err = c.api.Stores(gctx); err != nil {
			return fmt.Errorf("load stores: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if products, err = c.api.Products(gctx); err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.view.Toast(LevelError, err.Error())
		return err
	}
	c.session.SetStores(stores)
	c.seq++
	c.products = products
	c.session.ShowAllProducts()
	c.render()
	return nil
}

// Close cancels a pending search.
func (c *Controller) Close() {
	c.debounce.Stop()
}

// Screen returns the current screen.
func (c *Controller) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen()
}

func (c *Controller) screen() Screen {
	stores := c.session.Stores()
	names := display.StoreNames(stores)
	view := c.session.View()

	list := display.Display(c.products, stores, view, c.filters)
	items := make([]Item, 0, len(list))
	for _, p := range list {
		items = append(items, Item{Product: p, StoreName: names[p.StoreID], CanManage: c.session.CanManage(p)})
	}

	sc := Screen{
		View:     view,
		LoggedIn: c.session.LoggedIn(),
		Stores:   stores,
		Filters:  c.filters,
		Items:    items,
	}
	if st, ok := c.session.CurrentStore(); ok {
		sc.Store = &st
	}
	if view == models.ViewAddProduct {
		form := FormInput{}
		if id := c.session.EditingID(); id != "" {
			sc.Editing = id
			if p, ok := c.find(id); ok {
				form = FormFromProduct(p)
			}
		}
		sc.Form = &form
	}
	return sc
}

func (c *Controller) render() {
	c.view.Render(c.screen())
}

func (c *Controller) find(id string) (models.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// reload fetches the products of the current view. A response is dropped
// when a newer load started after it was requested.
func (c *Controller) reload(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	storeID := ""
	if c.session.View() != models.ViewAllProducts {
		storeID = c.session.CurrentStoreID()
	}
	c.mu.Unlock()

	var (
		products []models.Product
		err      error
	)
	if storeID == "" {
		products, err = c.api.Products(ctx)
	} else {
		products, err = c.api.ProductsByStore(ctx, storeID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return nil
	}
	if err != nil {
		c.view.Toast(LevelError, "could not load products: "+err.Error())
		return err
	}
	c.products = products
	c.render()
	return nil
}

// ShowAllProducts lists every store's products.
func (c *Controller) ShowAllProducts(ctx context.Context) error {
	c.mu.Lock()
	c.session.ShowAllProducts()
	c.mu.Unlock()
	return c.reload(ctx)
}

// SelectStore lists the products of store id. An unknown id is ignored.
func (c *Controller) SelectStore(ctx context.Context, id string) error {
	c.mu.Lock()
	ok := c.session.SelectStore(id)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.reload(ctx)
}

// Login authenticates the selected store with password.
func (c *Controller) Login(ctx context.Context, password string) error {
	c.mu.Lock()
	storeID := c.session.CurrentStoreID()
	if storeID == "" {
		c.view.Toast(LevelError, "select a store first")
		c.mu.Unlock()
		return state.ErrNoStore
	}
	if password == "" {
		c.view.Toast(LevelError, "enter the store password")
		c.mu.Unlock()
		return models.NewValidationError("password", "password is required")
	}
	c.session.SetPassword(password)
	c.mu.Unlock()

	_, token, err := c.api.Authenticate(ctx, storeID, password)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.session.FailLogin()
		if errors.Is(err, models.ErrInvalidCredentials) {
			c.view.Toast(LevelError, "wrong password")
		} else {
			c.view.Toast(LevelError, "login failed: "+err.Error())
		}
		c.render()
		return err
	}
	if c.session.CurrentStoreID() != storeID {
		return nil
	}
	if err := c.session.CompleteLogin(token); err != nil {
		return err
	}
	st, _ := c.session.CurrentStore()
	c.view.Toast(LevelSuccess, "logged in as "+st.Name)
	c.render()
	return nil
}

// Logout ends the store session. The store stays selected.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Logout()
	c.view.Toast(LevelInfo, "logged out")
	c.render()
}

// ShowAddProduct opens an empty product form.
func (c *Controller) ShowAddProduct() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.session.EnterAddProduct(); err != nil {
		c.view.Toast(LevelError, "log in to add products")
		return err
	}
	c.render()
	return nil
}

// ShowManageProducts lists the logged-in store's products for management.
func (c *Controller) ShowManageProducts(ctx context.Context) error {
	c.mu.Lock()
	if err := c.session.EnterManageProducts(); err != nil {
		c.view.Toast(LevelError, "log in to manage products")
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()
	return c.reload(ctx)
}

// EditProduct opens the form on one of the store's products.
func (c *Controller) EditProduct(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.find(id)
	if !ok {
		c.view.Toast(LevelError, "product not found")
		return models.ErrNotFound
	}
	if !c.session.CanManage(p) {
		c.view.Toast(LevelError, "this product belongs to another store")
		return models.ErrForbidden
	}
	if err := c.session.BeginEdit(id); err != nil {
		return err
	}
	c.render()
	return nil
}

// CancelForm closes the product form.
func (c *Controller) CancelForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.CancelForm()
	c.render()
}

// SubmitForm validates the form and creates or updates the product.
func (c *Controller) SubmitForm(ctx context.Context, in FormInput) error {
	c.mu.Lock()
	if !c.session.LoggedIn() || c.session.View() != models.ViewAddProduct {
		c.view.Toast(LevelError, "log in to add products")
		c.mu.Unlock()
		return models.ErrNotLoggedIn
	}
	editing := c.session.EditingID()
	form, err := ValidateForm(in, editing == "")
	if err != nil {
		c.view.Toast(LevelError, err.Error())
		c.mu.Unlock()
		return err
	}
	form.StoreID = c.session.CurrentStoreID()
	token := c.session.Token()
	c.mu.Unlock()

	if editing == "" {
		_, err = c.api.CreateProduct(ctx, token, form)
	} else {
		_, err = c.api.UpdateProduct(ctx, token, editing, form)
	}
	if err != nil {
		return c.writeFailed(err)
	}

	c.mu.Lock()
	if editing == "" {
		c.view.Toast(LevelSuccess, "product added")
	} else {
		c.view.Toast(LevelSuccess, "product updated")
	}
	_ = c.session.EnterManageProducts()
	c.mu.Unlock()
	return c.reload(ctx)
}

// DeleteProduct removes one of the store's products.
func (c *Controller) DeleteProduct(ctx context.Context, id string) error {
	c.mu.Lock()
	p, ok := c.find(id)
	if !ok {
		c.view.Toast(LevelError, "product not found")
		c.mu.Unlock()
		return models.ErrNotFound
	}
	if !c.session.CanManage(p) {
		c.view.Toast(LevelError, "this product belongs to another store")
		c.mu.Unlock()
		return models.ErrForbidden
	}
	token := c.session.Token()
	c.mu.Unlock()

	if err := c.api.DeleteProduct(ctx, token, id); err != nil {
		return c.writeFailed(err)
	}

	c.mu.Lock()
	c.view.Toast(LevelSuccess, "product deleted")
	c.mu.Unlock()
	return c.reload(ctx)
}

// writeFailed reports a rejected write. A token that is expired or belongs
// to another store ends the session.
func (c *Controller) writeFailed(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if errors.Is(err, models.ErrForbidden) || errors.Is(err, models.ErrInvalidCredentials) {
		c.session.Logout()
		c.view.Toast(LevelError, "your session is not valid for this store, log in again")
		c.render()
		return err
	}
	c.view.Toast(LevelError, err.Error())
	return err
}

// Buy tells the user how to get a product.
func (c *Controller) Buy(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.find(id)
	if !ok {
		c.view.Toast(LevelError, "product not found")
		return models.ErrNotFound
	}
	store := "the store"
	if st, ok := c.session.Store(p.StoreID); ok {
		store = st.Name
	}
	c.view.Toast(LevelInfo, fmt.Sprintf("%s: contact %s to buy it", p.Name, store))
	return nil
}

// SetSearch filters by term once the user stops typing.
func (c *Controller) SetSearch(term string) {
	c.debounce.Trigger(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.filters.Search = term
		c.render()
	})
}

// SetSort orders the list by key.
func (c *Controller) SetSort(key display.SortKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Sort = key
	c.render()
}

// SetStoreFilter narrows the all-products view to one store. Empty clears it.
func (c *Controller) SetStoreFilter(storeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.StoreID = storeID
	c.render()
}

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/GophStore/internal/client/display"
	"github.com/atinyakov/GophStore/internal/client/storefront"
)

// Storefront is the set of user actions the shell dispatches to.
type Storefront interface {
	Screen() storefront.Screen
	ShowAllProducts(ctx context.Context) error
	SelectStore(ctx context.Context, id string) error
	Login(ctx context.Context, password string) error
	Logout()
	ShowAddProduct() error
	ShowManageProducts(ctx context.Context) error
	EditProduct(id string) error
	SubmitForm(ctx context.Context, in storefront.FormInput) error
	CancelForm()
	DeleteProduct(ctx context.Context, id string) error
	Buy(id string) error
	SetSearch(term string)
	SetSort(key display.SortKey)
	SetStoreFilter(storeID string)
}

const helpText = `Commands:
  all                  list every store's products
  stores               list the stores
  select <storeId>     show one store's products
  login [password]     log in to the selected store
  logout               log out
  search [term]        filter by name, defect or rct (empty clears)
  sort <name|price|store|none>
  filter <storeId|all> narrow the all-products list to one store
  add                  add a product (logged in)
  manage               list your store's products (logged in)
  edit <id>            edit one of your products
  delete <id>          delete one of your products
  buy <id>             show how to buy a product
  cancel               leave the product form
  exit                 quit`

// Shell is the interactive command loop.
type Shell struct {
	sf     Storefront
	prompt *Prompter
	view   *Renderer
	out    io.Writer
}

// New returns a Shell.
func New(sf Storefront, prompt *Prompter, view *Renderer, out io.Writer) *Shell {
	return &Shell{sf: sf, prompt: prompt, view: view, out: out}
}

// Run reads commands until exit or the end of input.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.prompt.ReadLine("gophstore> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := s.Exec(ctx, line); quit {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the shell should quit.
// Action errors have already been shown as toasts and are not returned.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}
	arg := func() (string, bool) {
		if len(args) < 2 {
			fmt.Fprintf(s.out, "Usage: %s <id>\n", args[0])
			return "", false
		}
		return args[1], true
	}

	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "all":
		_ = s.sf.ShowAllProducts(ctx)
	case "stores":
		s.view.Stores(s.sf.Screen().Stores)
	case "select":
		if id, ok := arg(); ok {
			_ = s.sf.SelectStore(ctx, id)
		}
	case "login":
		password := strings.Join(args[1:], " ")
		if password == "" {
			p, err := s.prompt.ReadLine("Password: ")
			if err != nil {
				return true
			}
			password = p
		}
		_ = s.sf.Login(ctx, password)
	case "logout":
		s.sf.Logout()
	case "search":
		s.sf.SetSearch(strings.Join(args[1:], " "))
	case "sort":
		key := display.SortNone
		if len(args) > 1 && args[1] != "none" {
			key = display.SortKey(args[1])
		}
		s.sf.SetSort(key)
	case "filter":
		storeID := ""
		if len(args) > 1 && args[1] != "all" {
			storeID = args[1]
		}
		s.sf.SetStoreFilter(storeID)
	case "add":
		if err := s.sf.ShowAddProduct(); err != nil {
			return false
		}
		return s.fillForm(ctx, storefront.FormInput{})
	case "manage":
		_ = s.sf.ShowManageProducts(ctx)
	case "edit":
		id, ok := arg()
		if !ok {
			return false
		}
		if err := s.sf.EditProduct(id); err != nil {
			return false
		}
		current := storefront.FormInput{}
		if f := s.sf.Screen().Form; f != nil {
			current = *f
		}
		return s.fillForm(ctx, current)
	case "delete":
		if id, ok := arg(); ok {
			_ = s.sf.DeleteProduct(ctx, id)
		}
	case "buy":
		if id, ok := arg(); ok {
			_ = s.sf.Buy(id)
		}
	case "cancel":
		s.sf.CancelForm()
	case "exit", "quit":
		fmt.Fprintln(s.out, "Bye")
		return true
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return false
}

func (s *Shell) fillForm(ctx context.Context, current storefront.FormInput) bool {
	in, err := s.prompt.ReadProduct(current)
	if errors.Is(err, io.EOF) {
		s.sf.CancelForm()
		return true
	}
	if err != nil {
		fmt.Fprintln(s.out, err)
		s.sf.CancelForm()
		return false
	}
	_ = s.sf.SubmitForm(ctx, in)
	return false
}

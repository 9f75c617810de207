// Package shell is the terminal front end of the storefront.
package shell

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/GophStore/internal/client/storefront"
	"github.com/atinyakov/GophStore/internal/models"
	"github.com/charmbracelet/lipgloss"
)

// EmptyMessage is printed in place of an empty product list.
const EmptyMessage = "No products found."

var viewTitles = map[models.View]string{
	models.ViewAllProducts:    "All products",
	models.ViewStoreProducts:  "Store products",
	models.ViewAddProduct:     "Product form",
	models.ViewManageProducts: "Manage products",
}

// Renderer draws storefront screens as text. Colors are used only when the
// writer is a terminal.
type Renderer struct {
	out io.Writer

	header  lipgloss.Style
	muted   lipgloss.Style
	price   lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

// NewRenderer returns a Renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	r := lipgloss.NewRenderer(out)
	return &Renderer{
		out:     out,
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		muted:   r.NewStyle().Faint(true),
		price:   r.NewStyle().Foreground(lipgloss.Color("10")),
		info:    r.NewStyle().Foreground(lipgloss.Color("14")),
		success: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		failure: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

func formatMoney(v float64) string {
	return "R$ " + strconv.FormatFloat(v, 'f', 2, 64)
}

// Render prints s.
func (r *Renderer) Render(s storefront.Screen) {
	var b strings.Builder

	title := viewTitles[s.View]
	if s.Store != nil && s.View != models.ViewAllProducts {
		title += " - " + s.Store.Name
	}
	b.WriteString(r.header.Render(title))
	b.WriteString("\n")

	status := "not logged in"
	if s.LoggedIn && s.Store != nil {
		status = "logged in as " + s.Store.Name
	}
	b.WriteString(r.muted.Render(status))
	b.WriteString("\n")

	if s.View == models.ViewAddProduct {
		if s.Editing != "" {
			fmt.Fprintf(&b, "Editing product %s. Type 'edit %s' to fill the form or 'cancel'.\n", s.Editing, s.Editing)
		} else {
			b.WriteString("New product. Type 'add' to fill the form or 'cancel'.\n")
		}
		_, _ = io.WriteString(r.out, b.String())
		return
	}

	if s.Empty() {
		b.WriteString(r.muted.Render(EmptyMessage))
		b.WriteString("\n")
		_, _ = io.WriteString(r.out, b.String())
		return
	}

	for _, it := range s.Items {
		p := it.Product
		fmt.Fprintf(&b, "[%s] %s (%s)\n", p.ID, p.Name, storeLabel(it.StoreName))
		fmt.Fprintf(&b, "    defect: %s | rct: %s\n", p.Defect, p.RCT)
		prices := "    original: " + formatMoney(p.OriginalPrice)
		if p.PromotionalPrice != nil {
			prices += " | promo: " + formatMoney(*p.PromotionalPrice)
		}
		prices += " | final: " + r.price.Render(formatMoney(p.FinalPrice))
		b.WriteString(prices)
		b.WriteString("\n")
		if it.CanManage {
			b.WriteString(r.muted.Render("    edit " + p.ID + " | delete " + p.ID))
			b.WriteString("\n")
		}
	}
	_, _ = io.WriteString(r.out, b.String())
}

func storeLabel(name string) string {
	if name == "" {
		return "unknown store"
	}
	return name
}

// Toast prints a one-line notification.
func (r *Renderer) Toast(level storefront.Level, msg string) {
	style := r.info
	switch level {
	case storefront.LevelSuccess:
		style = r.success
	case storefront.LevelError:
		style = r.failure
	}
	fmt.Fprintln(r.out, style.Render(strings.ToUpper(level.String())+": "+msg))
}

// Stores prints the store directory.
func (r *Renderer) Stores(stores []models.Store) {
	var b strings.Builder
	b.WriteString(r.header.Render("Stores"))
	b.WriteString("\n")
	for _, s := range stores {
		fmt.Fprintf(&b, "  %s  %s\n", s.ID, s.Name)
	}
	_, _ = io.WriteString(r.out, b.String())
}

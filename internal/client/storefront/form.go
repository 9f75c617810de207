package storefront

import (
	"strconv"
	"strings"

	"github.com/atinyakov/GophStore/internal/client/api"
	"github.com/atinyakov/GophStore/internal/models"
)

// FormInput is the product form as typed by the user.
type FormInput struct {
	Name             string
	Defect           string
	RCT              string
	OriginalPrice    string
	PromotionalPrice string
	FinalPrice       string
	Image            *api.ImageFile
}

// FormFromProduct fills a form with the current values of p.
func FormFromProduct(p models.Product) FormInput {
	in := FormInput{
		Name:          p.Name,
		Defect:        p.Defect,
		RCT:           p.RCT,
		OriginalPrice: strconv.FormatFloat(p.OriginalPrice, 'f', -1, 64),
		FinalPrice:    strconv.FormatFloat(p.FinalPrice, 'f', -1, 64),
	}
	if p.PromotionalPrice != nil {
		in.PromotionalPrice = strconv.FormatFloat(*p.PromotionalPrice, 'f', -1, 64)
	}
	return in
}

func parsePrice(field, raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(raw), ",", ".", 1), 64)
	if err != nil || !models.Finite(f) {
		return 0, models.NewValidationError(field, "must be a number")
	}
	return f, nil
}

// ValidateForm checks the form before it is sent and converts it. A new
// product must carry an image; an edited one keeps its image when none is
// given. The first failing field is reported.
func ValidateForm(in FormInput, isNew bool) (api.ProductForm, error) {
	required := []struct {
		field, label, value string
	}{
		{"name", "product name", in.Name},
		{"defect", "defect description", in.Defect},
		{"rct", "RCT", in.RCT},
		{"originalPrice", "original price", in.OriginalPrice},
		{"finalPrice", "final price", in.FinalPrice},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return api.ProductForm{}, models.NewValidationError(r.field, r.label+" is required")
		}
	}
	if isNew && (in.Image == nil || len(in.Image.Data) == 0) {
		return api.ProductForm{}, models.NewValidationError("image", "an image is required for a new product")
	}

	form := api.ProductForm{
		Name:   strings.TrimSpace(in.Name),
		Defect: strings.TrimSpace(in.Defect),
		RCT:    strings.TrimSpace(in.RCT),
		Image:  in.Image,
	}
	var err error
	if form.OriginalPrice, err = parsePrice("originalPrice", in.OriginalPrice); err != nil {
		return api.ProductForm{}, err
	}
	if form.FinalPrice, err = parsePrice("finalPrice", in.FinalPrice); err != nil {
		return api.ProductForm{}, err
	}
	if strings.TrimSpace(in.PromotionalPrice) != "" {
		promo, err := parsePrice("promotionalPrice", in.PromotionalPrice)
		if err != nil {
			return api.ProductForm{}, err
		}
		form.PromotionalPrice = &promo
	}

	if form.FinalPrice <= 0 {
		return api.ProductForm{}, models.NewValidationError("finalPrice", "final price must be greater than zero")
	}
	if form.OriginalPrice <= 0 {
		return api.ProductForm{}, models.NewValidationError("originalPrice", "original price must be greater than zero")
	}
	if form.PromotionalPrice != nil && *form.PromotionalPrice >= form.OriginalPrice {
		return api.ProductForm{}, models.NewValidationError("promotionalPrice", "promotional price must be lower than the original price")
	}
	return form, nil
}

package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/atinyakov/GophStore/internal/models"
)

const (
	// MaxImageSize is the largest accepted product image.
	MaxImageSize = 5 << 20
	// formOverhead leaves room for the text fields of a product form.
	formOverhead = 1 << 20
	formMemory   = 8 << 20
)

// parseProductForm reads a multipart or urlencoded product form.
func parseProductForm(w http.ResponseWriter, r *http.Request) (models.ProductPatch, *models.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+formOverhead)

	err := r.ParseMultipartForm(formMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return models.ProductPatch{}, nil, models.NewValidationError("image", "image must be at most 5MB")
		}
		return models.ProductPatch{}, nil, models.NewValidationError("", "invalid form body")
	}

	patch, err := productPatch(r)
	if err != nil {
		return models.ProductPatch{}, nil, err
	}
	img, err := formImage(r)
	if err != nil {
		return models.ProductPatch{}, nil, err
	}
	return patch, img, nil
}

func formText(r *http.Request, key string) *string {
	v, ok := r.PostForm[key]
	if !ok || len(v) == 0 {
		return nil
	}
	s := strings.TrimSpace(v[0])
	if s == "" {
		return nil
	}
	return &s
}

func formPrice(r *http.Request, key string) (*float64, error) {
	s := formText(r, key)
	if s == nil {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(*s, ",", ".", 1), 64)
	if err != nil || !models.Finite(f) {
		return nil, models.NewValidationError(key, "must be a number")
	}
	return &f, nil
}

func productPatch(r *http.Request) (models.ProductPatch, error) {
	p := models.ProductPatch{
		Name:    formText(r, "name"),
		Defect:  formText(r, "defect"),
		RCT:     formText(r, "rct"),
		StoreID: formText(r, "storeId"),
	}

	var err error
	if p.OriginalPrice, err = formPrice(r, "originalPrice"); err != nil {
		return p, err
	}
	if p.FinalPrice, err = formPrice(r, "finalPrice"); err != nil {
		return p, err
	}
	if _, ok := r.PostForm["promotionalPrice"]; ok {
		p.PromotionalPriceSet = true
		if p.PromotionalPrice, err = formPrice(r, "promotionalPrice"); err != nil {
			return p, err
		}
	}
	return p, nil
}

// formImage returns the uploaded image, or nil when none was sent.
func formImage(r *http.Request) (*models.Image, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	if fh.Size > MaxImageSize {
		return nil, models.NewValidationError("image", "image must be at most 5MB")
	}

	data, err := readPart(fh)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	if !strings.HasPrefix(ct, "image/") {
		return nil, models.NewValidationError("image", "only image files are accepted")
	}
	return &models.Image{ContentType: strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]), Data: data}, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, models.NewValidationError("image", "image must be at most 5MB")
	}
	return data, nil
}

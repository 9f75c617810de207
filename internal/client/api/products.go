package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/atinyakov/GophStore/internal/models"
)

// ImageFile is a picture attached to a product form.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ProductForm is the multipart body of a product create or update.
type ProductForm struct {
	Name          string
	Defect        string
	RCT           string
	OriginalPrice float64
	// PromotionalPrice is sent empty when nil, which clears it on update.
	PromotionalPrice *float64
	FinalPrice       float64
	StoreID          string
	Image            *ImageFile
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (f ProductForm) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	promo := ""
	if f.PromotionalPrice != nil {
		promo = formatPrice(*f.PromotionalPrice)
	}
	fields := [][2]string{
		{"name", f.Name},
		{"defect", f.Defect},
		{"rct", f.RCT},
		{"originalPrice", formatPrice(f.OriginalPrice)},
		{"promotionalPrice", promo},
		{"finalPrice", formatPrice(f.FinalPrice)},
		{"storeId", f.StoreID},
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}

	if f.Image != nil {
		name := f.Image.Name
		if name == "" {
			name = "image"
		}
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="image"; filename="`+escapeQuotes(name)+`"`)
		ct := f.Image.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		hdr.Set("Content-Type", ct)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b = append(b, '\\')
		}
		b = append(b, s[i])
	}
	return string(b)
}

// Products lists every store's products.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.getJSON(ctx, &products, "api", "defective-products"); err != nil {
		return nil, err
	}
	return products, nil
}

// ProductsByStore lists the products of one store.
func (c *Client) ProductsByStore(ctx context.Context, storeID string) ([]models.Product, error) {
	var products []models.Product
	if err := c.getJSON(ctx, &products, "api", "defective-products", "store", storeID); err != nil {
		return nil, err
	}
	return products, nil
}

type productResponse struct {
	Product *models.Product `json:"product"`
}

func (c *Client) sendForm(ctx context.Context, method, token string, f ProductForm, segments ...string) (*models.Product, error) {
	body, contentType, err := f.encode()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(segments...), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var out productResponse
	if err := c.do(req, token, &out); err != nil {
		return nil, err
	}
	return out.Product, nil
}

// CreateProduct lists a new product for the store the token belongs to.
func (c *Client) CreateProduct(ctx context.Context, token string, f ProductForm) (*models.Product, error) {
	return c.sendForm(ctx, http.MethodPost, token, f, "api", "defective-products")
}

// UpdateProduct replaces the fields of product id. The image is kept when
// f.Image is nil.
func (c *Client) UpdateProduct(ctx context.Context, token, id string, f ProductForm) (*models.Product, error) {
	return c.sendForm(ctx, http.MethodPut, token, f, "api", "defective-products", id)
}

// DeleteProduct removes product id.
func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("api", "defective-products", id), nil)
	if err != nil {
		return err
	}
	return c.do(req, token, nil)
}

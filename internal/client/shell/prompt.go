package shell

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/GophStore/internal/client/api"
	"github.com/atinyakov/GophStore/internal/client/storefront"
)

// Prompter reads answers line by line.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter reads from in and prints labels to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// ReadLine prints label and returns the next trimmed line. io.EOF is
// returned once the input is exhausted.
func (p *Prompter) ReadLine(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p *Prompter) field(label, current string) (string, error) {
	if current != "" {
		label = fmt.Sprintf("%s [%s]", label, current)
	}
	v, err := p.ReadLine(label + ": ")
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

// ReadProduct asks for every product field. An empty answer keeps the value
// from current. A promotional price of "-" clears it. The image is read from
// a file path; leaving it empty attaches no image.
func (p *Prompter) ReadProduct(current storefront.FormInput) (storefront.FormInput, error) {
	in := current
	var err error
	if in.Name, err = p.field("Name", current.Name); err != nil {
		return in, err
	}
	if in.Defect, err = p.field("Defect", current.Defect); err != nil {
		return in, err
	}
	if in.RCT, err = p.field("RCT", current.RCT); err != nil {
		return in, err
	}
	if in.OriginalPrice, err = p.field("Original price", current.OriginalPrice); err != nil {
		return in, err
	}
	if in.PromotionalPrice, err = p.field("Promotional price (- to clear)", current.PromotionalPrice); err != nil {
		return in, err
	}
	if in.PromotionalPrice == "-" {
		in.PromotionalPrice = ""
	}
	if in.FinalPrice, err = p.field("Final price", current.FinalPrice); err != nil {
		return in, err
	}

	path, err := p.ReadLine("Image file path (leave empty for none): ")
	if err != nil {
		return in, err
	}
	if path != "" {
		img, err := LoadImage(path)
		if err != nil {
			return in, err
		}
		in.Image = img
	}
	return in, nil
}

// LoadImage reads an image file for upload.
func LoadImage(path string) (*api.ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	return &api.ImageFile{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

package notify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is one notification title/body pair. The body may carry
// {{title}} and {{price}} placeholders.
type Template struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Templates maps change tiers to their notification templates. The
// drop template is the higher-salience one.
type Templates struct {
	PriceDrop     Template `yaml:"price_drop"`
	PriceIncrease Template `yaml:"price_increase"`
}

// DefaultTemplates are used when no template file is configured.
func DefaultTemplates() Templates {
	return Templates{
		PriceDrop: Template{
			Title: "Price drop!",
			Body:  "{{title}} just dropped to {{price}}",
		},
		PriceIncrease: Template{
			Title: "Price increase",
			Body:  "{{title}} went up to {{price}}",
		},
	}
}

// LoadTemplates reads a template pack from a YAML file. Missing
// entries fall back to the defaults.
func LoadTemplates(path string) (Templates, error) {
	tpl := DefaultTemplates()

	data, err := os.ReadFile(path)
	if err != nil {
		return tpl, fmt.Errorf("failed to read template file: %w", err)
	}

	var loaded Templates
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return tpl, fmt.Errorf("failed to parse template yaml: %w", err)
	}

	if loaded.PriceDrop.Title != "" {
		tpl.PriceDrop = loaded.PriceDrop
	}
	if loaded.PriceIncrease.Title != "" {
		tpl.PriceIncrease = loaded.PriceIncrease
	}
	return tpl, nil
}

// Render fills the template placeholders.
func (t Template) Render(itemTitle, price string) (string, string) {
	body := strings.ReplaceAll(t.Body, "{{title}}", itemTitle)
	body = strings.ReplaceAll(body, "{{price}}", price)
	return t.Title, body
}

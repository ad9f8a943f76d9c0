package notify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTemplates(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "templates.yaml")

	yamlContent := `---
price_drop:
  title: "Deal alert"
  body: "{{title}} fell to {{price}}"
`

	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	tpl, err := LoadTemplates(yamlPath)
	if err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}

	if tpl.PriceDrop.Title != "Deal alert" {
		t.Errorf("PriceDrop.Title = %q", tpl.PriceDrop.Title)
	}
	// Missing entries keep the defaults.
	if tpl.PriceIncrease.Title != DefaultTemplates().PriceIncrease.Title {
		t.Errorf("PriceIncrease.Title = %q, want default", tpl.PriceIncrease.Title)
	}
}

func TestLoadTemplatesFileNotFound(t *testing.T) {
	tpl, err := LoadTemplates("/nonexistent/templates.yaml")
	if err == nil {
		t.Error("LoadTemplates() with non-existent file should return error")
	}
	// Defaults still usable on error.
	if tpl.PriceDrop.Title == "" {
		t.Error("LoadTemplates() should return defaults alongside the error")
	}
}

func TestTemplateRender(t *testing.T) {
	tpl := Template{Title: "Price drop!", Body: "{{title}} is now {{price}}"}

	title, body := tpl.Render("Wireless Mouse", "89.99")
	if title != "Price drop!" {
		t.Errorf("title = %q", title)
	}
	if body != "Wireless Mouse is now 89.99" {
		t.Errorf("body = %q", body)
	}
}

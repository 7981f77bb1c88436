package docs

import (
	"strings"
	"testing"
)

const buttonPage = `---
title: Button
description: A button triggers an event when clicked.
components:
  - rx.button
---

Buttons are clickable elements.

## Basic Usage

Use on_click to handle clicks.

## Styling

Buttons accept a color_scheme prop.
`

func TestParsePage(t *testing.T) {
	page, components, err := ParsePage("library/forms/button.md", []byte(buttonPage))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if page.Slug != "library/forms/button" {
		t.Errorf("Expected slug library/forms/button, got %s", page.Slug)
	}
	if page.Title != "Button" {
		t.Errorf("Expected title Button, got %s", page.Title)
	}
	if page.URL != "https://reflex.dev/docs/library/forms/button" {
		t.Errorf("Unexpected URL: %s", page.URL)
	}

	if len(page.Sections) != 3 {
		t.Fatalf("Expected 3 sections, got %d", len(page.Sections))
	}
	if page.Sections[0].Heading != "Button" {
		t.Errorf("Expected preamble section titled Button, got %s", page.Sections[0].Heading)
	}
	if page.Sections[1].Heading != "Basic Usage" || page.Sections[1].Level != 2 {
		t.Errorf("Unexpected second section: %+v", page.Sections[1])
	}
	if !strings.Contains(page.Sections[1].Content, "on_click") {
		t.Errorf("Section content missing body text: %q", page.Sections[1].Content)
	}
	for i, section := range page.Sections {
		if section.Position != i {
			t.Errorf("Section %d has position %d", i, section.Position)
		}
		if section.Slug != page.Slug {
			t.Errorf("Section %d references slug %s", i, section.Slug)
		}
	}

	if len(components) != 1 {
		t.Fatalf("Expected 1 component, got %d", len(components))
	}
	if components[0].Name != "rx.button" {
		t.Errorf("Expected rx.button, got %s", components[0].Name)
	}
	if components[0].Category != "forms" {
		t.Errorf("Expected category forms, got %s", components[0].Category)
	}
	if components[0].DocSlug != page.Slug {
		t.Errorf("Component references slug %s", components[0].DocSlug)
	}
	if components[0].Description != "A button triggers an event when clicked." {
		t.Errorf("Unexpected description: %s", components[0].Description)
	}
}

func TestParsePage_NoFrontmatter(t *testing.T) {
	content := "# Getting Started\n\nInstall reflex with pip.\n"
	page, components, err := ParsePage("getting-started/installation.md", []byte(content))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if page.Title != "Getting Started" {
		t.Errorf("Expected title from first heading, got %s", page.Title)
	}
	if len(components) != 0 {
		t.Errorf("Expected no components, got %d", len(components))
	}
	if len(page.Sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(page.Sections))
	}
	if page.Sections[0].Content != "Install reflex with pip." {
		t.Errorf("Unexpected section content: %q", page.Sections[0].Content)
	}
}

func TestParsePage_EmptyContent(t *testing.T) {
	_, _, err := ParsePage("library/empty.md", []byte("   \n"))
	if err == nil {
		t.Fatal("Expected error for empty page")
	}
	if ErrorCode(err) != EPARSE {
		t.Errorf("Expected EPARSE, got %s", ErrorCode(err))
	}
}

func TestParsePage_InvalidFrontmatter(t *testing.T) {
	content := "---\ntitle: [unclosed\n---\n\nBody\n"
	_, _, err := ParsePage("broken.md", []byte(content))
	if err == nil {
		t.Fatal("Expected error for invalid frontmatter")
	}
	if ErrorCode(err) != EPARSE {
		t.Errorf("Expected EPARSE, got %s", ErrorCode(err))
	}
}

func TestParsePage_HeadingsInCodeFence(t *testing.T) {
	content := "# Page\n\nIntro\n\n```python\n# not a heading\nprint(1)\n```\n\n## Real Section\n\nText\n"
	page, _, err := ParsePage("guide.md", []byte(content))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(page.Sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(page.Sections))
	}
	if !strings.Contains(page.Sections[0].Content, "print(1)") {
		t.Errorf("Code fence content lost: %q", page.Sections[0].Content)
	}
}

func TestSlugFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"library/forms/button.md", "library/forms/button"},
		{"library/layout/index.md", "library/layout"},
		{"Getting-Started/Introduction.md", "getting-started/introduction"},
		{"state\\overview.md", "state/overview"},
	}
	for _, tt := range tests {
		if got := SlugFromPath(tt.path); got != tt.want {
			t.Errorf("SlugFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNormalizeComponentName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"button", "rx.button"},
		{"rx.button", "rx.button"},
		{"  RX.Button ", "rx.button"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeComponentName(tt.name); got != tt.want {
			t.Errorf("NormalizeComponentName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCategoryFromSlug(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"library/forms/button", "forms"},
		{"library/layout/box", "layout"},
		{"getting-started/introduction", "getting-started"},
	}
	for _, tt := range tests {
		if got := CategoryFromSlug(tt.slug); got != tt.want {
			t.Errorf("CategoryFromSlug(%q) = %q, want %q", tt.slug, got, tt.want)
		}
	}
}

func TestSnippet(t *testing.T) {
	short := "short content"
	if got := Snippet(short); got != short {
		t.Errorf("Short content should be unchanged, got %q", got)
	}

	long := strings.Repeat("x", 300)
	got := Snippet(long)
	if len([]rune(got)) != 203 {
		t.Errorf("Expected 200 runes plus ellipsis, got %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected ellipsis suffix, got %q", got)
	}
}

package docs

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
var markdownLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)

// frontmatter is the optional YAML block at the top of a docs page.
// Reflex docs pages carry the component names they document here.
type frontmatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Components  []string `yaml:"components"`
}

// ParsePage parses one markdown source file into a Page plus the
// Components it documents. relPath is the path of the file relative to
// the docs root, e.g. "library/forms/button.md".
func ParsePage(relPath string, content []byte) (*Page, []Component, error) {
	slug := SlugFromPath(relPath)
	if slug == "" {
		return nil, nil, Errorf(EPARSE, "cannot derive slug from path %q", relPath)
	}

	meta, body, err := splitFrontmatter(string(content))
	if err != nil {
		return nil, nil, Errorf(EPARSE, "invalid frontmatter in %s: %v", relPath, err)
	}
	if strings.TrimSpace(body) == "" {
		return nil, nil, Errorf(EPARSE, "page %s has no content", relPath)
	}

	title := meta.Title
	if title == "" {
		title = firstHeading(body)
	}
	if title == "" {
		title = titleFromSlug(slug)
	}

	page := &Page{
		Slug:     slug,
		Title:    title,
		Markdown: body,
		URL:      PageURL(slug),
		Sections: splitSections(slug, title, body),
	}

	components := extractComponents(page, meta)
	return page, components, nil
}

// splitFrontmatter separates an optional leading YAML block (delimited
// by --- lines) from the markdown body.
func splitFrontmatter(content string) (frontmatter, string, error) {
	var meta frontmatter

	if !strings.HasPrefix(content, "---\n") && content != "---" {
		return meta, content, nil
	}

	rest := strings.TrimPrefix(content, "---\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		// Unterminated frontmatter, treat the whole file as body
		return meta, content, nil
	}

	block := rest[:end]
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return frontmatter{}, "", err
	}
	return meta, body, nil
}

// splitSections decomposes the body into heading-delimited sections.
// Text before the first heading becomes a leading section titled after
// the page. Headings inside fenced code blocks are ignored.
func splitSections(slug, title, body string) []Section {
	var sections []Section
	var current strings.Builder

	heading := title
	level := 1
	position := 0
	inFence := false

	flush := func() {
		content := strings.TrimSpace(current.String())
		current.Reset()
		if content == "" && position > 0 {
			return
		}
		sections = append(sections, Section{
			Slug:     slug,
			Heading:  heading,
			Level:    level,
			Content:  content,
			Position: position,
		})
		position++
	}

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			current.WriteString(line)
			current.WriteString("\n")
			continue
		}

		if m := headingRegex.FindStringSubmatch(trimmed); m != nil && !inFence {
			if position > 0 || strings.TrimSpace(current.String()) != "" {
				flush()
			} else {
				// Empty preamble, drop it
				current.Reset()
			}
			heading = StripMarkdownLinks(strings.TrimSpace(m[2]))
			level = len(m[1])
			continue
		}

		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()

	// A page with a single empty preamble still gets one section so the
	// page itself stays searchable by title.
	if len(sections) == 0 {
		sections = append(sections, Section{
			Slug:    slug,
			Heading: title,
			Level:   1,
			Content: strings.TrimSpace(body),
		})
	}
	return sections
}

// extractComponents builds catalog entries for every component named in
// the page frontmatter. Pages without a components list contribute none.
func extractComponents(page *Page, meta frontmatter) []Component {
	if len(meta.Components) == 0 {
		return nil
	}

	description := meta.Description
	if description == "" {
		description = Snippet(firstParagraph(page.Markdown))
	}
	category := CategoryFromSlug(page.Slug)

	components := make([]Component, 0, len(meta.Components))
	for _, name := range meta.Components {
		name = NormalizeComponentName(name)
		if name == "" {
			continue
		}
		components = append(components, Component{
			Name:        name,
			Category:    category,
			Description: description,
			DocSlug:     page.Slug,
			URL:         page.URL,
		})
	}
	return components
}

// SlugFromPath derives a page slug from a docs-relative file path.
// "library/forms/button.md" -> "library/forms/button"
func SlugFromPath(relPath string) string {
	slug := strings.TrimSuffix(strings.ReplaceAll(relPath, "\\", "/"), ".md")
	slug = strings.Trim(slug, "/")
	slug = strings.ToLower(slug)
	// Directory index files document the directory itself
	slug = strings.TrimSuffix(slug, "/index")
	return slug
}

// CategoryFromSlug derives the component category from page placement:
// "library/forms/button" -> "forms", anything else -> first path element.
func CategoryFromSlug(slug string) string {
	parts := strings.Split(slug, "/")
	if len(parts) >= 3 && parts[0] == "library" {
		return parts[1]
	}
	return parts[0]
}

// NormalizeComponentName canonicalizes a component name to its
// rx.-prefixed form. "button" and "rx.button" both map to "rx.button".
func NormalizeComponentName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "rx." {
		return ""
	}
	if strings.HasPrefix(name, "rx.") {
		return name
	}
	return "rx." + name
}

// StripMarkdownLinks removes markdown link syntax, keeping the text.
// "[Text](url)" -> "Text"
func StripMarkdownLinks(text string) string {
	return markdownLinkRegex.ReplaceAllString(text, "$1")
}

func firstHeading(body string) string {
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := headingRegex.FindStringSubmatch(trimmed); m != nil {
			return StripMarkdownLinks(strings.TrimSpace(m[2]))
		}
	}
	return ""
}

func firstParagraph(body string) string {
	inFence := false
	var para []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || headingRegex.MatchString(trimmed) {
			continue
		}
		if trimmed == "" {
			if len(para) > 0 {
				break
			}
			continue
		}
		para = append(para, trimmed)
	}
	return StripMarkdownLinks(strings.Join(para, " "))
}

func titleFromSlug(slug string) string {
	parts := strings.Split(slug, "/")
	last := parts[len(parts)-1]
	words := strings.FieldsFunc(last, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

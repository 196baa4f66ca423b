package preview

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// pageMeta holds the raw head values of a page.
type pageMeta struct {
	titleText string
	props     map[string]string // og:* and twitter:* keyed by property/name
	names     map[string]string // <meta name=...>
}

func (m pageMeta) title() string {
	return firstNonEmpty(m.props["og:title"], m.props["twitter:title"], m.titleText)
}

func (m pageMeta) description() string {
	return firstNonEmpty(m.props["og:description"], m.props["twitter:description"], m.names["description"])
}

func (m pageMeta) image() string {
	return firstNonEmpty(m.props["og:image:secure_url"], m.props["og:image"], m.props["twitter:image"])
}

// extract tokenizes HTML until </head> (or EOF) collecting the title and meta tags.
// The first occurrence of each key wins.
func extract(r io.Reader) (pageMeta, error) {
	meta := pageMeta{
		props: make(map[string]string),
		names: make(map[string]string),
	}

	z := html.NewTokenizer(r)
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return meta, nil
			}
			return meta, z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Title:
				inTitle = meta.titleText == ""
			case atom.Meta:
				collectMeta(&meta, tok.Attr)
			case atom.Body:
				return meta, nil
			}

		case html.TextToken:
			if inTitle {
				meta.titleText = collapse(string(z.Text()))
			}

		case html.EndTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Title:
				inTitle = false
			case atom.Head:
				return meta, nil
			}
		}
	}
}

func collectMeta(meta *pageMeta, attrs []html.Attribute) {
	var property, name, content string
	for _, a := range attrs {
		switch strings.ToLower(a.Key) {
		case "property":
			property = strings.ToLower(strings.TrimSpace(a.Val))
		case "name":
			name = strings.ToLower(strings.TrimSpace(a.Val))
		case "content":
			content = collapse(a.Val)
		}
	}
	if content == "" {
		return
	}

	key := property
	if key == "" && strings.HasPrefix(name, "twitter:") {
		key = name
	}
	if key != "" {
		if _, seen := meta.props[key]; !seen {
			meta.props[key] = content
		}
		return
	}
	if name != "" {
		if _, seen := meta.names[name]; !seen {
			meta.names[name] = content
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

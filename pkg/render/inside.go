package render

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"mercator-hq/placement/pkg/layout"
)

var headingAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
}

var voidAtoms = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Track: true,
	atom.Wbr: true,
}

// anchorOffsets returns the byte offsets just after each top-level element
// of content matching the anchor.
func anchorOffsets(content string, anchor layout.InsideAnchor) []int {
	z := html.NewTokenizer(strings.NewReader(content))

	var (
		offsets []int
		pos     int
		depth   int
		top     atom.Atom
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF or malformed input: keep what was found so far.
			return offsets
		}
		pos += len(z.Raw())

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if voidAtoms[a] {
				if depth == 0 && anchor == layout.AnchorAfterBlocks {
					offsets = append(offsets, pos)
				}
				continue
			}
			if depth == 0 {
				top = a
			}
			depth++

		case html.EndTagToken:
			if depth == 0 {
				continue
			}
			depth--
			if depth > 0 {
				continue
			}
			if anchor == layout.AnchorAfterBlocks || headingAtoms[top] {
				offsets = append(offsets, pos)
			}

		case html.SelfClosingTagToken:
			if depth == 0 && anchor == layout.AnchorAfterBlocks {
				offsets = append(offsets, pos)
			}
		}
	}
}

// InsertInside inserts body after the Nth matching top-level element of
// content. It reports false and returns content unchanged when content has
// fewer matching elements.
func InsertInside(content, body string, in layout.Inside) (string, bool) {
	if in.Count < 1 {
		return content, false
	}
	offsets := anchorOffsets(content, in.Anchor)
	if len(offsets) < in.Count {
		return content, false
	}
	at := offsets[in.Count-1]
	return content[:at] + body + content[at:], true
}

// ApplyInside places every inside fragment into content. Positions are
// computed on the original content; fragments sharing a position keep their
// order. Fragments without a usable position are dropped.
func ApplyInside(content string, fragments []Fragment) string {
	type insertion struct {
		at    int
		order int
		body  string
	}

	var inserts []insertion
	cache := make(map[layout.InsideAnchor][]int)
	for i, f := range fragments {
		if f.Inside == nil || f.Inside.Count < 1 {
			continue
		}
		offsets, ok := cache[f.Inside.Anchor]
		if !ok {
			offsets = anchorOffsets(content, f.Inside.Anchor)
			cache[f.Inside.Anchor] = offsets
		}
		if len(offsets) < f.Inside.Count {
			continue
		}
		inserts = append(inserts, insertion{at: offsets[f.Inside.Count-1], order: i, body: f.Body})
	}
	if len(inserts) == 0 {
		return content
	}

	sort.SliceStable(inserts, func(i, j int) bool {
		return inserts[i].at < inserts[j].at
	})

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, ins := range inserts {
		b.WriteString(content[last:ins.at])
		b.WriteString(ins.body)
		last = ins.at
	}
	b.WriteString(content[last:])
	return b.String()
}

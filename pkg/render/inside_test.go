package render

import (
	"testing"

	"mercator-hq/placement/pkg/layout"
)

func TestInsertInside(t *testing.T) {
	content := `<h2>One</h2><p>a <b>b</b></p><img src="x.png"><h2>Two</h2><div><h3>nested</h3></div>`

	tests := []struct {
		name   string
		inside layout.Inside
		want   string
		wantOK bool
	}{
		{
			name:   "after first heading",
			inside: layout.Inside{Anchor: layout.AnchorAfterHeadings, Count: 1},
			want:   `<h2>One</h2>[X]<p>a <b>b</b></p><img src="x.png"><h2>Two</h2><div><h3>nested</h3></div>`,
			wantOK: true,
		},
		{
			name:   "after second heading skips nested headings",
			inside: layout.Inside{Anchor: layout.AnchorAfterHeadings, Count: 2},
			want:   `<h2>One</h2><p>a <b>b</b></p><img src="x.png"><h2>Two</h2>[X]<div><h3>nested</h3></div>`,
			wantOK: true,
		},
		{
			name:   "not enough headings",
			inside: layout.Inside{Anchor: layout.AnchorAfterHeadings, Count: 3},
			want:   content,
		},
		{
			name:   "after second block",
			inside: layout.Inside{Anchor: layout.AnchorAfterBlocks, Count: 2},
			want:   `<h2>One</h2><p>a <b>b</b></p>[X]<img src="x.png"><h2>Two</h2><div><h3>nested</h3></div>`,
			wantOK: true,
		},
		{
			name:   "void element counts as block",
			inside: layout.Inside{Anchor: layout.AnchorAfterBlocks, Count: 3},
			want:   `<h2>One</h2><p>a <b>b</b></p><img src="x.png">[X]<h2>Two</h2><div><h3>nested</h3></div>`,
			wantOK: true,
		},
		{
			name:   "zero count",
			inside: layout.Inside{Anchor: layout.AnchorAfterBlocks},
			want:   content,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InsertInside(content, "[X]", tt.inside)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("InsertInside() = %q, %v\nwant %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestApplyInside(t *testing.T) {
	content := `<p>1</p><p>2</p><p>3</p>`
	fragments := []Fragment{
		{Body: "[late]", Inside: &layout.Inside{Anchor: layout.AnchorAfterBlocks, Count: 3}},
		{Body: "[a]", Inside: &layout.Inside{Anchor: layout.AnchorAfterBlocks, Count: 1}},
		{Body: "[b]", Inside: &layout.Inside{Anchor: layout.AnchorAfterBlocks, Count: 1}},
		{Body: "[dropped]", Inside: &layout.Inside{Anchor: layout.AnchorAfterHeadings, Count: 1}},
		{Body: "[no config]"},
	}

	want := `<p>1</p>[a][b]<p>2</p><p>3</p>[late]`
	if got := ApplyInside(content, fragments); got != want {
		t.Errorf("ApplyInside() = %q, want %q", got, want)
	}

	if got := ApplyInside(content, nil); got != content {
		t.Errorf("ApplyInside(nil) = %q", got)
	}
}

func TestApplySidebar(t *testing.T) {
	frag := func(body, position string, action layout.SidebarAction) Fragment {
		return Fragment{Body: body, Sidebar: &layout.Sidebar{Position: position, Action: action}}
	}

	tests := []struct {
		name      string
		fragments []Fragment
		want      string
	}{
		{name: "no fragments", want: "[sidebar]"},
		{
			name:      "prepend and append",
			fragments: []Fragment{frag("<a>", "blog", layout.SidebarAppend), frag("<p1>", "blog", layout.SidebarPrepend), frag("<p2>", "blog", layout.SidebarPrepend)},
			want:      "<p1><p2>[sidebar]<a>",
		},
		{
			name:      "first replace wins",
			fragments: []Fragment{frag("<r1>", "blog", layout.SidebarReplace), frag("<r2>", "blog", layout.SidebarReplace), frag("<a>", "blog", layout.SidebarAppend)},
			want:      "<r1><a>",
		},
		{
			name:      "other positions ignored",
			fragments: []Fragment{frag("<shop>", "woocommerce", layout.SidebarReplace), {Body: "<none>"}},
			want:      "[sidebar]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplySidebar("[sidebar]", "blog", tt.fragments); got != tt.want {
				t.Errorf("ApplySidebar() = %q, want %q", got, tt.want)
			}
		})
	}
}

package request

import (
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	data := []byte(`{
		"page": "archive",
		"archive": {"kind": "author", "title": "Jane"},
		"author": {"id": "7", "display_name": "Jane"},
		"visitor": {"id": "3", "roles": ["editor", "subscriber"]},
		"now": "2025-03-01T10:00:00Z",
		"extensions": {"commerce": {"purchased": ["12"]}}
	}`)

	ctx, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if ctx.Page != PageArchive {
		t.Errorf("Page = %q, want %q", ctx.Page, PageArchive)
	}
	if !ctx.LoggedIn() {
		t.Error("LoggedIn() = false, want true")
	}
	if got := ctx.VisitorRoles(); len(got) != 2 || got[0] != "editor" {
		t.Errorf("VisitorRoles() = %v", got)
	}
	want := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	if !ctx.Time().Equal(want) {
		t.Errorf("Time() = %v, want %v", ctx.Time(), want)
	}

	var commerce struct {
		Purchased []string `json:"purchased"`
	}
	if !ctx.Extension("commerce", &commerce) {
		t.Fatal("Extension(commerce) = false")
	}
	if len(commerce.Purchased) != 1 || commerce.Purchased[0] != "12" {
		t.Errorf("commerce.Purchased = %v", commerce.Purchased)
	}
	if ctx.Extension("lms", &commerce) {
		t.Error("Extension(lms) = true for missing payload")
	}
}

func TestVisitorRoles_Anonymous(t *testing.T) {
	tests := []struct {
		name string
		ctx  *Context
	}{
		{name: "nil context", ctx: nil},
		{name: "no visitor", ctx: &Context{}},
		{name: "visitor without id", ctx: &Context{Visitor: &Person{Roles: []string{"admin"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ctx.LoggedIn() {
				t.Error("LoggedIn() = true, want false")
			}
			if roles := tt.ctx.VisitorRoles(); roles != nil {
				t.Errorf("VisitorRoles() = %v, want nil", roles)
			}
		})
	}
}

func TestVisitorRoles_ReturnsCopy(t *testing.T) {
	ctx := &Context{Visitor: &Person{ID: "1", Roles: []string{"editor"}}}
	roles := ctx.VisitorRoles()
	roles[0] = "administrator"
	if ctx.Visitor.Roles[0] != "editor" {
		t.Error("VisitorRoles() exposed the underlying slice")
	}
}

package builder

import (
	"testing"

	"mercator-hq/placement/pkg/layout"
)

func TestDetector_Detect(t *testing.T) {
	tests := []struct {
		name    string
		enabled []Origin
		meta    map[string]string
		want    Origin
	}{
		{name: "no meta", want: Default},
		{name: "individual editor", meta: map[string]string{MetaEditorMode: "1"}, want: Individual},
		{name: "elementor", meta: map[string]string{MetaElementorMode: "builder"}, want: Elementor},
		{name: "elementor draft mode", meta: map[string]string{MetaElementorMode: ""}, want: Default},
		{name: "beaver", meta: map[string]string{MetaBeaverEnabled: "1"}, want: Beaver},
		{name: "beaver disabled flag", meta: map[string]string{MetaBeaverEnabled: "0"}, want: Default},
		{name: "brizy", meta: map[string]string{MetaBrizyEnabled: "true"}, want: Brizy},
		{
			name: "individual wins over builders",
			meta: map[string]string{MetaEditorMode: "1", MetaElementorMode: "builder"},
			want: Individual,
		},
		{
			name: "elementor wins over beaver",
			meta: map[string]string{MetaBeaverEnabled: "1", MetaElementorMode: "builder"},
			want: Elementor,
		},
		{
			name:    "disabled builder is ignored",
			enabled: []Origin{Beaver},
			meta:    map[string]string{MetaElementorMode: "builder", MetaBeaverEnabled: "1"},
			want:    Beaver,
		},
		{
			name:    "individual always available",
			enabled: []Origin{},
			meta:    map[string]string{MetaEditorMode: "1"},
			want:    Individual,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(tt.enabled)
			if got := d.Detect(&layout.Layout{Meta: tt.meta}); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseOrigin(t *testing.T) {
	if o, ok := ParseOrigin(" Elementor "); !ok || o != Elementor {
		t.Errorf("ParseOrigin(Elementor) = %q, %v", o, ok)
	}
	if _, ok := ParseOrigin("divi"); ok {
		t.Error("ParseOrigin(divi) should fail")
	}
}

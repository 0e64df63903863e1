// Package lms contributes course-platform categories to a vocabulary
// registry. It reads the "lms" request extension.
package lms

import (
	"mercator-hq/placement/pkg/request"
	"mercator-hq/placement/pkg/vocabulary"
)

// ExtensionName is the request extension key this contributor reads.
const ExtensionName = "lms"

// Category keys.
const (
	RootMembershipStatus = "membership_status"
	RootCourseEnrollment = "course_enrollment"
)

// State is the lms extension payload.
type State struct {
	Memberships []string `json:"memberships,omitempty"`
	Enrolled    []string `json:"enrolled,omitempty"`
	Course      *Course  `json:"course,omitempty"`
}

// Course is the course currently displayed.
type Course struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Progress string `json:"progress,omitempty"`
}

// Contributor registers the lms vocabulary.
type Contributor struct{}

// New creates an lms contributor.
func New() *Contributor {
	return &Contributor{}
}

// Name implements vocabulary.Contributor.
func (c *Contributor) Name() string {
	return ExtensionName
}

// Contribute implements vocabulary.Contributor.
func (c *Contributor) Contribute(r *vocabulary.Registry) error {
	categories := []vocabulary.Category{
		{
			Key:         RootMembershipStatus,
			Label:       "Membership",
			Group:       "user",
			MultiSelect: true,
			Accessor: func(ctx *request.Context) ([]string, bool) {
				s, ok := stateOf(ctx)
				if !ok {
					return nil, false
				}
				return s.Memberships, true
			},
		},
		{
			Key:         RootCourseEnrollment,
			Label:       "Course Enrollment",
			Group:       "user",
			MultiSelect: true,
			Accessor: func(ctx *request.Context) ([]string, bool) {
				s, ok := stateOf(ctx)
				if !ok {
					return nil, false
				}
				return s.Enrolled, true
			},
		},
	}
	for _, cat := range categories {
		cat.Contributor = ExtensionName
		if err := r.RegisterCategory(cat); err != nil {
			return err
		}
	}

	if err := r.AddOptions(vocabulary.RootPostType,
		vocabulary.Option{Value: "course", Label: "Courses"},
		vocabulary.Option{Value: "lesson", Label: "Lessons"},
	); err != nil {
		return err
	}

	if err := r.RegisterTags(vocabulary.Pair{Root: vocabulary.RootPostType, End: "course"},
		vocabulary.Tag{Name: "course_title", Resolve: course(func(c *Course) string { return c.Title })},
		vocabulary.Tag{Name: "course_progress", Resolve: course(func(c *Course) string { return c.Progress })},
	); err != nil {
		return err
	}

	return r.AddSidebarPosition(vocabulary.Option{Value: "lifter_lms", Label: "Lifter LMS"})
}

func stateOf(ctx *request.Context) (*State, bool) {
	var s State
	if !ctx.Extension(ExtensionName, &s) {
		return nil, false
	}
	return &s, true
}

func course(read func(c *Course) string) vocabulary.TagFunc {
	return func(ctx *request.Context, _ vocabulary.Renderers) (string, bool) {
		s, ok := stateOf(ctx)
		if !ok || s.Course == nil {
			return "", false
		}
		v := read(s.Course)
		return v, v != ""
	}
}

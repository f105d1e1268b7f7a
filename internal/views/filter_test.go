package views_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/opsboard/internal/views"
)

func TestFilter_ChangesResetPage(t *testing.T) {
	type tc struct {
		name   string
		change func(views.Filter) views.Filter
		want   views.Filter
	}

	start := views.NewFilter().WithPage(4)

	cases := []tc{
		{
			name:   "project",
			change: func(f views.Filter) views.Filter { return f.WithProject("shop") },
			want:   views.Filter{Project: "shop", Namespace: views.All, Status: views.All, Page: 1},
		},
		{
			name:   "namespace",
			change: func(f views.Filter) views.Filter { return f.WithNamespace("web") },
			want:   views.Filter{Project: views.All, Namespace: "web", Status: views.All, Page: 1},
		},
		{
			name:   "status",
			change: func(f views.Filter) views.Filter { return f.WithStatus("Degraded") },
			want:   views.Filter{Project: views.All, Namespace: views.All, Status: "Degraded", Page: 1},
		},
		{
			name:   "search",
			change: func(f views.Filter) views.Filter { return f.WithSearch("bill") },
			want:   views.Filter{Project: views.All, Namespace: views.All, Status: views.All, Search: "bill", Page: 1},
		},
		{
			name:   "page only",
			change: func(f views.Filter) views.Filter { return f.WithPage(2) },
			want:   views.Filter{Project: views.All, Namespace: views.All, Status: views.All, Page: 2},
		},
		{
			name:   "same value keeps page",
			change: func(f views.Filter) views.Filter { return f.WithStatus(views.All) },
			want:   views.Filter{Project: views.All, Namespace: views.All, Status: views.All, Page: 4},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, c.change(start))
		})
	}
}

func TestFilter_ProjectResetsNamespace(t *testing.T) {
	f := views.NewFilter().WithProject("shop").WithNamespace("web").WithProject("payments")

	require.Equal(t, "payments", f.Project)
	require.Equal(t, views.All, f.Namespace)
}

func TestTotalPages(t *testing.T) {
	type tc struct {
		count int
		want  int
	}

	cases := []tc{
		{count: 0, want: 0},
		{count: 1, want: 1},
		{count: 10, want: 1},
		{count: 11, want: 2},
		{count: 100, want: 10},
	}

	for _, c := range cases {
		require.Equal(t, c.want, views.TotalPages(c.count))
	}
}

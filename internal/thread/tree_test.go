package thread

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/panelist/internal/api"
)

func comment(id, parent string, kids ...string) api.Comment {
	c := api.Comment{
		ID:               id,
		Content:          "comment " + id,
		User:             api.UserBrief{ID: "u-" + id, Username: "user" + id},
		ChildCommentsIDs: kids,
	}
	if parent != "" {
		p := parent
		c.ParentComment = &p
	}
	return c
}

// leaf is what Build produces for a node whose children are not expanded.
func leaf(c api.Comment) api.Comment {
	c.ChildComments = []api.Comment{}
	return c
}

func with(c api.Comment, children ...api.Comment) api.Comment {
	c.ChildComments = children
	return c
}

func TestBuild_DepthTwoCollapsesGrandchildren(t *testing.T) {
	a := comment("A", "", "B")
	b := comment("B", "A", "C")
	c := comment("C", "B")
	c.ChildCommentsIDs = []string{}

	got := Build([]api.Comment{a, b, c}, 2)

	want := []api.Comment{with(a, leaf(b))}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_DepthThree(t *testing.T) {
	a := comment("A", "", "B")
	b := comment("B", "A", "C")
	c := comment("C", "B")

	got := Build([]api.Comment{a, b, c}, 3)

	want := []api.Comment{with(a, with(b, leaf(c)))}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ZeroDepthReturnsCollapsedRoots(t *testing.T) {
	in := []api.Comment{
		comment("A", "", "B"),
		comment("B", "A"),
		comment("C", ""),
	}
	for _, depth := range []int{-1, 0, 1} {
		got := Build(in, depth)
		require.Len(t, got, 2, "depth %d", depth)
		for _, r := range got {
			assert.NotNil(t, r.ChildComments)
			assert.Empty(t, r.ChildComments)
		}
	}
}

func TestBuild_RootsKeepInputOrder(t *testing.T) {
	in := []api.Comment{
		comment("X", ""),
		comment("child", "Y"),
		comment("Y", "", "child"),
		comment("Z", ""),
	}
	got := Build(in, 3)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"X", "Y", "Z"}, ids)
}

func TestBuild_ChildOrderFollowsIDs(t *testing.T) {
	in := []api.Comment{
		comment("c3", "root"),
		comment("c1", "root"),
		comment("root", "", "c1", "c2", "c3"),
		comment("c2", "root"),
	}
	got := Build(in, 2)
	require.Len(t, got, 1)
	var ids []string
	for _, ch := range got[0].ChildComments {
		ids = append(ids, ch.ID)
	}
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids)
}

func TestBuild_DanglingChildSkipped(t *testing.T) {
	in := []api.Comment{
		comment("A", "", "missing", "B", "also-missing"),
		comment("B", "A"),
	}
	got := Build(in, 4)
	require.Len(t, got, 1)
	require.Len(t, got[0].ChildComments, 1)
	assert.Equal(t, "B", got[0].ChildComments[0].ID)
	// The declared ids are left as they came.
	assert.Equal(t, []string{"missing", "B", "also-missing"}, got[0].ChildCommentsIDs)
}

func TestBuild_RepeatedChildIDMaterializedOnce(t *testing.T) {
	a := comment("A", "", "B", "C", "B")
	b := comment("B", "A")
	c := comment("C", "A")

	got := Build([]api.Comment{a, b, c}, 3)

	want := []api.Comment{with(a, leaf(b), leaf(c))}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, Count(got))
}

func TestBuild_AbsentChildIDs(t *testing.T) {
	got := Build([]api.Comment{comment("A", "")}, 3)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].ChildComments)
	assert.Empty(t, got[0].ChildComments)
}

func TestBuild_Empty(t *testing.T) {
	got := Build(nil, 3)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuild_CycleTerminates(t *testing.T) {
	a := comment("A", "", "B")
	b := comment("B", "A", "A")

	got := Build([]api.Comment{a, b}, 3)

	want := []api.Comment{with(a, with(b, leaf(a)))}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_SelfReference(t *testing.T) {
	a := comment("A", "", "A")
	got := Build([]api.Comment{a}, 4)
	require.Len(t, got, 1)
	assert.Equal(t, 4, Count(got))
	maxLevel := 0
	Walk(got, func(c *api.Comment, level int) {
		if level > maxLevel {
			maxLevel = level
		}
	})
	assert.Equal(t, 3, maxLevel)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	mk := func() []api.Comment {
		return []api.Comment{
			comment("A", "", "B"),
			comment("B", "A", "C"),
			comment("C", "B"),
		}
	}
	in := mk()

	out := Build(in, 3)
	out[0].ChildCommentsIDs[0] = "changed"
	out[0].ChildComments[0].Content = "changed"
	out[0].ChildComments[0].ChildCommentsIDs[0] = "changed"

	if diff := cmp.Diff(mk(), in); diff != "" {
		t.Errorf("input modified (-before +after):\n%s", diff)
	}
	for _, c := range in {
		assert.Nil(t, c.ChildComments)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	in := generateThread(t, 4, 3)
	first := Build(in, 3)
	second := Build(in, 3)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second build differs (-first +second):\n%s", diff)
	}
}

func TestBuild_DepthBound(t *testing.T) {
	in := generateThread(t, 6, 2)
	for depth := 0; depth <= 7; depth++ {
		got := Build(in, depth)
		Walk(got, func(c *api.Comment, level int) {
			if level >= depth-1 {
				assert.Empty(t, c.ChildComments, "depth %d: node %s at level %d expanded", depth, c.ID, level)
			}
			assert.Less(t, level, max(depth, 1))
		})
	}
}

func TestBuild_CompleteAndUnique(t *testing.T) {
	in := generateThread(t, 4, 3)
	orphanParent := uuid.NewString()
	orphan := comment(uuid.NewString(), orphanParent)
	in = append(in, orphan)

	got := Build(in, 10)

	seen := map[string]int{}
	Walk(got, func(c *api.Comment, level int) { seen[c.ID]++ })
	for _, c := range in[:len(in)-1] {
		assert.Equal(t, 1, seen[c.ID], "comment %s", c.ID)
	}
	assert.Zero(t, seen[orphan.ID])
	assert.Equal(t, len(in)-1, Count(got))
}

func TestBuild_LargeFlatList(t *testing.T) {
	const n = 20000
	root := comment("root", "")
	in := make([]api.Comment, 0, n+1)
	for i := 0; i < n; i++ {
		id := uuid.NewString()
		root.ChildCommentsIDs = append(root.ChildCommentsIDs, id)
		in = append(in, comment(id, "root"))
	}
	in = append(in, root)

	got := Build(in, 3)
	require.Len(t, got, 1)
	assert.Len(t, got[0].ChildComments, n)
}

// generateThread builds a well-formed flat list: two roots, each with fanout
// replies per node, levels deep. The list is reversed so replies come before
// their parents.
func generateThread(t *testing.T, levels, fanout int) []api.Comment {
	t.Helper()
	var flat []api.Comment
	var grow func(parent string, level int) string
	grow = func(parent string, level int) string {
		id := uuid.NewString()
		c := comment(id, parent)
		if level < levels {
			for i := 0; i < fanout; i++ {
				c.ChildCommentsIDs = append(c.ChildCommentsIDs, grow(id, level+1))
			}
		}
		flat = append(flat, c)
		return id
	}
	grow("", 1)
	grow("", 1)
	for i, j := 0, len(flat)-1; i < j; i, j = i+1, j-1 {
		flat[i], flat[j] = flat[j], flat[i]
	}
	return flat
}

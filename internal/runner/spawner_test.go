package runner

import (
	"testing"

	"github.com/swarmload/swarm/internal/scenario"
)

func TestBuildAssignments(t *testing.T) {
	heavy := &scenario.UserClass{Name: "heavy"}
	light := &scenario.UserClass{Name: "light"}

	got := buildAssignments([]*scenario.UserClass{heavy, light}, []int{3, 1})
	if len(got) != 4 {
		t.Fatalf("assignments length = %d, want 4", len(got))
	}

	// Classes interleave while both have users left.
	want := []string{"heavy", "light", "heavy", "heavy"}
	for i, class := range got {
		if class.Name != want[i] {
			t.Errorf("assignments[%d] = %s, want %s", i, class.Name, want[i])
		}
	}
}

func TestBuildAssignmentsSingleClass(t *testing.T) {
	only := &scenario.UserClass{Name: "only"}
	got := buildAssignments([]*scenario.UserClass{only}, []int{5})
	if len(got) != 5 {
		t.Fatalf("assignments length = %d, want 5", len(got))
	}
	for i, class := range got {
		if class != only {
			t.Errorf("assignments[%d] is not the single class", i)
		}
	}
}

func TestBuildAssignmentsSkipsZeroCount(t *testing.T) {
	a := &scenario.UserClass{Name: "a"}
	b := &scenario.UserClass{Name: "b"}

	got := buildAssignments([]*scenario.UserClass{a, b}, []int{0, 2})
	if len(got) != 2 {
		t.Fatalf("assignments length = %d, want 2", len(got))
	}
	for i, class := range got {
		if class.Name != "b" {
			t.Errorf("assignments[%d] = %s, want b", i, class.Name)
		}
	}
}

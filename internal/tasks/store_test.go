package tasks

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestStoreAddAssignsMonotonicIDs(t *testing.T) {
	s := NewStore()

	first := s.Add("buy milk", nil)
	second := s.Add("walk dog", strptr("around the block"))
	third := s.Add("buy milk", nil)

	if first.ID != 1 || second.ID != 2 || third.ID != 3 {
		t.Fatalf("expected ids 1,2,3, got %d,%d,%d", first.ID, second.ID, third.ID)
	}
	if first.Completed || second.Completed || third.Completed {
		t.Fatal("new tasks must start active")
	}
	if second.Description == nil || *second.Description != "around the block" {
		t.Fatalf("description not preserved: %#v", second.Description)
	}
	if first.Description != nil {
		t.Fatalf("expected nil description, got %q", *first.Description)
	}
}

func TestStoreQueryPartitionsByCompletion(t *testing.T) {
	s := NewStore()
	s.Add("one", nil)
	s.Add("two", nil)
	if _, err := s.Update("one", Patch{Completed: boolptr(true)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	active := s.Query(false, nil, nil)
	completed := s.Query(true, nil, nil)

	if len(active) != 1 || active[0].Name != "two" {
		t.Fatalf("active = %+v", active)
	}
	if len(completed) != 1 || completed[0].Name != "one" {
		t.Fatalf("completed = %+v", completed)
	}
	if len(active)+len(completed) != s.Len() {
		t.Fatal("partition must cover the whole store")
	}
}

func TestStoreQueryFilters(t *testing.T) {
	s := NewStore()
	s.Add("buy milk", strptr("from the corner shop"))
	s.Add("buy stamps", strptr("post office"))
	s.Add("call mom", nil)

	tests := map[string]struct {
		name, description *string
		want              []string
	}{
		"no filters":            {nil, nil, []string{"buy milk", "buy stamps", "call mom"}},
		"name substring":        {strptr("buy"), nil, []string{"buy milk", "buy stamps"}},
		"description substring": {nil, strptr("office"), []string{"buy stamps"}},
		"conjunctive":           {strptr("buy"), strptr("corner"), []string{"buy milk"}},
		"case sensitive":        {strptr("Buy"), nil, []string{}},
		"empty matches all":     {strptr(""), strptr(""), []string{"buy milk", "buy stamps", "call mom"}},
		"no match":              {strptr("zzz"), nil, []string{}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := s.Query(false, tt.name, tt.description)
			names := make([]string, 0, len(got))
			for _, task := range got {
				names = append(names, task.Name)
			}
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("query result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStoreQueryNilDescriptionNeverMatchesFilter(t *testing.T) {
	s := NewStore()
	s.Add("call mom", nil)

	if got := s.Query(false, nil, strptr("phone")); len(got) != 0 {
		t.Fatalf("expected no match against nil description, got %+v", got)
	}
}

func TestStoreUpdatePatchSemantics(t *testing.T) {
	s := NewStore()
	s.Add("buy milk", strptr("two liters"))

	// Only completed set: description survives.
	got, err := s.Update("buy milk", Patch{Completed: boolptr(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.Completed {
		t.Fatal("completed not applied")
	}
	if got.Description == nil || *got.Description != "two liters" {
		t.Fatalf("description must be untouched, got %#v", got.Description)
	}

	// Only description set: completion survives.
	got, err = s.Update("buy milk", Patch{Description: strptr("oat milk")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.Completed {
		t.Fatal("completed must be untouched")
	}
	if got.Description == nil || *got.Description != "oat milk" {
		t.Fatalf("description not applied: %#v", got.Description)
	}
	if got.ID != 1 {
		t.Fatalf("id must never change, got %d", got.ID)
	}
}

func TestStoreUpdateFirstMatchByID(t *testing.T) {
	s := NewStore()
	s.Add("dupe", nil)
	s.Add("dupe", nil)

	got, err := s.Update("dupe", Patch{Completed: boolptr(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("expected the oldest task (id 1) to win, got id %d", got.ID)
	}

	all := s.Tasks()
	if !all[0].Completed || all[1].Completed {
		t.Fatalf("only the first duplicate may change: %+v", all)
	}
}

func TestStoreUpdateNotFound(t *testing.T) {
	s := NewStore()
	s.Add("real", nil)

	before := s.Tasks()
	_, err := s.Update("ZZZ", Patch{Completed: boolptr(true)})

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if got, want := err.Error(), `Task with "ZZZ" id not found`; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
	if diff := cmp.Diff(before, s.Tasks()); diff != "" {
		t.Errorf("store must be untouched on a miss (-before +after):\n%s", diff)
	}
}

func TestStoreHandsOutCopies(t *testing.T) {
	s := NewStore()
	created := s.Add("buy milk", strptr("two liters"))

	// Mutating the returned record must not reach the store.
	created.Name = "hacked"
	*created.Description = "hacked"

	stored := s.Tasks()[0]
	if stored.Name != "buy milk" || *stored.Description != "two liters" {
		t.Fatalf("store leaked internal state: %+v", stored)
	}

	// Same for query results.
	got := s.Query(false, nil, nil)
	*got[0].Description = "hacked again"
	if *s.Tasks()[0].Description != "two liters" {
		t.Fatal("query result aliases the store")
	}
}

func TestStoreTasksInIDOrder(t *testing.T) {
	s := NewStore()
	s.Add("a", nil)
	s.Add("b", nil)
	s.Add("c", nil)
	if _, err := s.Update("b", Patch{Completed: boolptr(true)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var ids []int
	for _, task := range s.Tasks() {
		ids = append(ids, task.ID)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, ids); diff != "" {
		t.Errorf("ids out of order (-want +got):\n%s", diff)
	}
}

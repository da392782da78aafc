package portal

import (
	"reflect"
	"sort"
	"testing"

	"github.com/diamondStar35/top-speed-sub005/internal/testutil"
)

func buildFixtureManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager()
	portals := []Portal{
		{ID: "p1", SectorID: "s1"},
		{ID: "p2", SectorID: "s1"},
		{ID: "p3", SectorID: "s2"},
		{ID: "p4", SectorID: "s3"},
	}
	for _, p := range portals {
		testutil.AssertNoError(t, m.AddPortal(p))
	}
	links := []Link{
		{ID: "l1", FromPortalID: "p1", ToPortalID: "p3", Direction: OneWay},
		{ID: "l2", FromPortalID: "p2", ToPortalID: "p4", Direction: TwoWay},
	}
	for _, l := range links {
		testutil.AssertNoError(t, m.AddLink(l))
	}
	return m
}

func TestAddLink_UnknownEndpoint(t *testing.T) {
	m := NewManager()
	testutil.AssertNoError(t, m.AddPortal(Portal{ID: "p1", SectorID: "s1"}))
	err := m.AddLink(Link{ID: "l1", FromPortalID: "p1", ToPortalID: "ghost"})
	testutil.AssertError(t, err)
}

func TestGetLinkedPortals_OneWayOnlyFromOrigin(t *testing.T) {
	m := buildFixtureManager(t)

	if got := m.GetLinkedPortals("p1"); !reflect.DeepEqual(got, []string{"p3"}) {
		t.Errorf("p1 linked = %v, want [p3]", got)
	}
	if got := m.GetLinkedPortals("p3"); len(got) != 0 {
		t.Errorf("p3 linked = %v, want none (one-way link terminates here)", got)
	}
}

func TestGetLinkedPortals_TwoWayBothDirections(t *testing.T) {
	m := buildFixtureManager(t)

	if got := m.GetLinkedPortals("p2"); !reflect.DeepEqual(got, []string{"p4"}) {
		t.Errorf("p2 linked = %v, want [p4]", got)
	}
	if got := m.GetLinkedPortals("p4"); !reflect.DeepEqual(got, []string{"p2"}) {
		t.Errorf("p4 linked = %v, want [p2]", got)
	}
}

func TestGetConnectedSectorIDs(t *testing.T) {
	m := buildFixtureManager(t)

	got := m.GetConnectedSectorIDs("s1")
	sort.Strings(got)
	want := []string{"s2", "s3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("connected sectors = %v, want %v", got, want)
	}
}

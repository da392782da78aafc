// Package portal implements the typed-node graph that edges attach
// to: portals (connection points) and links (adjacency between them).
package portal

import (
	"fmt"

	"github.com/diamondStar35/top-speed-sub005/internal/track/shape"
)

// Role classifies how a portal participates in its sector's topology.
type Role int

const (
	Undefined Role = iota
	Entry
	Exit
	EntryExit
)

// Direction classifies whether a link is traversable one way or both.
type Direction int

const (
	OneWay Direction = iota
	TwoWay
)

// Portal is a connection point between edges.
type Portal struct {
	ID       string
	SectorID string
	Position shape.Point
	Width    float64
	// Heading is the entry/exit heading in degrees (0=N, clockwise), or
	// nil if unspecified.
	Heading *float64
	Role    Role
}

// Link is a directed or bidirectional edge between two portals in the
// topology graph (distinct from a track.route GraphEdge).
type Link struct {
	ID           string
	FromPortalID string
	ToPortalID   string
	Direction    Direction
}

// Manager indexes portals by id and sector, and links by portal, to
// answer adjacency queries.
type Manager struct {
	portals        map[string]Portal
	portalsBySect  map[string][]string
	linksByPortal  map[string][]Link
	orderedPortals []string
}

// NewManager returns an empty portal/link manager.
func NewManager() *Manager {
	return &Manager{
		portals:       make(map[string]Portal),
		portalsBySect: make(map[string][]string),
		linksByPortal: make(map[string][]Link),
	}
}

// AddPortal registers p. Re-registering the same id replaces the
// earlier portal in place but keeps its original insertion slot.
func (m *Manager) AddPortal(p Portal) error {
	if p.ID == "" {
		return fmt.Errorf("portal: id must not be empty")
	}
	if _, exists := m.portals[p.ID]; !exists {
		m.orderedPortals = append(m.orderedPortals, p.ID)
		m.portalsBySect[p.SectorID] = append(m.portalsBySect[p.SectorID], p.ID)
	}
	m.portals[p.ID] = p
	return nil
}

// AddLink registers l. Both endpoints must already be registered
// portals.
func (m *Manager) AddLink(l Link) error {
	if _, ok := m.portals[l.FromPortalID]; !ok {
		return fmt.Errorf("portal: link %q: unknown from-portal %q", l.ID, l.FromPortalID)
	}
	if _, ok := m.portals[l.ToPortalID]; !ok {
		return fmt.Errorf("portal: link %q: unknown to-portal %q", l.ID, l.ToPortalID)
	}
	m.linksByPortal[l.FromPortalID] = append(m.linksByPortal[l.FromPortalID], l)
	if l.Direction == TwoWay {
		m.linksByPortal[l.ToPortalID] = append(m.linksByPortal[l.ToPortalID], l)
	}
	return nil
}

// Portal returns the portal registered under id.
func (m *Manager) Portal(id string) (Portal, bool) {
	p, ok := m.portals[id]
	return p, ok
}

// PortalsInSector returns the portal ids belonging to sector, in
// registration order.
func (m *Manager) PortalsInSector(sector string) []string {
	return m.portalsBySect[sector]
}

// GetLinkedPortals returns, for every link incident to portalID, the
// id of the other endpoint: always when the link originates at
// portalID, and additionally when the link is TwoWay and terminates
// at portalID.
func (m *Manager) GetLinkedPortals(portalID string) []string {
	var out []string
	for _, l := range m.linksByPortal[portalID] {
		switch {
		case l.FromPortalID == portalID:
			out = append(out, l.ToPortalID)
		case l.Direction == TwoWay && l.ToPortalID == portalID:
			out = append(out, l.FromPortalID)
		}
	}
	return out
}

// GetConnectedSectorIDs unions the sector ids of every portal linked
// to any portal of sector.
func (m *Manager) GetConnectedSectorIDs(sector string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, pid := range m.portalsBySect[sector] {
		for _, other := range m.GetLinkedPortals(pid) {
			op, ok := m.portals[other]
			if !ok {
				continue
			}
			if op.SectorID == sector || seen[op.SectorID] {
				continue
			}
			seen[op.SectorID] = true
			out = append(out, op.SectorID)
		}
	}
	return out
}

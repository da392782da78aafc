// Package branch derives branch entries/exits from sectors, approach
// guidance hints, and portal metadata.
package branch

import (
	"strconv"
	"strings"

	"github.com/diamondStar35/top-speed-sub005/internal/track/portal"
)

// SectorType classifies a sector's topology.
type SectorType int

const (
	Normal SectorType = iota
	Intersection
	Merge
	Split
)

// Sector is the branch manager's view of a sector: its type and
// free-form metadata (keys case-insensitive).
type Sector struct {
	ID       string
	Type     SectorType
	Metadata map[string]string
}

func metadataValue(meta map[string]string, key string) (string, bool) {
	key = strings.ToLower(key)
	for k, v := range meta {
		if strings.ToLower(k) == key {
			return v, true
		}
	}
	return "", false
}

func hasBranchKey(meta map[string]string) bool {
	for k := range meta {
		if strings.HasPrefix(strings.ToLower(k), "branch") {
			return true
		}
	}
	return false
}

// Approach is a guidance hint attached to a sector, describing
// desired entry/exit headings for voice cues.
type Approach struct {
	SectorID        string
	EntryPortalID   string // optional override
	EntryHeadingDeg *float64
	ExitsRaw        string // optional "portalId[:heading]" delimited list
}

// Exit is one resolved branch exit.
type Exit struct {
	PortalID   string
	HeadingDeg *float64
}

// Branch is a derived node describing possible exits from a sector.
type Branch struct {
	SectorID        string
	EntryPortalID   string
	EntryHeadingDeg *float64
	Exits           []Exit
}

// Manager builds and stores branches keyed by sector id.
type Manager struct {
	portals  *portal.Manager
	branches map[string]*Branch
	order    []string
}

// NewManager returns a branch manager resolving portal inference
// against portals.
func NewManager(portals *portal.Manager) *Manager {
	return &Manager{portals: portals, branches: make(map[string]*Branch)}
}

// Build synthesises branches for every sector that qualifies (has a
// metadata key starting with "branch", or has a branch-bearing type
// with no metadata at all), then merges approach hints into those
// branches, supplementing missing fields and creating a branch for an
// approach's sector if none exists yet.
func (m *Manager) Build(sectors []Sector, approaches []Approach) {
	for _, sec := range sectors {
		triggersByMetadata := hasBranchKey(sec.Metadata)
		triggersByType := (sec.Type == Intersection || sec.Type == Merge || sec.Type == Split) && len(sec.Metadata) == 0
		if !triggersByMetadata && !triggersByType {
			continue
		}
		m.upsert(m.synthesize(sec, nil))
	}
	for _, ap := range approaches {
		ap := ap
		if existing, ok := m.branches[ap.SectorID]; ok {
			m.supplement(existing, ap)
			continue
		}
		m.upsert(m.synthesize(Sector{ID: ap.SectorID}, &ap))
	}
}

func (m *Manager) upsert(b *Branch) {
	if _, exists := m.branches[b.SectorID]; !exists {
		m.order = append(m.order, b.SectorID)
	}
	m.branches[b.SectorID] = b
}

// synthesize resolves a branch's fields in order: explicit metadata
// key, then approach field, then portal-manager inference.
func (m *Manager) synthesize(sec Sector, ap *Approach) *Branch {
	b := &Branch{SectorID: sec.ID}
	b.EntryPortalID = m.resolveEntryPortal(sec, ap)
	b.EntryHeadingDeg = m.resolveEntryHeading(sec, ap, b.EntryPortalID)
	b.Exits = m.resolveExits(sec, ap, b.EntryPortalID)
	return b
}

// supplement fills only the fields existing is still missing, sourced
// from ap.
func (m *Manager) supplement(existing *Branch, ap Approach) {
	if existing.EntryPortalID == "" && ap.EntryPortalID != "" {
		existing.EntryPortalID = ap.EntryPortalID
	}
	if existing.EntryHeadingDeg == nil && ap.EntryHeadingDeg != nil {
		existing.EntryHeadingDeg = ap.EntryHeadingDeg
	}
	if len(existing.Exits) == 0 && ap.ExitsRaw != "" {
		existing.Exits = parseExits(ap.ExitsRaw)
	}
}

func (m *Manager) resolveEntryPortal(sec Sector, ap *Approach) string {
	if v, ok := metadataValue(sec.Metadata, "branch_entry_portal"); ok && v != "" {
		return v
	}
	if ap != nil && ap.EntryPortalID != "" {
		return ap.EntryPortalID
	}
	return m.inferEntryPortal(sec.ID)
}

func (m *Manager) inferEntryPortal(sectorID string) string {
	ids := m.portals.PortalsInSector(sectorID)
	for _, id := range ids {
		p, ok := m.portals.Portal(id)
		if ok && (p.Role == portal.Entry || p.Role == portal.EntryExit) {
			return id
		}
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return ""
}

func (m *Manager) resolveEntryHeading(sec Sector, ap *Approach, entryPortalID string) *float64 {
	if v, ok := metadataValue(sec.Metadata, "branch_entry_heading"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	if ap != nil && ap.EntryHeadingDeg != nil {
		return ap.EntryHeadingDeg
	}
	if p, ok := m.portals.Portal(entryPortalID); ok {
		return p.Heading
	}
	return nil
}

func (m *Manager) resolveExits(sec Sector, ap *Approach, entryPortalID string) []Exit {
	if v, ok := metadataValue(sec.Metadata, "branch_exits"); ok && v != "" {
		return parseExits(v)
	}
	if ap != nil && ap.ExitsRaw != "" {
		return parseExits(ap.ExitsRaw)
	}
	return m.inferExits(sec.ID, entryPortalID)
}

func (m *Manager) inferExits(sectorID, entryPortalID string) []Exit {
	var exits []Exit
	for _, id := range m.portals.PortalsInSector(sectorID) {
		if id == entryPortalID {
			continue
		}
		p, ok := m.portals.Portal(id)
		if !ok {
			continue
		}
		if p.Role == portal.Exit || p.Role == portal.EntryExit {
			exits = append(exits, Exit{PortalID: id, HeadingDeg: p.Heading})
		}
	}
	return exits
}

// parseExitSeparators splits on any of ',', '|', ';', space, or tab.
func parseExitSeparators(r rune) bool {
	switch r {
	case ',', '|', ';', ' ', '\t':
		return true
	default:
		return false
	}
}

func parseExits(raw string) []Exit {
	tokens := strings.FieldsFunc(raw, parseExitSeparators)
	exits := make([]Exit, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		parts := strings.SplitN(tok, ":", 2)
		exit := Exit{PortalID: parts[0]}
		if len(parts) == 2 {
			if h, ok := parseHeadingToken(parts[1]); ok {
				exit.HeadingDeg = &h
			}
		}
		exits = append(exits, exit)
	}
	return exits
}

func parseHeadingToken(tok string) (float64, bool) {
	switch strings.ToUpper(strings.TrimSpace(tok)) {
	case "N":
		return 0, true
	case "E":
		return 90, true
	case "S":
		return 180, true
	case "W":
		return 270, true
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// GetBranchesForSector returns the branch synthesised for sector, if
// any.
func (m *Manager) GetBranchesForSector(sectorID string) (*Branch, bool) {
	b, ok := m.branches[sectorID]
	return b, ok
}

// All returns every branch in synthesis order.
func (m *Manager) All() []*Branch {
	out := make([]*Branch, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.branches[id])
	}
	return out
}

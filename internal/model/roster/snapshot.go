package roster

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultTeam groups delegates whose stored record predates team support.
const DefaultTeam = "General"

// Snapshot captures the full roster of one chat session at a point in time.
// Teams are derived from the delegate rows, never stored separately.
type Snapshot struct {
	ConferenceName string     `json:"conferenceName"`
	Delegates      []Delegate `json:"delegates"`
}

// Clone returns a deep copy so working copies never alias committed state.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{ConferenceName: s.ConferenceName}
	out.Delegates = append([]Delegate(nil), s.Delegates...)
	return out
}

// Sanitize defaults missing per-delegate teams on read.
func (s *Snapshot) Sanitize() {
	if s == nil {
		return
	}
	for i := range s.Delegates {
		if s.Delegates[i].Team == "" {
			s.Delegates[i].Team = DefaultTeam
		}
	}
}

// Teams derives the sorted team list from delegate rows plus any teams
// created during editing that have no delegates yet. Blank names are
// dropped.
func Teams(delegates []Delegate, extra []string) []string {
	seen := make(map[string]struct{})
	var teams []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		teams = append(teams, name)
	}
	for _, d := range delegates {
		add(d.Team)
	}
	for _, name := range extra {
		add(name)
	}
	sort.Strings(teams)
	return teams
}

// NextTeamName suggests a name for a new team: "Team A" when none exist,
// the next letter after the last single-letter "Team X", otherwise a
// numbered fallback.
func NextTeamName(teams []string) string {
	var letters []string
	for _, t := range teams {
		if rest, ok := strings.CutPrefix(t, "Team "); ok {
			letters = append(letters, rest)
		}
	}
	if len(letters) > 0 {
		last := letters[len(letters)-1]
		if len(last) == 1 && last[0] >= 'A' && last[0] < 'Z' {
			return "Team " + string(last[0]+1)
		}
		return "Team " + strconv.Itoa(len(teams)+1)
	}
	if len(teams) > 0 {
		return "Team " + strconv.Itoa(len(teams)+1)
	}
	return "Team A"
}

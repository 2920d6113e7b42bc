// Package developer defines the hired members of the player's team.
// This package is PURE and must NOT import any infrastructure packages.
package developer

// Role identifies a hireable developer archetype from the catalog.
type Role string

// Developer is one hired team member.
type Developer struct {
	ID           string  `json:"id"`
	Role         Role    `json:"role"`
	Name         string  `json:"name"`
	Productivity float64 `json:"productivity"` // money per second
	Speed        float64 `json:"speed"`        // project effort per second
	HiredAt      int64   `json:"hired_at"`     // unix ms
}

// TeamProductivity sums the passive income of a team.
func TeamProductivity(team []Developer) float64 {
	var total float64
	for _, d := range team {
		total += d.Productivity
	}
	return total
}

// TeamSpeed sums how fast a team advances projects.
func TeamSpeed(team []Developer) float64 {
	var total float64
	for _, d := range team {
		total += d.Speed
	}
	return total
}

// CountRole returns how many developers of a role are on the team.
func CountRole(team []Developer, role Role) int {
	n := 0
	for _, d := range team {
		if d.Role == role {
			n++
		}
	}
	return n
}

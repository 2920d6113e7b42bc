// Package catalog holds the static game content: what can be learned, built, hired and unlocked.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/achievement"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Lesson is a study session: costs energy, grants XP.
type Lesson struct {
	ID         string  `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	EnergyCost float64 `yaml:"energy_cost" json:"energy_cost"`
	XP         int64   `yaml:"xp" json:"xp"`
	MinLevel   int     `yaml:"min_level" json:"min_level"`
}

// Challenge is a coding exercise: costs energy, adds stress, pays XP and money.
type Challenge struct {
	ID         string  `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	EnergyCost float64 `yaml:"energy_cost" json:"energy_cost"`
	Stress     float64 `yaml:"stress" json:"stress"`
	XP         int64   `yaml:"xp" json:"xp"`
	Money      float64 `yaml:"money" json:"money"`
	MinLevel   int     `yaml:"min_level" json:"min_level"`
}

// Project is contract work progressed over time by the player and the team.
type Project struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Effort      float64 `yaml:"effort" json:"effort"`
	MinLevel    int     `yaml:"min_level" json:"min_level"`
	RewardMoney float64 `yaml:"reward_money" json:"reward_money"`
	RewardXP    int64   `yaml:"reward_xp" json:"reward_xp"`
}

// Role is a hireable developer archetype.
type Role struct {
	ID           string  `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	Cost         float64 `yaml:"cost" json:"cost"`
	Productivity float64 `yaml:"productivity" json:"productivity"`
	Speed        float64 `yaml:"speed" json:"speed"`
	MinLevel     int     `yaml:"min_level" json:"min_level"`
}

// Skill is trained in levels with a growing price.
type Skill struct {
	ID         string  `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	MaxLevel   int     `yaml:"max_level" json:"max_level"`
	BaseCost   float64 `yaml:"base_cost" json:"base_cost"`
	CostGrowth float64 `yaml:"cost_growth" json:"cost_growth"`
}

// Technology is researched once.
type Technology struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Cost     float64  `yaml:"cost" json:"cost"`
	MinLevel int      `yaml:"min_level" json:"min_level"`
	Requires []string `yaml:"requires" json:"requires,omitempty"`
}

// Catalog is the full content set. Slices keep declaration order.
type Catalog struct {
	Lessons      []Lesson                  `yaml:"lessons" json:"lessons"`
	Challenges   []Challenge               `yaml:"challenges" json:"challenges"`
	Projects     []Project                 `yaml:"projects" json:"projects"`
	Roles        []Role                    `yaml:"roles" json:"roles"`
	Skills       []Skill                   `yaml:"skills" json:"skills"`
	Technologies []Technology              `yaml:"technologies" json:"technologies"`
	Achievements []achievement.Achievement `yaml:"achievements" json:"achievements"`

	lessons      map[string]int
	challenges   map[string]int
	projects     map[string]int
	roles        map[string]int
	skills       map[string]int
	technologies map[string]int
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Load returns the catalog at path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse decodes and validates catalog YAML. Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

func (c *Catalog) index() error {
	var err error
	if c.lessons, err = indexIDs("lesson", len(c.Lessons), func(i int) string { return c.Lessons[i].ID }); err != nil {
		return err
	}
	if c.challenges, err = indexIDs("challenge", len(c.Challenges), func(i int) string { return c.Challenges[i].ID }); err != nil {
		return err
	}
	if c.projects, err = indexIDs("project", len(c.Projects), func(i int) string { return c.Projects[i].ID }); err != nil {
		return err
	}
	if c.roles, err = indexIDs("role", len(c.Roles), func(i int) string { return c.Roles[i].ID }); err != nil {
		return err
	}
	if c.skills, err = indexIDs("skill", len(c.Skills), func(i int) string { return c.Skills[i].ID }); err != nil {
		return err
	}
	if c.technologies, err = indexIDs("technology", len(c.Technologies), func(i int) string { return c.Technologies[i].ID }); err != nil {
		return err
	}
	_, err = indexIDs("achievement", len(c.Achievements), func(i int) string { return c.Achievements[i].ID })
	return err
}

func indexIDs(kind string, n int, id func(int) string) (map[string]int, error) {
	idx := make(map[string]int, n)
	for i := 0; i < n; i++ {
		key := id(i)
		if key == "" {
			return nil, fmt.Errorf("%s[%d]: id is required", kind, i)
		}
		if _, dup := idx[key]; dup {
			return nil, fmt.Errorf("duplicate %s id %q", kind, key)
		}
		idx[key] = i
	}
	return idx, nil
}

func (c *Catalog) validate() error {
	var errs []error
	for _, l := range c.Lessons {
		if l.EnergyCost < 0 || l.XP < 0 {
			errs = append(errs, fmt.Errorf("lesson %q: costs and rewards must not be negative", l.ID))
		}
	}
	for _, ch := range c.Challenges {
		if ch.EnergyCost < 0 || ch.Stress < 0 || ch.XP < 0 || ch.Money < 0 {
			errs = append(errs, fmt.Errorf("challenge %q: costs and rewards must not be negative", ch.ID))
		}
	}
	for _, p := range c.Projects {
		if p.Effort <= 0 {
			errs = append(errs, fmt.Errorf("project %q: effort must be positive", p.ID))
		}
		if p.RewardMoney < 0 || p.RewardXP < 0 {
			errs = append(errs, fmt.Errorf("project %q: rewards must not be negative", p.ID))
		}
	}
	for _, r := range c.Roles {
		if r.Cost < 0 || r.Productivity < 0 || r.Speed < 0 {
			errs = append(errs, fmt.Errorf("role %q: cost and output must not be negative", r.ID))
		}
	}
	for _, s := range c.Skills {
		if s.MaxLevel <= 0 {
			errs = append(errs, fmt.Errorf("skill %q: max_level must be positive", s.ID))
		}
		if s.BaseCost < 0 || s.CostGrowth < 1 {
			errs = append(errs, fmt.Errorf("skill %q: base_cost must not be negative and cost_growth must be at least 1", s.ID))
		}
	}
	for _, t := range c.Technologies {
		if t.Cost < 0 {
			errs = append(errs, fmt.Errorf("technology %q: cost must not be negative", t.ID))
		}
		for _, req := range t.Requires {
			if _, ok := c.technologies[req]; !ok {
				errs = append(errs, fmt.Errorf("technology %q: requires unknown technology %q", t.ID, req))
			}
		}
	}
	for _, a := range c.Achievements {
		if err := a.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		for skill := range a.Requires.Skills {
			if _, ok := c.skills[skill]; !ok {
				errs = append(errs, fmt.Errorf("achievement %q: unknown skill %q", a.ID, skill))
			}
		}
		for _, tech := range a.Requires.Technologies {
			if _, ok := c.technologies[tech]; !ok {
				errs = append(errs, fmt.Errorf("achievement %q: unknown technology %q", a.ID, tech))
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Catalog) Lesson(id string) (Lesson, bool) {
	i, ok := c.lessons[id]
	if !ok {
		return Lesson{}, false
	}
	return c.Lessons[i], true
}

func (c *Catalog) Challenge(id string) (Challenge, bool) {
	i, ok := c.challenges[id]
	if !ok {
		return Challenge{}, false
	}
	return c.Challenges[i], true
}

func (c *Catalog) Project(id string) (Project, bool) {
	i, ok := c.projects[id]
	if !ok {
		return Project{}, false
	}
	return c.Projects[i], true
}

func (c *Catalog) Role(id string) (Role, bool) {
	i, ok := c.roles[id]
	if !ok {
		return Role{}, false
	}
	return c.Roles[i], true
}

func (c *Catalog) Skill(id string) (Skill, bool) {
	i, ok := c.skills[id]
	if !ok {
		return Skill{}, false
	}
	return c.Skills[i], true
}

func (c *Catalog) Technology(id string) (Technology, bool) {
	i, ok := c.technologies[id]
	if !ok {
		return Technology{}, false
	}
	return c.Technologies[i], true
}

package player

import (
	"testing"

	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/developer"
	"github.com/MRamiBalles/DevLearnAcademy/internal/domain/project"
)

func TestNewPlayer(t *testing.T) {
	s := New(50, 100)

	if s.Energy != 100 || s.Stress != 0 {
		t.Errorf("expected full energy and no stress, got %v/%v", s.Energy, s.Stress)
	}
	if s.Level != 1 {
		t.Errorf("expected level 1, got %d", s.Level)
	}
	if err := s.Validate(100, 100); err != nil {
		t.Errorf("fresh state should be valid: %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := New(0, 100)
	s.Unlock("first-click")
	s.Skills["go"] = 2
	s.Technologies["docker"] = true
	s.Developers = append(s.Developers, developer.Developer{ID: "d1"})
	s.ActiveProject = &project.Active{ID: "cli", Effort: 10}

	c := s.Clone()
	c.Unlock("other")
	c.Skills["go"] = 9
	c.Technologies["k8s"] = true
	c.Developers[0].ID = "changed"
	c.ActiveProject.Progress = 5

	if s.HasAchievement("other") || s.Skills["go"] != 2 || s.HasTechnology("k8s") {
		t.Error("clone shares maps with the original")
	}
	if s.Developers[0].ID != "d1" {
		t.Error("clone shares the developer slice")
	}
	if s.ActiveProject.Progress != 0 {
		t.Error("clone shares the active project")
	}
}

func TestClamp(t *testing.T) {
	s := State{Energy: -4, Stress: 140}
	s.Clamp(100, 100)
	if s.Energy != 0 || s.Stress != 100 {
		t.Errorf("clamp gave %v/%v", s.Energy, s.Stress)
	}
}

func TestUnlockIsIdempotent(t *testing.T) {
	var s State
	if !s.Unlock("a") {
		t.Fatal("first unlock should succeed")
	}
	if s.Unlock("a") {
		t.Error("second unlock should report false")
	}
}

func TestSpendAndEarn(t *testing.T) {
	s := New(10, 100)
	if s.Spend(11) {
		t.Error("should not spend more than owned")
	}
	s.Earn(5)
	s.Earn(-3)
	if s.Money != 15 || s.TotalEarned != 5 {
		t.Errorf("got money=%v total=%v", s.Money, s.TotalEarned)
	}
	if !s.Spend(15) || s.Money != 0 {
		t.Error("exact spend should succeed")
	}
}

func TestStat(t *testing.T) {
	s := New(0, 100)
	s.LessonsCompleted = 3
	s.Developers = []developer.Developer{{}, {}}

	if v, ok := s.Stat(StatLessonsCompleted); !ok || v != 3 {
		t.Errorf("lessons stat = %v, %v", v, ok)
	}
	if v, _ := s.Stat(StatDevelopers); v != 2 {
		t.Errorf("developers stat = %v", v)
	}
	if IsKnownStat("charisma") {
		t.Error("unknown stat reported as known")
	}
	for _, st := range KnownStats {
		if !IsKnownStat(st) {
			t.Errorf("%s missing from Stat", st)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	bad := []State{
		{Energy: 101, Level: 1},
		{Stress: -1, Level: 1},
		{XP: -1, Level: 1},
		{Level: 0},
	}
	for i, s := range bad {
		if s.Validate(100, 100) == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

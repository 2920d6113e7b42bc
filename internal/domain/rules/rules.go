// Package rules contains the pure calculation logic for game mechanics.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import "math"

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// DrainEnergy returns the energy left after seconds of work at rate per second.
func DrainEnergy(energy, ratePerSec, seconds, maxEnergy float64) float64 {
	return Clamp(energy-ratePerSec*seconds, 0, maxEnergy)
}

// AccrueStress returns stress after seconds of work at rate per second.
func AccrueStress(stress, ratePerSec, seconds, maxStress float64) float64 {
	return Clamp(stress+ratePerSec*seconds, 0, maxStress)
}

// CrossedBelow reports a downward crossing of threshold between before and after.
func CrossedBelow(before, after, threshold float64) bool {
	return before >= threshold && after < threshold
}

// CrossedAbove reports an upward crossing of threshold between before and after.
func CrossedAbove(before, after, threshold float64) bool {
	return before < threshold && after >= threshold
}

// LevelForXP maps cumulative XP to a level. Level 1 starts at 0 XP.
func LevelForXP(xp, xpPerLevel int64) int {
	if xp <= 0 || xpPerLevel <= 0 {
		return 1
	}
	return 1 + int(xp/xpPerLevel)
}

// SkillUpgradeCost returns the price of raising a skill from level to level+1.
func SkillUpgradeCost(baseCost, growth float64, level int) float64 {
	if growth <= 0 {
		growth = 1
	}
	return math.Round(baseCost*math.Pow(growth, float64(level))*100) / 100
}

// HireCost scales a role's base price by how many of that role are already hired.
func HireCost(baseCost float64, alreadyHired int) float64 {
	return math.Round(baseCost*math.Pow(1.15, float64(alreadyHired))*100) / 100
}

// StressPenalty scales output down as stress rises. Full output below half stress,
// dropping linearly to half output at maximum stress.
func StressPenalty(stress, maxStress float64) float64 {
	if maxStress <= 0 || stress <= maxStress/2 {
		return 1
	}
	over := (stress - maxStress/2) / (maxStress / 2)
	return 1 - 0.5*Clamp(over, 0, 1)
}

// ClickValue scales the base click reward by 25% per trained skill level.
func ClickValue(base float64, totalSkillLevels int) float64 {
	return base * (1 + 0.25*float64(totalSkillLevels))
}

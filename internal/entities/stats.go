package entities

import "math"

// MaxLevel is the level cap; milestone announcements stop here too.
const MaxLevel = 100

// FallbackDamage is dealt when a creature has no damaging move to use.
// It is flat and ignores type effectiveness.
const FallbackDamage = 25.0

// FallbackBaseHP stands in for a species base HP stat when the catalog
// lookup fails during battle setup.
const FallbackBaseHP = 10

// RequiredExperience returns the experience needed to advance past the
// given level: round(0.02*L^2 + 0.2*L + 1). Non-decreasing in L.
func RequiredExperience(level int) int {
	l := float64(level)
	return int(math.Round(0.02*l*l + 0.2*l + 1))
}

// MaxHitPoints derives battle hit points from a species base HP stat and
// a creature's level: round(baseHP*2*level/100 + level + 10).
func MaxHitPoints(baseHP, level int) int {
	return int(math.Round(float64(baseHP*2)*float64(level)/100 + float64(level) + 10))
}

// MilestoneLevel reports whether a freshly reached level is announced
// (multiples of 10 up to the cap).
func MilestoneLevel(level int) bool {
	return level > 0 && level <= MaxLevel && level%10 == 0
}

// DamageMultiplier resolves type effectiveness for an attacking move type
// against a defender's type list. The strongest applicable relation wins;
// 1.0 when no relation matches.
func DamageMultiplier(relations *TypeRelations, defenderTypes []string) float64 {
	if relations == nil {
		return 1.0
	}

	applies := func(names []string) bool {
		for _, name := range names {
			for _, dt := range defenderTypes {
				if name == dt {
					return true
				}
			}
		}
		return false
	}

	multiplier := 1.0
	matched := false
	for _, rel := range []struct {
		names []string
		value float64
	}{
		{relations.DoubleDamageTo, 2.0},
		{relations.HalfDamageTo, 0.5},
		{relations.NoDamageTo, 0.0},
	} {
		if !applies(rel.names) {
			continue
		}
		if !matched || rel.value > multiplier {
			multiplier = rel.value
		}
		matched = true
	}
	return multiplier
}

// Damage computes the damage of one action. A powerless turn deals the
// flat fallback; otherwise power scales by the type multiplier.
func Damage(power int, multiplier float64) float64 {
	if power == 0 {
		return FallbackDamage
	}
	return float64(power) * multiplier
}

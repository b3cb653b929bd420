package progression

import (
	"errors"
	"math"

	"github.com/habitquest/server/model"
)

// ErrNegativeGain is returned when a negative experience gain is applied.
var ErrNegativeGain = errors.New("progression: negative experience gain")

// Curve defines a level growth curve: the experience required to leave
// level L is int(GrowthBase * L^GrowthExponent), truncated toward zero.
type Curve struct {
	GrowthBase         float64
	GrowthExponent     float64
	StatPointsPerLevel int
}

// Default curves. Guilds level slower and have no stat vector.
var (
	CharacterCurve = Curve{GrowthBase: 100, GrowthExponent: 1.2, StatPointsPerLevel: 2}
	GuildCurve     = Curve{GrowthBase: 200, GrowthExponent: 1.5}
)

// Required returns the experience needed to advance past the given level.
// The int conversion truncates, which determines the exact thresholds;
// rounding here would change observable leveling behavior.
func (c Curve) Required(level int) int {
	return int(c.GrowthBase * math.Pow(float64(level), c.GrowthExponent))
}

// Result describes the outcome of applying an experience gain.
type Result struct {
	Level            int
	ExperiencePoints int
	LevelsGained     int
	StatPoints       int
}

// Apply adds gained experience and resolves any level-ups. Experience
// carried into each new level is the remainder after subtracting the
// previous level's requirement, so ExperiencePoints < Required(Level)
// always holds on return. A zero gain is a valid no-op; negative gains
// are rejected.
func Apply(level, exp, gained int, curve Curve) (Result, error) {
	if gained < 0 {
		return Result{}, ErrNegativeGain
	}
	exp += gained
	levelsGained := 0
	required := curve.Required(level)
	for exp >= required {
		exp -= required
		level++
		levelsGained++
		required = curve.Required(level)
	}
	return Result{
		Level:            level,
		ExperiencePoints: exp,
		LevelsGained:     levelsGained,
		StatPoints:       levelsGained * curve.StatPointsPerLevel,
	}, nil
}

// ApplyToCharacter applies an experience gain to a character, including
// round-robin distribution of level-up stat points over the fixed stat
// order. Each level-up distributes its own batch starting again from the
// first stat, so a multi-level gain stacks points on the head of the
// vector rather than spreading across it.
func ApplyToCharacter(c *model.Character, gained int, curve Curve) (Result, error) {
	res, err := Apply(c.Level, c.ExperiencePoints, gained, curve)
	if err != nil {
		return Result{}, err
	}
	c.Level = res.Level
	c.ExperiencePoints = res.ExperiencePoints
	for i := 0; i < res.LevelsGained; i++ {
		DistributeStatPoints(c, curve.StatPointsPerLevel)
	}
	return res, nil
}

// ApplyToGuild applies an experience gain to a guild. Guilds have no
// stat vector, so any StatPoints in the curve are ignored.
func ApplyToGuild(g *model.Guild, gained int, curve Curve) (Result, error) {
	res, err := Apply(g.Level, g.ExperiencePoints, gained, curve)
	if err != nil {
		return Result{}, err
	}
	g.Level = res.Level
	g.ExperiencePoints = res.ExperiencePoints
	return res, nil
}

// DistributeStatPoints spreads points one at a time across the stat
// vector in its fixed order, starting from the first stat and wrapping
// around.
func DistributeStatPoints(c *model.Character, points int) {
	for i := 0; i < points; i++ {
		c.AddStat(model.StatTypes[i%len(model.StatTypes)], 1)
	}
}

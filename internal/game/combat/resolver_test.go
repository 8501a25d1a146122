package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/combat"
	"github.com/fennwald/emberquest/internal/game/dice"
	"github.com/fennwald/emberquest/internal/game/skill"
)

// scriptSource replays queued Intn and Float64 values in call order.
type scriptSource struct {
	ints   []int
	floats []float64
	i, f   int
}

func (s *scriptSource) Intn(n int) int {
	v := s.ints[s.i%len(s.ints)]
	s.i++
	return v % n
}

func (s *scriptSource) Float64() float64 {
	v := s.floats[s.f%len(s.floats)]
	s.f++
	return v
}

func fireball(t *testing.T) *skill.Skill {
	t.Helper()
	sk, err := skill.New(1, skill.TypeMagical, "Fireball")
	require.NoError(t, err)
	sk.BasePower = 15
	return sk
}

func actorStats() character.BaseStats {
	return character.BaseStats{Attack: 10, MagicAttack: 12, Accuracy: 85}
}

func targetStats() character.BaseStats {
	return character.BaseStats{Defense: 5, Evasion: 10}
}

// Forced hit, variance 1.0, no crit: damage = round((15+12-5)*1.0) = 22.
func TestResolve_MagicalSkillDeterministic(t *testing.T) {
	// ints: hit roll Intn→0 (roll 1, hits), crit roll Intn→99 (roll 100, no crit).
	// floats: variance 0.5 → 1.0 multiplier.
	src := &scriptSource{ints: []int{0, 99}, floats: []float64{0.5}}
	r := combat.NewResolver(src)

	got := r.Resolve("Aldric", actorStats(), "Slime", targetStats(), fireball(t))
	assert.True(t, got.Hit)
	assert.False(t, got.Critical)
	assert.Equal(t, 22, got.Damage)
	assert.Contains(t, got.Message, "Fireball")
	assert.Contains(t, got.Message, "22")
}

func TestResolve_PhysicalUsesAttack(t *testing.T) {
	src := &scriptSource{ints: []int{0, 99}, floats: []float64{0.5}}
	r := combat.NewResolver(src)

	bash, err := skill.New(1, skill.TypePhysical, "Bash")
	require.NoError(t, err)
	bash.BasePower = 15

	got := r.Resolve("Aldric", actorStats(), "Slime", targetStats(), bash)
	// attack 10, not magic_attack 12: round((15+10-5)*1.0) = 20.
	assert.Equal(t, 20, got.Damage)
}

func TestResolve_NilSkillIsPlainAttack(t *testing.T) {
	src := &scriptSource{ints: []int{0, 99}, floats: []float64{0.5}}
	r := combat.NewResolver(src)

	got := r.Resolve("Slime", character.BaseStats{Attack: 8, Accuracy: 70}, "Aldric", character.BaseStats{Defense: 3}, nil)
	assert.True(t, got.Hit)
	// round((0+8-3)*1.0) = 5.
	assert.Equal(t, 5, got.Damage)
	assert.Contains(t, got.Message, "attack")
}

func TestResolve_Miss(t *testing.T) {
	// hitChance = 85 - 10 = 75; Intn→75 gives roll 76 > 75 → miss.
	src := &scriptSource{ints: []int{75}, floats: []float64{0.5}}
	r := combat.NewResolver(src)

	got := r.Resolve("Aldric", actorStats(), "Slime", targetStats(), nil)
	assert.False(t, got.Hit)
	assert.Equal(t, 0, got.Damage)
	assert.False(t, got.Critical)
	assert.Contains(t, got.Message, "misses")
}

func TestResolve_HitChanceFloor(t *testing.T) {
	// Accuracy 0 vs evasion 90 would be -90; clamps to 10. Roll 10 still hits.
	src := &scriptSource{ints: []int{9, 99}, floats: []float64{0.5}}
	r := combat.NewResolver(src)

	got := r.Resolve("Aldric", character.BaseStats{Attack: 5}, "Wraith", character.BaseStats{Evasion: 90}, nil)
	assert.True(t, got.Hit, "10%% floor keeps the attack possible")
}

func TestResolve_Critical(t *testing.T) {
	// hit roll 1, crit roll Intn→9 gives 10 <= 10 → crit.
	src := &scriptSource{ints: []int{0, 9}, floats: []float64{0.5}}
	r := combat.NewResolver(src)

	got := r.Resolve("Aldric", actorStats(), "Slime", targetStats(), fireball(t))
	assert.True(t, got.Critical)
	// round(22 * 1.5) = 33.
	assert.Equal(t, 33, got.Damage)
	assert.Contains(t, got.Message, "critically")
}

func TestResolve_DamageFloorOne(t *testing.T) {
	// Defense towers over attack; variance at minimum.
	src := &scriptSource{ints: []int{0, 99}, floats: []float64{0.0}}
	r := combat.NewResolver(src)

	got := r.Resolve("Aldric", character.BaseStats{Attack: 1, Accuracy: 100}, "Golem", character.BaseStats{Defense: 500}, nil)
	assert.True(t, got.Hit)
	assert.Equal(t, 1, got.Damage)
}

func TestResolve_SupportAlwaysHitsNoDamage(t *testing.T) {
	heal, err := skill.New(1, skill.TypeSupport, "Heal")
	require.NoError(t, err)

	// No rolls should be consumed; a panicking source proves it.
	r := combat.NewResolver(&scriptSource{ints: []int{0}, floats: []float64{0}})
	got := r.Resolve("Aldric", actorStats(), "Aldric", targetStats(), heal)
	assert.True(t, got.Hit)
	assert.Equal(t, 0, got.Damage)
	assert.False(t, got.Critical)
	assert.Contains(t, got.Message, "Heal")
}

// Every hit deals at least 1 damage, misses deal exactly 0, and inputs are
// never mutated.
func TestResolve_Property_HitImpliesDamage(t *testing.T) {
	r := combat.NewResolver(dice.NewCryptoSource())
	rapid.Check(t, func(rt *rapid.T) {
		actor := character.BaseStats{
			Attack:      rapid.IntRange(0, 80).Draw(rt, "atk"),
			MagicAttack: rapid.IntRange(0, 80).Draw(rt, "matk"),
			Accuracy:    rapid.IntRange(0, 120).Draw(rt, "acc"),
		}
		target := character.BaseStats{
			Defense: rapid.IntRange(0, 120).Draw(rt, "def"),
			Evasion: rapid.IntRange(0, 120).Draw(rt, "eva"),
		}
		actorBefore, targetBefore := actor, target

		got := r.Resolve("A", actor, "B", target, nil)
		if got.Hit {
			assert.GreaterOrEqual(rt, got.Damage, 1)
		} else {
			assert.Equal(rt, 0, got.Damage)
			assert.False(rt, got.Critical)
		}
		assert.Equal(rt, actorBefore, actor)
		assert.Equal(rt, targetBefore, target)
	})
}

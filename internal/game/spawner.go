package game

import "github.com/ugaemi/arena-server/internal/geom"

// Rand is the source of random draws. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Spawner drops a random enemy template at one of its spawn points every Rate seconds.
// No templates or no points make every spawn a no-op.
type Spawner struct {
	Templates []EnemyTemplate
	Points    []geom.Vec
	Rate      float64

	elapsed float64
}

// NewSpawner builds a spawner. A non-positive rate falls back to DefaultSpawnRate.
func NewSpawner(templates []EnemyTemplate, points []geom.Vec, rate float64) *Spawner {
	if rate <= 0 {
		rate = DefaultSpawnRate
	}
	return &Spawner{Templates: templates, Points: points, Rate: rate}
}

// Update advances the spawn timer and returns the enemies spawned this tick.
func (s *Spawner) Update(dt float64, rnd Rand) []*Enemy {
	s.elapsed += dt
	var spawned []*Enemy
	for s.elapsed >= s.Rate {
		s.elapsed -= s.Rate
		if e := s.Spawn(-1, rnd); e != nil {
			spawned = append(spawned, e)
		}
	}
	return spawned
}

// PickTemplate draws a template uniformly. It returns false when there are none.
func (s *Spawner) PickTemplate(rnd Rand) (EnemyTemplate, bool) {
	if len(s.Templates) == 0 {
		return EnemyTemplate{}, false
	}
	return s.Templates[rnd.Intn(len(s.Templates))], true
}

// SpawnPoint returns spawn point index, or a uniformly random one when index is -1.
func (s *Spawner) SpawnPoint(index int, rnd Rand) (geom.Vec, bool) {
	if len(s.Points) == 0 {
		return geom.Vec{}, false
	}
	if index == -1 {
		index = rnd.Intn(len(s.Points))
	}
	if index < 0 || index >= len(s.Points) {
		return geom.Vec{}, false
	}
	return s.Points[index], true
}

// Spawn creates one enemy at spawn point index (-1 for random).
func (s *Spawner) Spawn(index int, rnd Rand) *Enemy {
	pos, ok := s.SpawnPoint(index, rnd)
	if !ok {
		return nil
	}
	tpl, ok := s.PickTemplate(rnd)
	if !ok {
		return nil
	}
	return NewEnemy(tpl, pos)
}

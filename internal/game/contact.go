package game

import "github.com/ugaemi/arena-server/internal/geom"

// ContactEventKind identifies what happened during a contact.
type ContactEventKind string

const (
	ContactEnemyHit  ContactEventKind = "enemy_hit"
	ContactPlayerHit ContactEventKind = "player_hit"
)

// ContactEvent is a damage exchange between the player and one enemy.
type ContactEvent struct {
	Kind    ContactEventKind
	EnemyID string
	Damage  int
	Lethal  bool
}

// Touching reports whether the enemy overlaps the player's body or head, and
// whether the head is among the overlaps.
func Touching(p *Player, e *Enemy) (contact, head bool) {
	head = overlaps(p.Head(), p.HeadRadius, e)
	body := overlaps(p.Position, p.Radius, e)
	return head || body, head
}

func overlaps(center geom.Vec, radius float64, e *Enemy) bool {
	return center.Distance(e.Position) <= radius+e.Radius
}

// ProcessContacts resolves contact damage for one tick.
//
// A dashing head that touches an enemy damages it. Any other contact builds up
// the enemy's attack timer and strikes the player each time it reaches
// AttackTime. Losing contact resets the timer. Staggered enemies are left out
// entirely so a single hit cannot be applied twice before the stun starts.
func ProcessContacts(p *Player, enemies []*Enemy, dt float64) []ContactEvent {
	var events []ContactEvent
	for _, e := range enemies {
		if !e.Active || !e.Collidable {
			continue
		}

		contact, head := Touching(p, e)
		if !contact {
			if e.inContact {
				e.inContact = false
				e.attackTimer = 0
			}
			continue
		}
		e.inContact = true

		if e.Staggered() {
			continue
		}

		if head && p.IsMoving() {
			e.ReceiveDamage(p.Damage, p.Position)
			events = append(events, ContactEvent{
				Kind:    ContactEnemyHit,
				EnemyID: e.ID,
				Damage:  p.Damage,
				Lethal:  e.Health == 0,
			})
			continue
		}

		if p.IsDead() {
			continue
		}
		e.attackTimer += dt
		if e.attackTimer >= e.AttackTime {
			p.ReceiveDamage(e.Damage)
			e.attackTimer = 0
			events = append(events, ContactEvent{
				Kind:    ContactPlayerHit,
				EnemyID: e.ID,
				Damage:  e.Damage,
				Lethal:  p.IsDead(),
			})
		}
	}
	return events
}

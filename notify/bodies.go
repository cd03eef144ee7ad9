package notify

import "math/rand"

// Title used when the entry somehow has none
const defaultTitle = "There's a new astronomy photo!"

// Message variants rotated between notifications to avoid notification fatigue
var bodies = []string{
	"The universe has something amazing to show you today...",
	"Your daily dose of cosmic beauty has landed!",
	"Your daily window to the universe is ready to explore...",
	"Discover the universe, one picture at a time.",
	"The cosmos is calling! Check out today's breathtaking view.",
	"New day, new astronomical marvels to discover!",
	"Unravel the mysteries of the cosmos with today's picture!",
	"Houston, we have a stunning new space photo! Come see.",
	"A breathtaking view of space awaits. Click to explore!",
}

// pickBody selects a message variant using the supplied random source
func pickBody(rng *rand.Rand) string {
	return bodies[rng.Intn(len(bodies))]
}

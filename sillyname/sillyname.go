package sillyname

import (
	"fmt"
	"math/rand"
)

// Silly display name generator, adjective.noun plus a two digit number.

var (
	adjectives = []string{
		"atomic",
		"blue",
		"calm",
		"cosmic",
		"dark",
		"elite",
		"fast",
		"ghost",
		"hyper",
		"iron",
		"lucid",
		"magic",
		"ninja",
		"omega",
		"quantum",
		"rapid",
		"rogue",
		"shadow",
		"stealth",
		"turbo",
		"ultra",
		"vortex",
	}

	nouns = []string{
		"buffer",
		"byte",
		"cell",
		"cipher",
		"cursor",
		"glyph",
		"grid",
		"kernel",
		"packet",
		"pad",
		"pixel",
		"raster",
		"scroll",
		"signal",
		"socket",
		"span",
		"stream",
		"tile",
	}
)

// Generate returns a silly name
func Generate() string {
	a := adjectives[rand.Intn(len(adjectives))]
	n := nouns[rand.Intn(len(nouns))]
	return fmt.Sprintf("%s.%s.%02d", a, n, rand.Intn(100))
}

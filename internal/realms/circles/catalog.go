package circles

// Circle is one of the five fixed anonymous spaces.
type Circle struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var catalog = []Circle{
	{
		ID:          "gentle-hope",
		Name:        "Gentle Hope",
		Description: "For hearts that dare to dream again, even when the world feels heavy. Share your quiet hopes and tender wishes.",
	},
	{
		ID:          "quiet-joy",
		Name:        "Quiet Joy",
		Description: "Celebrate the small moments that make your heart flutter. A space for gentle happiness and peaceful contentment.",
	},
	{
		ID:          "soft-healing",
		Name:        "Soft Healing",
		Description: "For souls in gentle recovery. Share your healing journey with others who understand the tender process of mending.",
	},
	{
		ID:          "lunar-reflection",
		Name:        "Lunar Reflection",
		Description: "Under the moon's gentle gaze, explore your deeper thoughts and midnight musings. A space for contemplation.",
	},
	{
		ID:          "brave-becoming",
		Name:        "Brave Becoming",
		Description: "For those courageously stepping into their authentic selves. Share your transformation and growth stories.",
	},
}

// anonymousNames are the identities members speak through. Assigned once
// per user per circle.
var anonymousNames = []string{
	"Gentle Soul", "Quiet Heart", "Tender Spirit", "Soft Light", "Kind Whisper",
	"Peaceful Mind", "Warm Glow", "Serene Voice", "Calm Presence", "Sweet Echo",
	"Loving Energy", "Pure Essence", "Bright Spark", "Gentle Breeze", "Soft Moon",
}

func circleByID(id string) (Circle, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Circle{}, false
}

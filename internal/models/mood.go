package models

// Mood is a self-reported emotional category used as the matchmaking key.
// Each mood gets its own waiting queue; "random" is simply one more category.
type Mood string

const (
	MoodRandom      Mood = "random"
	MoodCalm        Mood = "calm"
	MoodLonely      Mood = "lonely"
	MoodStressed    Mood = "stressed"
	MoodAnxious     Mood = "anxious"
	MoodOverwhelmed Mood = "overwhelmed"
	MoodCurious     Mood = "curious"
)

var allMoods = []Mood{
	MoodRandom,
	MoodCalm,
	MoodLonely,
	MoodStressed,
	MoodAnxious,
	MoodOverwhelmed,
	MoodCurious,
}

// Moods returns the full set of recognized mood categories.
func Moods() []Mood {
	out := make([]Mood, len(allMoods))
	copy(out, allMoods)
	return out
}

// Valid reports whether the mood is a member of the recognized set.
func (m Mood) Valid() bool {
	for _, known := range allMoods {
		if m == known {
			return true
		}
	}
	return false
}

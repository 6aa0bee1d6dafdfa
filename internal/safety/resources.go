package safety

import "nexus/backend/internal/models"

var crisisResources = []models.CrisisResource{
	{
		Name:        "988 Suicide & Crisis Lifeline",
		Contact:     "Call or text 988",
		Description: "24/7 support for people in crisis",
		URL:         "https://988lifeline.org",
	},
	{
		Name:        "Crisis Text Line",
		Contact:     "Text HOME to 741741",
		Description: "Free 24/7 crisis support via text",
		URL:         "https://www.crisistextline.org",
	},
	{
		Name:        "International Association for Suicide Prevention",
		Contact:     "Visit website for global resources",
		Description: "Find help worldwide",
		URL:         "https://www.iasp.info/resources/Crisis_Centres",
	},
}

// Resources returns the crisis support catalog disclosed to senders whose
// messages trip the gate.
func Resources() []models.CrisisResource {
	out := make([]models.CrisisResource, len(crisisResources))
	copy(out, crisisResources)
	return out
}

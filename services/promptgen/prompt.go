// Package promptgen builds the instruction pair sent to the vision model.
// The numeric-to-band mapping lives here and nowhere else so that the
// labels shown to users always match the labels sent to the model.
package promptgen

import "fmt"

// SystemPrompt is the fixed persona instruction. It is independent of the
// upload parameters; descriptions are always produced in Norwegian.
const SystemPrompt = "Du er en kunstnerisk assistent som analyserer bilder og skaper kreative beskrivelser på norsk. Fokuser på å skape en interessant 'reise' fra utsiden og inn i bildet som matcher de angitte kreativitets- og spenningsnivåene."

// jinnificationSuffix closes the narrative with Jenni fixing the image.
const jinnificationSuffix = " Avslutt historien med å legge til Jenni ei fiksert jente som fikser bildet."

// LevelDescription maps a 0-100 value onto one of four ordinal bands.
// Callers validate the range; the mapping itself is total over [0,100].
func LevelDescription(value int) string {
	switch {
	case value <= 25:
		return "lav"
	case value <= 50:
		return "middels"
	case value <= 75:
		return "høy"
	default:
		return "ekstrem"
	}
}

// Compose returns the system and user prompts for the given parameters.
// Pure function of its inputs.
func Compose(creativityValue, excitementValue int, jinnification bool) (systemPrompt, userPrompt string) {
	creativity := LevelDescription(creativityValue)
	excitement := LevelDescription(excitementValue)

	userPrompt = fmt.Sprintf(
		"Fra et kunstnerisk perspektiv, forsøk å beskrive det artistiske snitt som bildet ikke får frem uten ord, kom opp med en liten beskrivelse som er en reise fra utsiden av bildet og inn i bildet. Spenningen skal være %s, kreativiteten skal være %s.",
		excitement, creativity,
	)
	if jinnification {
		userPrompt += jinnificationSuffix
	}

	return SystemPrompt, userPrompt
}

package mapping

import (
	"fmt"
	"sort"
)

// Scales maps a scale name to its semitone offsets from the root.
var Scales = map[string][]int{
	"chromatic":  {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"minor":      {0, 2, 3, 5, 7, 8, 10},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"pentatonic": {0, 3, 5, 7, 10},
	"blues":      {0, 3, 5, 6, 7, 10},
}

func ScaleNames() []string {
	names := make([]string, 0, len(Scales))
	for name := range Scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snap moves note down to the nearest degree of the named scale rooted at
// root. Unknown or empty scale names leave the note untouched.
func Snap(note, root int, scale string) int {
	degrees, ok := Scales[scale]
	if !ok || len(degrees) == 0 {
		return note
	}
	rel := ((note-root)%12 + 12) % 12
	best := 0
	for _, d := range degrees {
		if d <= rel && d > best {
			best = d
		}
	}
	return note - (rel - best)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName renders a MIDI note number as pitch class and octave, e.g. 60 -> C4.
func NoteName(note int) string {
	if note < 0 || note > 127 {
		return fmt.Sprintf("?%d", note)
	}
	return fmt.Sprintf("%s%d", noteNames[note%12], note/12-1)
}

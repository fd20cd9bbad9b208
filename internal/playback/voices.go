package playback

// FallbackVoice is used when no preferred voice is in the registry.
const FallbackVoice = "triangle"

// DefaultVoices is the fixed preference order for synth voices.
var DefaultVoices = []string{"sawtooth", "square", "triangle", "sine"}

// ResolveVoice returns the first preferred voice present in available.
// An empty registry accepts the first preference as is; an empty preference
// list uses DefaultVoices.
func ResolveVoice(available, preferred []string) string {
	if len(preferred) == 0 {
		preferred = DefaultVoices
	}
	if len(available) == 0 {
		return preferred[0]
	}

	have := make(map[string]struct{}, len(available))
	for _, v := range available {
		have[v] = struct{}{}
	}
	for _, v := range preferred {
		if _, ok := have[v]; ok {
			return v
		}
	}
	return FallbackVoice
}

func cloneVoices(v []string) []string {
	out := make([]string, len(v))
	copy(out, v)
	return out
}

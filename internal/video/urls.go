package video

import "regexp"

// idPatterns lists, per source, the URL shapes a video id can be read from.
// The first capture group is the id.
var idPatterns = map[Source][]*regexp.Regexp{
	SourceYouTube: {
		regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`),
		regexp.MustCompile(`(?:embed/|v/|youtu\.be/)([0-9A-Za-z_-]{11})`),
	},
	SourceRuTube: {
		regexp.MustCompile(`rutube\.ru/video/([a-zA-Z0-9]+)/`),
		regexp.MustCompile(`rutube\.ru/play/embed/([a-zA-Z0-9]+)`),
	},
	SourceVK: {
		regexp.MustCompile(`vk\.com/video(-?\d+_\d+)`),
		regexp.MustCompile(`vk\.com/video\?z=video(-?\d+_\d+)`),
	},
}

// ExtractID returns the platform video id contained in a pasted URL.
func ExtractID(rawURL string, src Source) (string, bool) {
	for _, re := range idPatterns[src] {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

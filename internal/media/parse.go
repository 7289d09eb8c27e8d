package media

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Filename classification & canonical naming.
//
// Season folders and episode files are matched with searches (not full
// matches), so release-group noise around the marker is tolerated. Episode
// markers are tried in priority order and the first hit wins.
var (
	// seasonRe matches season tokens like "Season 5", "season_05", "S05", "s5".
	seasonRe = regexp.MustCompile(`(?i)(?:season[\s_]?|s)(\d{1,2})`)

	// seasonEpisodeRe matches the combined S03E07 marker and captures the episode.
	seasonEpisodeRe = regexp.MustCompile(`[sS]\d{2}[eE](\d{2})`)

	// crossRe matches the 3x07 marker; the second group is the episode.
	crossRe = regexp.MustCompile(`(\d{1,2})[xX](\d{2})`)

	// bareEpisodeRe matches a lone E07 marker.
	bareEpisodeRe = regexp.MustCompile(`[eE](\d{2})`)

	// episodePatterns lists the episode markers in priority order alongside the
	// capture group holding the episode number.
	episodePatterns = []struct {
		re    *regexp.Regexp
		group int
	}{
		{seasonEpisodeRe, 1},
		{crossRe, 2},
		{bareEpisodeRe, 1},
	}
)

// Season is a season number in the range 0-99.
type Season int

// String renders the season zero-padded to two digits.
func (s Season) String() string {
	return fmt.Sprintf("%02d", int(s))
}

// Episode is an episode number in the range 0-99.
type Episode int

// String renders the episode zero-padded to two digits.
func (e Episode) String() string {
	return fmt.Sprintf("%02d", int(e))
}

// ClassifySeason extracts a season number from a directory name. The first
// season token in the string wins.
func ClassifySeason(name string) (Season, bool) {
	n, ok := intFromGroup(seasonRe, name, 1)
	if !ok {
		return 0, false
	}
	return Season(n), true
}

// ClassifyEpisode extracts an episode number from a file name, trying
// S03E07, then 3x07, then a bare E07.
func ClassifyEpisode(name string) (Episode, bool) {
	for _, p := range episodePatterns {
		if n, ok := intFromGroup(p.re, name, p.group); ok {
			return Episode(n), true
		}
	}
	return 0, false
}

// Extension returns the final dot suffix of name, including the dot. Dotfiles
// without a further suffix and names ending in a bare dot have no extension.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "." || ext == name {
		return ""
	}
	return ext
}

// SeasonDirName builds the canonical season folder name, e.g. "Show S05".
func SeasonDirName(series string, season Season) string {
	return series + " S" + season.String()
}

// EpisodeFileName builds the canonical episode file name, e.g. "Show S05E07.mkv".
func EpisodeFileName(series string, season Season, episode Episode, ext string) string {
	return SeasonDirName(series, season) + "E" + episode.String() + ext
}

// IsHidden reports whether name is a dotfile or an AppleDouble companion.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func intFromGroup(re *regexp.Regexp, input string, group int) (int, bool) {
	m := re.FindStringSubmatch(input)
	if len(m) <= group || m[group] == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m[group])
	if err != nil {
		return 0, false
	}
	return n, true
}

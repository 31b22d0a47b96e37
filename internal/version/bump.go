package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conn-castle/release-train/internal/messages"
)

// Level identifies a semantic bump applied to an initial version.
type Level string

// Bump levels, ordered from largest to smallest change.
const (
	LevelMajor   Level = "major"
	LevelMinor   Level = "minor"
	LevelPatch   Level = "patch"
	LevelRelease Level = "release"
	LevelRC      Level = "rc"
	LevelBeta    Level = "beta"
	LevelAlpha   Level = "alpha"
)

// ParseLevel validates a bump level name.
func ParseLevel(text string) (Level, error) {
	switch Level(text) {
	case LevelMajor, LevelMinor, LevelPatch, LevelRelease, LevelRC, LevelBeta, LevelAlpha:
		return Level(text), nil
	default:
		return "", fmt.Errorf(messages.VersionUnknownLevelFmt, text)
	}
}

// Target describes the requested outcome of a bump: either an explicit
// version or a semantic increment of the initial version. A zero Target
// means "keep the current version" (metadata may still change).
type Target struct {
	Explicit *Version
	Level    Level
}

// Bump applies the target to initial and combines the result with the
// resolved build metadata. An empty metadata argument clears any metadata
// carried by the initial version.
func (t Target) Bump(initial Version, metadata string) (Version, error) {
	next, err := t.next(initial)
	if err != nil {
		return Version{}, err
	}
	return next.WithMetadata(metadata)
}

func (t Target) next(initial Version) (Version, error) {
	if t.Explicit != nil {
		return *t.Explicit, nil
	}
	switch t.Level {
	case LevelMajor:
		return New(initial.Full.IncMajor()), nil
	case LevelMinor:
		return New(initial.Full.IncMinor()), nil
	case LevelPatch:
		return New(initial.Full.IncPatch()), nil
	case LevelRelease:
		if !initial.IsPrerelease() {
			return Version{}, fmt.Errorf(messages.VersionNotPrereleaseFmt, initial.FullText)
		}
		full, err := initial.Full.SetPrerelease("")
		if err != nil {
			return Version{}, fmt.Errorf(messages.VersionInvalidFmt, initial.FullText, err)
		}
		return New(full), nil
	case LevelRC, LevelBeta, LevelAlpha:
		return nextPrerelease(initial, string(t.Level))
	case "":
		return initial, nil
	default:
		return Version{}, fmt.Errorf(messages.VersionUnknownLevelFmt, string(t.Level))
	}
}

// prereleaseRank orders the named pre-release tracks so a bump can refuse to
// move backwards (e.g. beta back to alpha).
var prereleaseRank = map[string]int{"alpha": 0, "beta": 1, "rc": 2}

// nextPrerelease advances the named pre-release track: an existing
// `<label>.N` becomes `<label>.N+1`, a lower track upgrades to `<label>.1`,
// and a release version bumps its patch before starting `<label>.1`.
func nextPrerelease(initial Version, label string) (Version, error) {
	current := initial.Full.Prerelease()
	if current == "" {
		full, err := initial.Full.IncPatch().SetPrerelease(label + ".1")
		if err != nil {
			return Version{}, fmt.Errorf(messages.VersionInvalidFmt, initial.FullText, err)
		}
		return New(full), nil
	}

	currentLabel, counter := splitPrerelease(current)
	currentRank, known := prereleaseRank[currentLabel]
	if known && currentRank > prereleaseRank[label] {
		return Version{}, fmt.Errorf(messages.VersionPrereleaseDowngradeFmt, label, initial.FullText)
	}
	next := label + ".1"
	if currentLabel == label {
		next = label + "." + strconv.Itoa(counter+1)
	}
	full, err := initial.Full.SetPrerelease(next)
	if err != nil {
		return Version{}, fmt.Errorf(messages.VersionInvalidFmt, initial.FullText, err)
	}
	return New(full), nil
}

// splitPrerelease separates a pre-release identifier into its label and
// trailing numeric counter. A missing or non-numeric tail counts as zero.
func splitPrerelease(pre string) (string, int) {
	parts := strings.Split(pre, ".")
	if len(parts) == 1 {
		return parts[0], 0
	}
	counter, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return strings.Join(parts, "."), 0
	}
	return strings.Join(parts[:len(parts)-1], "."), counter
}

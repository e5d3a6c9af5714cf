package trace

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Level controls how deep tracing goes.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing is streamed; a ring is only dumped on failure
	LevelPhase        // driver and pass spans
	LevelDetail       // plus one span per explored call
	LevelDebug        // plus one point per block visit
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// deepest is the finest scope each level lets through.
var deepest = [...]Scope{
	LevelPhase:  ScopePass,
	LevelDetail: ScopeCall,
	LevelDebug:  ScopeBlock,
}

func (l Level) String() string { return nameAt(levelNames[:], int(l)) }

// Allows reports whether events of the given scope pass this level.
func (l Level) Allows(scope Scope) bool {
	if int(l) >= len(deepest) || scope == 0 {
		return false
	}
	return scope <= deepest[l]
}

func ParseLevel(s string) (Level, error) {
	i, err := parseName("level", levelNames[:], s)
	return Level(i), err
}

// Mode selects where events are kept.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // written as they happen
	ModeRing                   // kept in memory, dumped on failure
	ModeBoth
)

var modeNames = [...]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
}

func (m Mode) String() string { return nameAt(modeNames[:], int(m)) }

func (m Mode) streams() bool { return m == ModeStream || m == ModeBoth }

func (m Mode) rings() bool { return m == ModeRing || m == ModeBoth }

func ParseMode(s string) (Mode, error) {
	i, err := parseName("mode", modeNames[:], s)
	return Mode(i), err
}

// Format is the encoding of written events.
type Format uint8

const (
	FormatAuto   Format = iota // chosen from the output path
	FormatText                 // one line per event for people
	FormatNDJSON               // one JSON object per line
)

var formatNames = [...]string{
	FormatAuto:   "auto",
	FormatText:   "text",
	FormatNDJSON: "ndjson",
}

func (f Format) String() string { return nameAt(formatNames[:], int(f)) }

// resolve picks a concrete format for output written to path. Files ending
// in .ndjson or .json get NDJSON, everything else text.
func (f Format) resolve(path string) Format {
	if f != FormatAuto {
		return f
	}
	switch filepath.Ext(path) {
	case ".ndjson", ".json":
		return FormatNDJSON
	}
	return FormatText
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FormatAuto, nil
	case "json":
		return FormatNDJSON, nil
	}
	i, err := parseName("format", formatNames[:], s)
	return Format(i), err
}

func parseName(what string, names []string, s string) (int, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	valid := make([]string, 0, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		if name == want {
			return i, nil
		}
		valid = append(valid, name)
	}
	return 0, fmt.Errorf("invalid trace %s %q (expected %s)", what, s, strings.Join(valid, "|"))
}

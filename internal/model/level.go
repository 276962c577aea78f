package model

// Level is a proficiency level on the CEFR-style ladder used by the
// placement graph. LevelUnassigned means no placement has finalized yet.
type Level string

const (
	LevelUnassigned Level = "unassigned"
	LevelA1         Level = "A1"
	LevelA2         Level = "A2"
	LevelB1         Level = "B1"
	LevelB2         Level = "B2"
	LevelC1         Level = "C1"
	LevelC2         Level = "C2"
	LevelNative     Level = "native"
)

// FloorLevel is the fallback assigned to a student who fails out of the
// bottom of the placement graph.
const FloorLevel = LevelA1

// Levels lists all assignable levels in ascending order of proficiency.
var Levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2, LevelNative}

func (l Level) IsValid() bool {
	if l == LevelUnassigned {
		return true
	}
	for _, lv := range Levels {
		if l == lv {
			return true
		}
	}
	return false
}

// IsAssigned reports whether the level is a concrete placement outcome.
func (l Level) IsAssigned() bool {
	return l != LevelUnassigned && l != ""
}

package models

import (
	"fmt"
	"strings"
)

// ContextType selects the prompt template and topical focus of a generated post.
type ContextType string

const (
	ContextGeneral            ContextType = "general"
	ContextProject            ContextType = "project"
	ContextThought            ContextType = "thought"
	ContextTip                ContextType = "tip"
	ContextQuestion           ContextType = "question"
	ContextScene              ContextType = "sf_scene"
	ContextStudentPerspective ContextType = "student_perspective"
	ContextBuildingMoment     ContextType = "building_moment"
)

var allContextTypes = []ContextType{
	ContextGeneral,
	ContextProject,
	ContextThought,
	ContextTip,
	ContextQuestion,
	ContextScene,
	ContextStudentPerspective,
	ContextBuildingMoment,
}

// AllContextTypes returns every context type in a stable order.
func AllContextTypes() []ContextType {
	out := make([]ContextType, len(allContextTypes))
	copy(out, allContextTypes)
	return out
}

// Valid reports whether c is one of the known context types.
func (c ContextType) Valid() bool {
	for _, known := range allContextTypes {
		if c == known {
			return true
		}
	}
	return false
}

func (c ContextType) String() string {
	return string(c)
}

// ParseContextType accepts a known context type name, case-insensitively.
func ParseContextType(s string) (ContextType, error) {
	ct := ContextType(strings.ToLower(strings.TrimSpace(s)))
	if !ct.Valid() {
		names := make([]string, len(allContextTypes))
		for i, known := range allContextTypes {
			names[i] = string(known)
		}
		return "", fmt.Errorf("unknown context type %q (choose from %s)", s, strings.Join(names, ", "))
	}
	return ct, nil
}

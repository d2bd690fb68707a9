package utils

import "strings"

// BCType represents the boundary condition kinds accepted on a mesh surface
type BCType uint16

const (
	// BCNone indicates no boundary condition (natural, zero flux)
	BCNone BCType = iota
	BCDirichlet // Fixed value
	BCNeumann   // Fixed gradient/flux
	BCRobin     // Mixed/Robin condition
)

func (bc BCType) String() string {
	names := map[BCType]string{
		BCNone:      "None",
		BCDirichlet: "Dirichlet",
		BCNeumann:   "Neumann",
		BCRobin:     "Robin",
	}
	if name, ok := names[bc]; ok {
		return name
	}
	return "Unknown"
}

// BCNameMap maps the names used in input decks to BCType
// Keys are lowercase for case-insensitive matching
var BCNameMap = map[string]BCType{
	"dirichlet": BCDirichlet,
	"essential": BCDirichlet,
	"fixed":     BCDirichlet,
	"neumann":   BCNeumann,
	"flux":      BCNeumann,
	"natural":   BCNeumann,
	"robin":     BCRobin,
	"mixed":     BCRobin,
}

// ParseBCName converts a boundary condition name to BCType, BCNone when unknown
func ParseBCName(name string) BCType {
	key := strings.ToLower(strings.TrimSpace(name))
	if bc, ok := BCNameMap[key]; ok {
		return bc
	}
	return BCNone
}

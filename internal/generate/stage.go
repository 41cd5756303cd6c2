package generate

import "fmt"

// Stage is a step of the generation state machine. A run walks the stages in
// order and ends in StageReady or StageError.
type Stage int

const (
	StageParamsChanged Stage = iota
	StageValidate
	StageLayoutStacks
	StageComputeArrangement
	StageComputeSpacers
	StageBuildTraySolids
	StageBuildBoxSolid
	StageBuildLidSolid
	StageReady
	StageError
)

var stageNames = [...]string{
	StageParamsChanged:      "params-changed",
	StageValidate:           "validate",
	StageLayoutStacks:       "layout-stacks",
	StageComputeArrangement: "compute-arrangement",
	StageComputeSpacers:     "compute-spacers",
	StageBuildTraySolids:    "build-tray-solids",
	StageBuildBoxSolid:      "build-box-solid",
	StageBuildLidSolid:      "build-lid-solid",
	StageReady:              "ready",
	StageError:              "error",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// MarshalText lets stages appear by name in JSON and YAML output.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a stage name written by MarshalText.
func (s *Stage) UnmarshalText(b []byte) error {
	for i, name := range stageNames {
		if name == string(b) {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", b)
}

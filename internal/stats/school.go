package stats

import "fmt"

// School is the damage type of an attack or spell.
type School int

const (
	Physical School = iota
	Air
	Earth
	Fire
	Water
)

var schoolNames = map[School]string{
	Physical: "physical",
	Air:      "air",
	Earth:    "earth",
	Fire:     "fire",
	Water:    "water",
}

func (s School) String() string {
	if n, ok := schoolNames[s]; ok {
		return n
	}
	return fmt.Sprintf("school(%d)", int(s))
}

func (s School) IsMagic() bool {
	return s != Physical
}

func (s *School) UnmarshalText(text []byte) error {
	for k, v := range schoolNames {
		if v == string(text) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown school: %s", text)
}

func (s School) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

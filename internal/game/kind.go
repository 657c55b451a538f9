package game

import "fmt"

// Kind is the closed set of entity variants. Behaviour that differs by kind
// is dispatched with exhaustive switches on it.
type Kind int

const (
	KindUser Kind = iota
	KindObject
	KindNPC
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindObject:
		return "object"
	case KindNPC:
		return "npc"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k *Kind) UnmarshalText(text []byte) error {
	for _, c := range []Kind{KindUser, KindObject, KindNPC} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown entity kind: %s", text)
}

func unknownKind(k Kind) string {
	return fmt.Sprintf("unhandled entity kind %s", k)
}

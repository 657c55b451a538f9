package storage

import (
	"fmt"
	"testing"

	"github.com/pixil98/go-testutil"
)

// crate stands in for a game definition record.
type crate struct {
	Capacity int `json:"capacity"`
}

func (c *crate) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive")
	}
	return nil
}

func TestAsset_Validate(t *testing.T) {
	good := &crate{Capacity: 4}

	tests := map[string]struct {
		asset   Asset[*crate]
		expErrs []string
	}{
		"valid": {
			asset: Asset[*crate]{Version: 1, Identifier: "iron_crate", Spec: good},
		},
		"hyphens and digits": {
			asset: Asset[*crate]{Version: 2, Identifier: "crate-2", Spec: good},
		},
		"no version": {
			asset:   Asset[*crate]{Identifier: "crate", Spec: good},
			expErrs: []string{"version must be set"},
		},
		"no id": {
			asset:   Asset[*crate]{Version: 1, Spec: good},
			expErrs: []string{"id must be set"},
		},
		"id with a space": {
			asset:   Asset[*crate]{Version: 1, Identifier: "big crate", Spec: good},
			expErrs: []string{"id must be alphanumeric"},
		},
		"id with a path": {
			asset:   Asset[*crate]{Version: 1, Identifier: "../crate", Spec: good},
			expErrs: []string{"id must be alphanumeric"},
		},
		"bad spec": {
			asset:   Asset[*crate]{Version: 1, Identifier: "crate", Spec: &crate{}},
			expErrs: []string{"capacity must be positive"},
		},
		"nil spec": {
			asset:   Asset[*crate]{Version: 1, Identifier: "crate"},
			expErrs: []string{"spec must be set"},
		},
		"everything wrong": {
			asset:   Asset[*crate]{Spec: &crate{}},
			expErrs: []string{"version must be set", "id must be set", "capacity must be positive"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.asset.Validate()
			if len(tt.expErrs) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			for _, exp := range tt.expErrs {
				testutil.AssertErrorContains(t, err, exp)
			}
		})
	}
}

func TestAsset_Id(t *testing.T) {
	a := &Asset[*crate]{Identifier: "crate"}
	testutil.AssertEqual(t, "id", a.Id(), "crate")
}

package custody

import "fmt"

// Version identifies a running logic module. It is exposed read-only and
// passed to the upgrade callback of the code replacing it.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// String renders the common "v1.2.3" form.
func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Equals checks if two versions are the same.
func (v Version) Equals(o Version) bool {
	return v == o
}

package hue

import "github.com/google/uuid"

// ResourceLink is a typed reference to another resource: the pair lets a
// consumer route to the right typed getter without an extra lookup.
type ResourceLink struct {
	RID   uuid.UUID `json:"rid" yaml:"rid"`
	RType RType     `json:"rtype" yaml:"rtype"`
}

func (l ResourceLink) String() string {
	return l.RType.String() + "/" + l.RID.String()
}

// MarshalYAML lets ResourceLink.RType round-trip through the state file the
// same way it round-trips through JSON.
func (t RType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *RType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}

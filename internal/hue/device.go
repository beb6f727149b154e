package hue

import "github.com/google/uuid"

// Device is the non-owned parent of a Light/Button/etc service set; its
// Services field is a BTreeSet in the original, modeled here as a
// deduplicated, sorted-on-insert slice via AddService.
type Device struct {
	ID          uuid.UUID        `json:"-"`
	ProductData DeviceProductData `json:"product_data"`
	Metadata    Metadata         `json:"metadata"`
	Services    []ResourceLink   `json:"services"`
}

func (d *Device) RType() RType { return RTypeDevice }

type DeviceProductData struct {
	ModelID          string `json:"model_id"`
	ManufacturerName string `json:"manufacturer_name"`
	ProductName      string `json:"product_name"`
	SoftwareVersion  string `json:"software_version"`
}

// LightService returns the Device's Light service link, if it has one; the
// scene learner and id_v1 mapping both key off this.
func (d *Device) LightService() (ResourceLink, bool) {
	for _, s := range d.Services {
		if s.RType == RTypeLight {
			return s, true
		}
	}
	return ResourceLink{}, false
}

// AddService inserts a link into the Device's service set, deduplicated and
// kept sorted by (rtype, rid) to match the BTreeSet ordering invariant.
func (d *Device) AddService(link ResourceLink) {
	for _, s := range d.Services {
		if s == link {
			return
		}
	}
	d.Services = append(d.Services, link)
	sortLinks(d.Services)
}

func sortLinks(links []ResourceLink) {
	for i := 1; i < len(links); i++ {
		for j := i; j > 0 && linkLess(links[j], links[j-1]); j-- {
			links[j], links[j-1] = links[j-1], links[j]
		}
	}
}

func linkLess(a, b ResourceLink) bool {
	if a.RType != b.RType {
		return a.RType < b.RType
	}
	return a.RID.String() < b.RID.String()
}

type DeviceUpdate struct {
	Metadata *Metadata `json:"metadata,omitempty"`
}

func (d *Device) Apply(u DeviceUpdate) {
	if u.Metadata != nil {
		d.Metadata = *u.Metadata
	}
}

package store

import (
	"time"

	"github.com/yveskaufmann/huebridge/internal/hue"
)

// SeedBridge populates an empty State with the fixed bridge-owned resource
// tree every reference bridge carries before any z2m device is discovered:
// a Device/Bridge pair, a Device/BridgeHome pair, the bridge's own
// ZigbeeConnectivity and ZigbeeDeviceDiscovery services, an Entertainment
// renderer capability, and the implicit "all lights" GroupedLight. Every id
// is derived deterministically from bridgeID so a redeployed bridge with
// the same identity recomputes identical UUIDs.
func SeedBridge(r *Resources, bridgeID string, mac [6]byte, timeZone string) error {
	bridgeDeviceLink := hue.RTypeDevice.LinkTo(hue.RTypeDevice.DeterministicString(bridgeID + ":device"))
	bridgeLink := hue.RTypeBridge.LinkTo(hue.RTypeBridge.DeterministicString(bridgeID))
	homeDeviceLink := hue.RTypeDevice.LinkTo(hue.RTypeDevice.DeterministicString(bridgeID + ":home_device"))
	homeLink := hue.RTypeBridgeHome.LinkTo(hue.RTypeBridgeHome.DeterministicString(bridgeID))
	zdLink := hue.RTypeZigbeeDeviceDiscovery.LinkTo(hue.RTypeZigbeeDeviceDiscovery.DeterministicString(bridgeID))
	zcLink := hue.RTypeZigbeeConnectivity.LinkTo(hue.RTypeZigbeeConnectivity.DeterministicString(bridgeID))
	entLink := hue.RTypeEntertainment.LinkTo(hue.RTypeEntertainment.DeterministicString(bridgeID))
	groupedLightLink := hue.RTypeGroupedLight.LinkTo(hue.RTypeGroupedLight.DeterministicString(bridgeID + ":all"))

	bridgeDevice := &hue.Device{
		ID: bridgeDeviceLink.RID,
		ProductData: hue.DeviceProductData{
			ModelID:          hue.BridgeModelID,
			ManufacturerName: "Signify Netherlands B.V.",
			ProductName:      "Philips hue",
			SoftwareVersion:  time.Now().UTC().Format("20060102"),
		},
		Metadata: hue.Metadata{Name: "Bridge", Archetype: "bridge_v2"},
		Services: []hue.ResourceLink{bridgeLink, zdLink, zcLink},
	}
	if err := r.Add(bridgeDeviceLink, bridgeDevice); err != nil {
		return err
	}

	bridge := &hue.Bridge{
		ID:        bridgeLink.RID,
		OwnerLink: bridgeDeviceLink,
		BridgeID:  bridgeID,
		TimeZone:  timeZone,
	}
	if err := r.Add(bridgeLink, bridge); err != nil {
		return err
	}

	zdd := &hue.ZigbeeDeviceDiscovery{
		ID:        zdLink.RID,
		OwnerLink: bridgeDeviceLink,
		Status:    hue.ZDDStatusReady,
	}
	if err := r.Add(zdLink, zdd); err != nil {
		return err
	}

	zc := &hue.ZigbeeConnectivity{
		ID:         zcLink.RID,
		OwnerLink:  bridgeDeviceLink,
		MACAddress: hue.BridgeIDString(mac),
		Status:     hue.ZigbeeStatusConnected,
	}
	if err := r.Add(zcLink, zc); err != nil {
		return err
	}

	homeDevice := &hue.Device{
		ID: homeDeviceLink.RID,
		ProductData: hue.DeviceProductData{
			ModelID:          hue.BridgeModelID,
			ManufacturerName: "Signify Netherlands B.V.",
			ProductName:      "Philips hue",
		},
		Metadata: hue.Metadata{Name: "Home", Archetype: "bridge_v2"},
		Services: []hue.ResourceLink{homeLink},
	}
	if err := r.Add(homeDeviceLink, homeDevice); err != nil {
		return err
	}

	home := &hue.BridgeHome{
		ID:       homeLink.RID,
		Children: []hue.ResourceLink{},
		Services: []hue.ResourceLink{groupedLightLink},
	}
	if err := r.Add(homeLink, home); err != nil {
		return err
	}

	ent := &hue.Entertainment{
		ID:         entLink.RID,
		OwnerLink:  bridgeDeviceLink,
		Renderer:   true,
		MaxStreams: 1,
	}
	if err := r.Add(entLink, ent); err != nil {
		return err
	}

	groupedLight := &hue.GroupedLight{
		ID:        groupedLightLink.RID,
		OwnerLink: homeLink,
		On:        hue.On{On: false},
	}
	if err := r.Add(groupedLightLink, groupedLight); err != nil {
		return err
	}

	geoLink := hue.RTypeGeolocation.LinkTo(hue.RTypeGeolocation.DeterministicString(bridgeID + ":geolocation"))
	geo := &hue.Geolocation{ID: geoLink.RID}
	return r.Add(geoLink, geo)
}

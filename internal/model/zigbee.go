package model

import "time"

type ZigbeeDeviceType string

const (
	ZigbeeCoordinator ZigbeeDeviceType = "coordinator"
	ZigbeeRouter      ZigbeeDeviceType = "router"
	ZigbeeEndDevice   ZigbeeDeviceType = "end_device"
)

// ZigbeeDevice mirrors what the home-automation bridge reports.
// LQI is 0-255, higher is better.
type ZigbeeDevice struct {
	IEEEAddress  string           `json:"ieee_address" yaml:"ieee_address"`
	FriendlyName string           `json:"friendly_name,omitempty" yaml:"friendly_name,omitempty"`
	Type         ZigbeeDeviceType `json:"type" yaml:"type"`
	Available    bool             `json:"available" yaml:"available"`
	LQI          int              `json:"lqi" yaml:"lqi"`
	LastSeen     time.Time        `json:"last_seen" yaml:"last_seen"`
}

// ZigbeeNetworkState is the bridge-side snapshot for one analysis pass.
type ZigbeeNetworkState struct {
	Channel     int            `json:"channel" yaml:"channel"`
	PANID       uint16         `json:"pan_id" yaml:"pan_id"`
	Devices     []ZigbeeDevice `json:"devices" yaml:"devices"`
	CollectedAt time.Time      `json:"collected_at" yaml:"collected_at"`
}

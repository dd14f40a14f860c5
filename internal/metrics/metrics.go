// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package metrics

const (
	// KernelUptime is generated by analysing CPU running together with the
	// userspace wakelock metric (Wakelock_in or Partial wakelock).
	KernelUptime = "Kernel only uptime"

	// values of KernelUptime entries
	KernelUptimeNoUserspace   = 1 // CPU running entry that doesn't intersect with any wakelock entry
	KernelUptimeWithUserspace = 2 // CPU running entry that intersects with a wakelock entry

	ErrorType       = "error"       // metric is of error type
	UnavailableType = "unavailable" // metric is not available

	errorSuffix = " [Error]"
)

type Key int32

const (
	KeyInvalid Key = iota

	// int metrics
	KeyTemperature
	KeyVoltage
	KeyBatteryLevel
	KeyBrightness
	KeyCoulombCharge
	KeySignalStrength

	// string metrics
	KeyPhoneState
	KeyDataConnection
	KeyPlugType
	KeyChargingStatus
	KeyHealth
	KeyWifiSupplicant
	KeyWifiSignalStrength
	KeyIdleModeOn

	// bool metrics
	KeyCPURunning
	KeySensorOn
	KeyGPSOn
	KeyWifiFullLock
	KeyWifiScan
	KeyWifiMulticastOn
	KeyMobileRadioOn
	KeyWifiOn
	KeyWifiRadio
	KeyWifiRunning
	KeyPhoneScanning
	KeyBLEScanning
	KeyScreenOn
	KeyPlugged
	KeyPhoneInCall
	KeyLowPowerMode
	KeyAudio
	KeyCamera
	KeyVideo
	KeyReboot
	KeyFlashlight
	KeyChargingOn
	KeyDeviceActive
	KeySignificantMotion

	// service metrics
	KeyWakelockIn
	KeyWakeLockHeld
	KeySyncApp
	KeyActiveProcess
	KeyForegroundProcess
	KeyTopApplication
	KeyConnectivity
	KeyScheduledJob
	KeyPackageInstall
	KeyPackageUninstall
	KeyPackageActive
	KeyPackageInactive
	KeyTmpWhiteList
	KeyKernelWakesource
	KeyPowermonitor

	// logcat metrics
	KeyCrashes
	KeyBluetoothScan

	// event log metrics
	KeyAMProcStart
	KeyAMProcDied
	KeyAMProc // group of AM proc start and AM proc died
	KeyAMLowMemory
	KeyAMANR
	KeyAMLowMemoryANR // group of AM low memory and ANR

	numKeys
)

type Kind uint8

const (
	KindInt Kind = iota + 1
	KindString
	KindBool
	KindService
	KindLogcat
	KindEventLog
)

type metricMeta struct {
	ident string // symbolic identifier, stable across releases
	name  string // display name in the historian V2 CSV
	kind  Kind
}

// csv is the single authoritative key -> display name table of the historian V2 CSV.
// Display names are the join key with the CSV parser and must match byte for byte.
var csv = [numKeys]metricMeta{
	KeyTemperature:    {"TEMPERATURE", "Temperature", KindInt},
	KeyVoltage:        {"VOLTAGE", "Voltage", KindInt},
	KeyBatteryLevel:   {"BATTERY_LEVEL", "Level", KindInt},
	KeyBrightness:     {"BRIGHTNESS", "Brightness", KindInt},
	KeyCoulombCharge:  {"COULOMB_CHARGE", "Coulomb charge", KindInt},
	KeySignalStrength: {"SIGNAL_STRENGTH", "Mobile signal strength", KindInt},

	KeyPhoneState:         {"PHONE_STATE", "Phone state", KindString},
	KeyDataConnection:     {"DATA_CONNECTION", "Mobile network type", KindString},
	KeyPlugType:           {"PLUG_TYPE", "Plug", KindString},
	KeyChargingStatus:     {"CHARGING_STATUS", "Charging status", KindString},
	KeyHealth:             {"HEALTH", "Health", KindString},
	KeyWifiSupplicant:     {"WIFI_SUPPLICANT", "Wifi supplicant", KindString},
	KeyWifiSignalStrength: {"WIFI_SIGNAL_STRENGTH", "Wifi signal strength", KindString},
	KeyIdleModeOn:         {"IDLE_MODE_ON", "Doze", KindString},

	KeyCPURunning:        {"CPU_RUNNING", "CPU running", KindBool},
	KeySensorOn:          {"SENSOR_ON", "Sensor", KindBool},
	KeyGPSOn:             {"GPS_ON", "GPS", KindBool},
	KeyWifiFullLock:      {"WIFI_FULL_LOCK", "Wifi full lock", KindBool},
	KeyWifiScan:          {"WIFI_SCAN", "Wifi scan", KindBool},
	KeyWifiMulticastOn:   {"WIFI_MULTICAST_ON", "Wifi multicast", KindBool},
	KeyMobileRadioOn:     {"MOBILE_RADIO_ON", "Mobile radio active", KindBool},
	KeyWifiOn:            {"WIFI_ON", "Wifi on", KindBool},
	KeyWifiRadio:         {"WIFI_RADIO", "Wifi radio", KindBool},
	KeyWifiRunning:       {"WIFI_RUNNING", "Wifi running", KindBool},
	KeyPhoneScanning:     {"PHONE_SCANNING", "Phone scanning", KindBool},
	KeyBLEScanning:       {"BLE_SCANNING", "BLE scanning", KindBool},
	KeyScreenOn:          {"SCREEN_ON", "Screen", KindBool},
	KeyPlugged:           {"PLUGGED", "Plugged", KindBool},
	KeyPhoneInCall:       {"PHONE_IN_CALL", "Phone call", KindBool},
	KeyLowPowerMode:      {"LOW_POWER_MODE", "Battery Saver", KindBool},
	KeyAudio:             {"AUDIO", "Audio", KindBool},
	KeyCamera:            {"CAMERA", "Camera", KindBool},
	KeyVideo:             {"VIDEO", "Video", KindBool},
	KeyReboot:            {"REBOOT", "Reboot", KindBool},
	KeyFlashlight:        {"FLASHLIGHT", "Flashlight on", KindBool},
	KeyChargingOn:        {"CHARGING_ON", "Charging on", KindBool},
	KeyDeviceActive:      {"DEVICE_ACTIVE", "Device active", KindBool},
	KeySignificantMotion: {"SIGNIFICANT_MOTION", "Significant motion", KindBool},

	KeyWakelockIn:        {"WAKELOCK_IN", "Wakelock_in", KindService},
	KeyWakeLockHeld:      {"WAKE_LOCK_HELD", "Partial wakelock", KindService},
	KeySyncApp:           {"SYNC_APP", "SyncManager", KindService},
	KeyActiveProcess:     {"ACTIVE_PROCESS", "Active process", KindService},
	KeyForegroundProcess: {"FOREGROUND_PROCESS", "Foreground process", KindService},
	KeyTopApplication:    {"TOP_APPLICATION", "Top app", KindService},
	KeyConnectivity:      {"CONNECTIVITY", "Network connectivity", KindService},
	KeyScheduledJob:      {"SCHEDULED_JOB", "JobScheduler", KindService},
	KeyPackageInstall:    {"PACKAGE_INSTALL", "Package install", KindService},
	KeyPackageUninstall:  {"PACKAGE_UNINSTALL", "Package uninstall", KindService},
	KeyPackageActive:     {"PACKAGE_ACTIVE", "Package active", KindService},
	KeyPackageInactive:   {"PACKAGE_INACTIVE", "Package inactive", KindService},
	KeyTmpWhiteList:      {"TMP_WHITE_LIST", "Temp White List", KindService},
	KeyKernelWakesource:  {"KERNEL_WAKESOURCE", "Kernel Wakesource", KindService},
	KeyPowermonitor:      {"POWERMONITOR", "Powermonitor", KindService},

	KeyCrashes:       {"CRASHES", "Crashes", KindLogcat},
	KeyBluetoothScan: {"BLUETOOTH_SCAN", "Bluetooth Scan", KindLogcat},

	KeyAMProcStart:    {"AM_PROC_START", "AM Proc Start", KindEventLog},
	KeyAMProcDied:     {"AM_PROC_DIED", "AM Proc Died", KindEventLog},
	KeyAMProc:         {"AM_PROC", "Activity Manager Proc", KindEventLog},
	KeyAMLowMemory:    {"AM_LOW_MEMORY", "AM Low Memory", KindEventLog},
	KeyAMANR:          {"AM_ANR", "ANR", KindEventLog},
	KeyAMLowMemoryANR: {"AM_LOW_MEMORY_ANR", "AM Low Memory / ANR", KindEventLog},
}

type levelSummaryDimension struct {
	key  Key
	name string
}

// levelSummaryCsv is a separate namespace: names of the level summary CSV dimensions,
// keyed by the historian V2 CSV metric they correspond to.
var levelSummaryCsv = []levelSummaryDimension{
	{KeyPlugged, "PluggedIn"},
	{KeyScreenOn, "ScreenOn"},
	{KeyMobileRadioOn, "MobileRadioOn"},
	{KeyWifiOn, "WifiOn"},
	{KeyCPURunning, "CPURunning"},

	{KeyGPSOn, "GpsOn"},
	{KeySensorOn, "SensorOn"},
	{KeyWifiScan, "WifiScan"},
	{KeyWifiFullLock, "WifiFullLock"},
	{KeyWifiRadio, "WifiRadio"},
	{KeyWifiRunning, "WifiRunning"},
	{KeyWifiMulticastOn, "WifiMulticastOn"},

	{KeyAudio, "AudioOn"},
	{KeyCamera, "CameraOn"},
	{KeyVideo, "VideoOn"},
	{KeyLowPowerMode, "LowPowerModeOn"},
	{KeyFlashlight, "FlashlightOn"},
	{KeyChargingOn, "ChargingOn"},

	{KeyPhoneInCall, "PhoneCall"},
	{KeyPhoneScanning, "PhoneScan"},
	{KeyBLEScanning, "BLEScan"},
}

func (k Key) Valid() bool {
	return k > KeyInvalid && k < numKeys
}

func (k Key) String() string {
	if !k.Valid() {
		return "INVALID"
	}
	return csv[k].ident
}

// ParseKey is the inverse of Key.String.
func ParseKey(ident string) (Key, bool) {
	for k := KeyInvalid + 1; k < numKeys; k++ {
		if csv[k].ident == ident {
			return k, true
		}
	}
	return KeyInvalid, false
}

// Name returns display name of the metric in the historian V2 CSV.
func Name(k Key) string {
	if !k.Valid() {
		return ""
	}
	return csv[k].name
}

func KindOf(k Key) Kind {
	if !k.Valid() {
		return 0
	}
	return csv[k].kind
}

// LevelSummaryName returns the level summary CSV dimension corresponding to k, if any.
func LevelSummaryName(k Key) (string, bool) {
	for _, d := range levelSummaryCsv {
		if d.key == k {
			return d.name, true
		}
	}
	return "", false
}

// LookupKey returns the key of a historian V2 CSV metric by its display name.
func LookupKey(name string) (Key, bool) {
	for k := KeyInvalid + 1; k < numKeys; k++ {
		if csv[k].name == name {
			return k, true
		}
	}
	return KeyInvalid, false
}

// LookupLevelSummaryKey returns the key of a level summary CSV dimension,
// which corresponds to the historian V2 CSV metric.
func LookupLevelSummaryKey(name string) (Key, bool) {
	for _, d := range levelSummaryCsv {
		if d.name == name {
			return d.key, true
		}
	}
	return KeyInvalid, false
}

// Keys returns all historian V2 CSV keys in declaration order.
func Keys() []Key {
	res := make([]Key, 0, numKeys-1)
	for k := KeyInvalid + 1; k < numKeys; k++ {
		res = append(res, k)
	}
	return res
}

func LevelSummaryKeys() []Key {
	res := make([]Key, 0, len(levelSummaryCsv))
	for _, d := range levelSummaryCsv {
		res = append(res, d.key)
	}
	return res
}

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindService:
		return "service"
	case KindLogcat:
		return "logcat"
	case KindEventLog:
		return "eventlog"
	default:
		return "unknown"
	}
}

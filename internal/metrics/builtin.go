// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package metrics

// renderOrder defines the order the metrics are drawn in Historian v2.
// Metrics not listed here are drawn after all listed ones.
var renderOrder = []string{
	Name(KeyReboot),
	Name(KeyCPURunning),
	KernelUptime,
	Name(KeyWakelockIn),
	Name(KeyWakeLockHeld),
	Name(KeyKernelWakesource),
	Name(KeyScreenOn),
	Name(KeyTopApplication),
	Name(KeyAMProc),
	Name(KeyAMLowMemoryANR),
	Name(KeyCrashes),
	Name(KeyBrightness),

	// battery saver and doze
	Name(KeyLowPowerMode),
	Name(KeyIdleModeOn),
	Name(KeyDeviceActive),
	Name(KeySignificantMotion),

	Name(KeyScheduledJob),
	Name(KeySyncApp),
	Name(KeyTmpWhiteList),

	Name(KeyPhoneInCall),
	Name(KeyGPSOn),
	Name(KeySensorOn),
	Name(KeyBluetoothScan),

	// cellular
	Name(KeyBLEScanning),
	Name(KeyPhoneScanning),
	Name(KeyPhoneState),
	Name(KeyConnectivity),
	Name(KeyDataConnection),
	Name(KeyMobileRadioOn),
	Name(KeySignalStrength),

	// wifi
	Name(KeyWifiFullLock),
	Name(KeyWifiScan),
	Name(KeyWifiSupplicant),
	Name(KeyWifiRadio),
	Name(KeyWifiSignalStrength),
	Name(KeyWifiMulticastOn),
	Name(KeyWifiRunning),
	Name(KeyWifiOn),

	Name(KeyAudio),
	Name(KeyFlashlight),
	Name(KeyCamera),
	Name(KeyVideo),

	Name(KeyForegroundProcess),

	Name(KeyPackageInstall),
	Name(KeyPackageUninstall),
	Name(KeyPackageActive),
	Name(KeyPackageInactive),
}

var (
	// hidden by default as a bar metric
	hiddenBarMetrics = []Key{
		KeyHealth,
		KeyPlugType,
		KeyChargingStatus,
		KeyVoltage,
		KeyBrightness,
		KeyPowermonitor,
	}

	metricsToAggregate = []Key{
		KeySyncApp,
		KeyForegroundProcess,
		KeyWakelockIn,
		KeyConnectivity,
		KeyKernelWakesource,
	}

	// can be filtered by UID
	appSpecificMetrics = []Key{
		KeySyncApp,
		KeyForegroundProcess,
		KeyWakelockIn,
		KeyTopApplication,
		KeyScheduledJob,
		KeyTmpWhiteList,
		KeyPackageInstall,
		KeyPackageUninstall,
		KeyPackageActive,
		KeyPackageInactive,
		KeyAMProcStart,
		KeyAMProcDied,
		KeyAMANR,
		KeyCrashes,
		KeyBluetoothScan,
	}

	// specially marked in UI
	unreliableMetrics = []Key{
		KeyAudio,
	}

	// by default metrics are rendered as rectangles
	renderAsCircles = []Key{
		KeyAMProcStart,
		KeyAMProcDied,
		KeyAMLowMemory,
		KeyAMANR,
		KeyCrashes,
		KeyBluetoothScan,
	}

	// extracted from logcat
	logcatMetrics = []Key{
		KeyCrashes,
		KeyBluetoothScan,
	}

	// group -> metrics drawn in the same row
	metricGroups = map[Key][]Key{
		KeyAMProc:         {KeyAMProcStart, KeyAMProcDied},
		KeyAMLowMemoryANR: {KeyAMLowMemory, KeyAMANR},
	}

	// shown in the corresponding help icon, keyed by group or metric
	descriptors = map[Key]string{
		KeyWakeLockHeld: "Userspace wakelocks prevent the CPU from sleeping. This may point " +
			"out problems with applications or services holding wakelocks too " +
			"frequently, or may be a result of errors encountered performing " +
			"operations normally expected to complete quickly, such as network " +
			"sync operations. Some wakelocks are intentionally held for " +
			"relatively long times to prevent the system from sleeping during " +
			"activities such as screen off audio playback.\n\n" +
			"Only the first app to acquire the wakelock is shown. Please see the " +
			"system stats Userspace Wakelocks table for absolute numbers.\n\n" +
			"You can also enable full wakelock reporting:\n" +
			"adb shell dumpsys batterystats --enable full-wake-history",
	}
)

// Order returns a copy of the render order.
func Order() []string {
	res := make([]string, len(renderOrder))
	copy(res, renderOrder)
	return res
}

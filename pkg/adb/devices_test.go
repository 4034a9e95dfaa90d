/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: devices_test.go
Description: Tests for device and package list parsing. Covers the adb device
banner, transport statuses, timestamp enrichment from the global package dump,
and the timeStamp fallback for older platforms.
*/

package adb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeviceList(t *testing.T) {
	output := "List of devices attached\n" +
		"emulator-5554\tdevice\n" +
		"0A1B2C3D\tunauthorized\n" +
		"\n"

	devices := ParseDeviceList(output)
	require.Len(t, devices, 2)
	assert.Equal(t, Device{ID: "emulator-5554", Status: "device"}, devices[0])
	assert.Equal(t, Device{ID: "0A1B2C3D", Status: "unauthorized"}, devices[1])
}

func TestParseDeviceListEmpty(t *testing.T) {
	assert.Empty(t, ParseDeviceList("List of devices attached\n\n"))
}

func TestParsePackageList(t *testing.T) {
	listOut := "package:com.example.app\npackage:com.other.app\n"
	dumpOut := `Packages:
  Package [com.example.app] (a1b2c3):
    firstInstallTime=2023-05-01 10:00:00
    lastUpdateTime=2024-01-15 12:30:00
  Package [com.other.app] (d4e5f6):
    timeStamp=2020-06-01 09:00:00
`

	entries := ParsePackageList(listOut, dumpOut)
	require.Len(t, entries, 2)

	assert.Equal(t, "com.example.app", entries[0].Name)
	assert.Equal(t, "2023-05-01 10:00:00", entries[0].InstallTime)
	assert.Equal(t, "2024-01-15 12:30:00", entries[0].UpdateTime)

	// Older records fall back to timeStamp for the install time.
	assert.Equal(t, "com.other.app", entries[1].Name)
	assert.Equal(t, "2020-06-01 09:00:00", entries[1].InstallTime)
	assert.Equal(t, "", entries[1].UpdateTime)
}

func TestParsePackageListWithoutDump(t *testing.T) {
	entries := ParsePackageList("package:com.example.app\n", "")
	require.Len(t, entries, 1)
	assert.Equal(t, "com.example.app", entries[0].Name)
	assert.Equal(t, "", entries[0].InstallTime)
}

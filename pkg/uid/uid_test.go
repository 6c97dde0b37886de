package uid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBroadcastSentinels(t *testing.T) {
	_, err := New(0xFFFF, 0xFFFF_FFFF)
	require.ErrorIs(t, err, ErrBroadcastSentinel)

	_, err = New(0x7FF0, 0xFFFF_FFFF)
	require.ErrorIs(t, err, ErrManufacturerBroadcastSentinel)
}

func TestNewAcceptsOrdinaryDeviceUID(t *testing.T) {
	u, err := New(0x7FF0, 0x00000001)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x7FF0), u.ManufacturerID())
	assert.Equal(t, uint32(0x00000001), u.DeviceID())
}

func TestBytesRoundTrip(t *testing.T) {
	u, err := New(0x4D4D, 0x01020304)
	require.NoError(t, err)

	b := u.Bytes()
	assert.Equal(t, FromBytes(b), u)
}

func TestIsBroadcastClassification(t *testing.T) {
	assert.True(t, BroadcastAll.IsBroadcast())
	assert.False(t, BroadcastAll.IsManufacturerBroadcast())

	mfgBroadcast := FromUint48(uint64(0x7FF0)<<32 | 0xFFFF_FFFF)
	assert.True(t, mfgBroadcast.IsManufacturerBroadcast())
	assert.False(t, mfgBroadcast.IsBroadcast())

	device := FromUint48(uint64(0x7FF0)<<32 | 0x00000042)
	assert.False(t, device.IsAnyBroadcast())
}

func TestLessOrdersByValue(t *testing.T) {
	low := FromUint48(1)
	high := FromUint48(2)
	assert.True(t, low.Less(high))
	assert.False(t, high.Less(low))
}

func TestPackageAddressUIDRoundTrip(t *testing.T) {
	dev, err := New(0x1234, 0x5678)
	require.NoError(t, err)

	cases := []PackageAddress{
		Device(dev),
		Broadcast(),
		ManufacturerBroadcast(0x1234),
	}

	for _, addr := range cases {
		got := AddressFromUID(addr.UID())
		assert.Equal(t, addr.Kind(), got.Kind())
		assert.Equal(t, addr.UID(), got.UID())
	}
}

func TestStringFormat(t *testing.T) {
	u := FromUint48(uint64(0x7FF0)<<32 | 0x00000001)
	assert.Equal(t, "7FF0:00000001", u.String())
}

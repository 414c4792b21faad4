// Package aoa implements the HID part of the Android Open Accessory 2.0
// protocol. It registers a keyboard with an Android device over USB and
// sends input reports to it, with no setup on the Android side.
//
// Protocol reference: https://source.android.com/docs/core/interaction/accessories/aoa2
package aoa

import (
	"fmt"
	"time"

	"github.com/google/gousb"
)

const (
	// AOA HID control transfer request codes (bRequest values)
	reqRegisterHID   = 54 // ACCESSORY_REGISTER_HID
	reqUnregisterHID = 55 // ACCESSORY_UNREGISTER_HID
	reqSetHIDDesc    = 56 // ACCESSORY_SET_HID_REPORT_DESC
	reqSendHIDEvent  = 57 // ACCESSORY_SEND_HID_EVENT

	// host-to-device (0x00) | vendor (0x40) | device recipient (0x00)
	bmRequestTypeOut = 0x40
)

// settleDelay gives Android time to create the input device after a
// descriptor is registered.
var settleDelay = 300 * time.Millisecond

// KeyboardDescriptor is a boot keyboard report descriptor. Its reports
// are 8 bytes: modifier bits, a reserved byte, then up to six usages.
var KeyboardDescriptor = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x06, // Usage (Keyboard)
	0xA1, 0x01, // Collection (Application)
	0x05, 0x07, //   Usage Page (Keyboard/Keypad)
	0x19, 0xE0, //   Usage Minimum (Left Control)
	0x29, 0xE7, //   Usage Maximum (Right GUI)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x01, //   Logical Maximum (1)
	0x75, 0x01, //   Report Size (1)
	0x95, 0x08, //   Report Count (8)
	0x81, 0x02, //   Input (Data, Variable, Absolute): modifier byte
	0x95, 0x01, //   Report Count (1)
	0x75, 0x08, //   Report Size (8)
	0x81, 0x01, //   Input (Constant): reserved byte
	0x95, 0x06, //   Report Count (6)
	0x75, 0x08, //   Report Size (8)
	0x15, 0x00, //   Logical Minimum (0)
	0x26, 0xFF, 0x00, // Logical Maximum (255)
	0x05, 0x07, //   Usage Page (Keyboard/Keypad)
	0x19, 0x00, //   Usage Minimum (0)
	0x29, 0xFF, //   Usage Maximum (255)
	0x81, 0x00, //   Input (Data, Array)
	0xC0, // End Collection
}

// KeyboardReport builds an 8-byte keyboard report. At most six usages are
// reported; extra ones are dropped.
func KeyboardReport(modifiers byte, usages ...byte) []byte {
	report := make([]byte, 8)
	report[0] = modifiers
	copy(report[2:], usages)
	return report
}

// Match selects the USB device to open. A zero Vendor or Product matches
// any; an empty Serial matches the first device found.
type Match struct {
	Vendor  gousb.ID
	Product gousb.ID
	Serial  string
}

func (m Match) matches(desc *gousb.DeviceDesc) bool {
	return (m.Vendor == 0 || desc.Vendor == m.Vendor) && (m.Product == 0 || desc.Product == m.Product)
}

// controller is the subset of *gousb.Device used here.
type controller interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
	SerialNumber() (string, error)
	Close() error
}

// Device wraps a libusb handle to an Android device with AOA HID set up.
type Device struct {
	ctx        *gousb.Context
	dev        controller
	nextHIDID  uint16
	registered []uint16
}

// Open finds a matching device and opens a USB connection (no HID
// registration yet).
func Open(m Match) (*Device, error) {
	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return m.matches(desc)
	})
	if err != nil && len(devs) == 0 {
		ctx.Close()
		return nil, fmt.Errorf("no accessory host found (VID:0x%04x PID:0x%04x): %w", uint16(m.Vendor), uint16(m.Product), err)
	}

	var dev *gousb.Device
	for _, d := range devs {
		s, _ := d.SerialNumber()
		if dev == nil && (m.Serial == "" || s == m.Serial) {
			dev = d
		} else {
			d.Close()
		}
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("device with serial %q not found", m.Serial)
	}

	dev.SetAutoDetach(true)

	d := newDevice(dev)
	d.ctx = ctx
	return d, nil
}

func newDevice(dev controller) *Device {
	return &Device{dev: dev, nextHIDID: 1}
}

// RegisterKeyboard registers KeyboardDescriptor and returns its HID ID.
func (d *Device) RegisterKeyboard() (uint16, error) {
	return d.RegisterDescriptor(KeyboardDescriptor)
}

// RegisterDescriptor registers an HID report descriptor with the device
// and returns the HID ID to use with SendReport. A failed registration is
// rolled back.
func (d *Device) RegisterDescriptor(desc []byte) (uint16, error) {
	if len(desc) == 0 {
		return 0, fmt.Errorf("empty HID descriptor")
	}

	id := d.nextHIDID
	d.nextHIDID++

	// wValue = HID ID, wIndex = descriptor length
	if err := d.controlTransfer(reqRegisterHID, id, uint16(len(desc)), nil); err != nil {
		return 0, fmt.Errorf("register HID %d: %w", id, err)
	}
	if err := d.controlTransfer(reqSetHIDDesc, id, 0, desc); err != nil {
		_ = d.controlTransfer(reqUnregisterHID, id, 0, nil)
		return 0, fmt.Errorf("set HID %d report descriptor: %w", id, err)
	}

	time.Sleep(settleDelay)

	d.registered = append(d.registered, id)
	return id, nil
}

// SendReport sends a raw HID report to a registered descriptor.
func (d *Device) SendReport(hidID uint16, report []byte) error {
	return d.controlTransfer(reqSendHIDEvent, hidID, 0, report)
}

// Ping checks if the device is still connected by reading its serial number.
func (d *Device) Ping() error {
	_, err := d.dev.SerialNumber()
	return err
}

// Close unregisters every descriptor and releases USB resources.
func (d *Device) Close() {
	for _, id := range d.registered {
		_ = d.controlTransfer(reqUnregisterHID, id, 0, nil)
	}
	d.registered = nil
	d.dev.Close()
	if d.ctx != nil {
		d.ctx.Close()
	}
}

func (d *Device) controlTransfer(bRequest uint8, wValue uint16, wIndex uint16, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := d.dev.Control(bmRequestTypeOut, bRequest, wValue, wIndex, data)
	if err != nil {
		return fmt.Errorf("control transfer (req=%d wValue=%d wIndex=%d): %w", bRequest, wValue, wIndex, err)
	}
	return nil
}

package hid

import (
	"bytes"
	"fmt"
)

// reportMap is the boot keyboard report descriptor served by the Report Map
// characteristic: 8 modifier bits, a reserved byte, 5 LED output bits with 3
// bits padding, and 6 key array bytes.
var reportMap = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x06, // Usage (Keyboard)
	0xA1, 0x01, // Collection (Application)
	0x05, 0x07, //   Usage Page (Key Codes)
	0x19, 0xE0, //   Usage Minimum (224)
	0x29, 0xE7, //   Usage Maximum (231)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x01, //   Logical Maximum (1)
	0x75, 0x01, //   Report Size (1)
	0x95, 0x08, //   Report Count (8)
	0x81, 0x02, //   Input (Data, Variable, Absolute)
	0x95, 0x01, //   Report Count (1)
	0x75, 0x08, //   Report Size (8)
	0x81, 0x03, //   Input (Constant)
	0x95, 0x05, //   Report Count (5)
	0x75, 0x01, //   Report Size (1)
	0x05, 0x08, //   Usage Page (LEDs)
	0x19, 0x01, //   Usage Minimum (1)
	0x29, 0x05, //   Usage Maximum (5)
	0x91, 0x02, //   Output (Data, Variable, Absolute)
	0x95, 0x01, //   Report Count (1)
	0x75, 0x03, //   Report Size (3)
	0x91, 0x03, //   Output (Constant)
	0x95, 0x06, //   Report Count (6)
	0x75, 0x08, //   Report Size (8)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x65, //   Logical Maximum (101)
	0x05, 0x07, //   Usage Page (Key Codes)
	0x19, 0x00, //   Usage Minimum (0)
	0x29, 0x65, //   Usage Maximum (101)
	0x81, 0x00, //   Input (Data, Array)
	0xC0, // End Collection
}

// ReportMap returns a copy of the keyboard report descriptor.
func ReportMap() []byte {
	return bytes.Clone(reportMap)
}

// ItemType is the type field of a short item prefix.
type ItemType uint8

const (
	ItemMain     ItemType = 0
	ItemGlobal   ItemType = 1
	ItemLocal    ItemType = 2
	ItemReserved ItemType = 3
)

func (t ItemType) String() string {
	switch t {
	case ItemMain:
		return "Main"
	case ItemGlobal:
		return "Global"
	case ItemLocal:
		return "Local"
	default:
		return "Reserved"
	}
}

// Item is one short item of a report descriptor.
type Item struct {
	Offset int
	Type   ItemType
	Tag    uint8
	Data   []byte
}

// Value returns the little-endian unsigned item data.
func (it Item) Value() uint32 {
	var v uint32
	for i, b := range it.Data {
		v |= uint32(b) << (8 * i)
	}
	return v
}

type itemKey struct {
	t   ItemType
	tag uint8
}

var itemNames = map[itemKey]string{
	{ItemMain, 0x8}:   "Input",
	{ItemMain, 0x9}:   "Output",
	{ItemMain, 0xB}:   "Feature",
	{ItemMain, 0xA}:   "Collection",
	{ItemMain, 0xC}:   "End Collection",
	{ItemGlobal, 0x0}: "Usage Page",
	{ItemGlobal, 0x1}: "Logical Minimum",
	{ItemGlobal, 0x2}: "Logical Maximum",
	{ItemGlobal, 0x3}: "Physical Minimum",
	{ItemGlobal, 0x4}: "Physical Maximum",
	{ItemGlobal, 0x5}: "Unit Exponent",
	{ItemGlobal, 0x6}: "Unit",
	{ItemGlobal, 0x7}: "Report Size",
	{ItemGlobal, 0x8}: "Report ID",
	{ItemGlobal, 0x9}: "Report Count",
	{ItemGlobal, 0xA}: "Push",
	{ItemGlobal, 0xB}: "Pop",
	{ItemLocal, 0x0}:  "Usage",
	{ItemLocal, 0x1}:  "Usage Minimum",
	{ItemLocal, 0x2}:  "Usage Maximum",
}

// Name returns the item's descriptive name, or a generic form for unknown tags.
func (it Item) Name() string {
	if n, ok := itemNames[itemKey{it.Type, it.Tag}]; ok {
		return n
	}
	return fmt.Sprintf("%s(0x%X)", it.Type, it.Tag)
}

func (it Item) String() string {
	if len(it.Data) == 0 {
		return it.Name()
	}
	return fmt.Sprintf("%s (0x%0*X)", it.Name(), 2*len(it.Data), it.Value())
}

const longItemPrefix = 0xFE

// ParseReportMap splits a report descriptor into short items.
// Long items are rejected; they never appear in keyboard descriptors.
func ParseReportMap(b []byte) ([]Item, error) {
	var items []Item
	for off := 0; off < len(b); {
		prefix := b[off]
		if prefix == longItemPrefix {
			return nil, fmt.Errorf("long item at offset %d is not supported", off)
		}
		size := int(prefix & 0x03)
		if size == 3 {
			size = 4
		}
		if off+1+size > len(b) {
			return nil, fmt.Errorf("item at offset %d truncated: need %d data bytes, have %d", off, size, len(b)-off-1)
		}
		items = append(items, Item{
			Offset: off,
			Type:   ItemType((prefix >> 2) & 0x03),
			Tag:    prefix >> 4,
			Data:   bytes.Clone(b[off+1 : off+1+size]),
		})
		off += 1 + size
	}
	return items, nil
}

package gatt

// Closed property schemas. Each object type answers exactly these names; any
// other string coming from the bus is rejected with ErrInvalidArgument.

type ServiceProperty int

const (
	ServiceUUID ServiceProperty = iota
	ServicePrimary
	ServiceCharacteristics
)

var serviceProperties = []string{"UUID", "Primary", "Characteristics"}

func (p ServiceProperty) String() string { return serviceProperties[p] }

// ParseServiceProperty maps a property name to its schema entry.
func ParseServiceProperty(name string) (ServiceProperty, error) {
	return parseProperty[ServiceProperty](serviceProperties, ServiceInterface, name)
}

type CharacteristicProperty int

const (
	CharacteristicUUID CharacteristicProperty = iota
	CharacteristicService
	CharacteristicFlags
	CharacteristicDescriptors
	CharacteristicValue
)

var characteristicProperties = []string{"UUID", "Service", "Flags", "Descriptors", "Value"}

func (p CharacteristicProperty) String() string { return characteristicProperties[p] }

// ParseCharacteristicProperty maps a property name to its schema entry.
func ParseCharacteristicProperty(name string) (CharacteristicProperty, error) {
	return parseProperty[CharacteristicProperty](characteristicProperties, CharacteristicInterface, name)
}

type DescriptorProperty int

const (
	DescriptorUUID DescriptorProperty = iota
	DescriptorCharacteristic
	DescriptorFlags
	DescriptorValue
)

var descriptorProperties = []string{"UUID", "Characteristic", "Flags", "Value"}

func (p DescriptorProperty) String() string { return descriptorProperties[p] }

// ParseDescriptorProperty maps a property name to its schema entry.
func ParseDescriptorProperty(name string) (DescriptorProperty, error) {
	return parseProperty[DescriptorProperty](descriptorProperties, DescriptorInterface, name)
}

type AdvertisementProperty int

const (
	AdvertisementType AdvertisementProperty = iota
	AdvertisementServiceUUIDs
	AdvertisementSolicitUUIDs
	AdvertisementManufacturerData
	AdvertisementServiceData
	AdvertisementLocalName
	AdvertisementIncludeTxPower
	AdvertisementAppearance
)

var advertisementProperties = []string{
	"Type", "ServiceUUIDs", "SolicitUUIDs", "ManufacturerData",
	"ServiceData", "LocalName", "IncludeTxPower", "Appearance",
}

func (p AdvertisementProperty) String() string { return advertisementProperties[p] }

// ParseAdvertisementProperty maps a property name to its schema entry.
func ParseAdvertisementProperty(name string) (AdvertisementProperty, error) {
	return parseProperty[AdvertisementProperty](advertisementProperties, AdvertisementInterface, name)
}

func parseProperty[T ~int](names []string, iface, name string) (T, error) {
	for i, n := range names {
		if n == name {
			return T(i), nil
		}
	}
	return 0, invalidArgf("%s has no property %q", iface, name)
}

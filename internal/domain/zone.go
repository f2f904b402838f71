package domain

// DeliveryZone determines which per-line delivery fee applies to an
// on-order item.
type DeliveryZone string

const (
	ZoneLocal       DeliveryZone = "local"
	ZoneUptown      DeliveryZone = "uptown"
	ZoneOutOfTown   DeliveryZone = "outoftown"
	ZoneCountrywide DeliveryZone = "countrywide"
)

// ParseZone maps a raw zone string to a DeliveryZone. Unknown or empty
// values fall back to ZoneLocal.
func ParseZone(s string) DeliveryZone {
	switch DeliveryZone(s) {
	case ZoneUptown:
		return ZoneUptown
	case ZoneOutOfTown:
		return ZoneOutOfTown
	case ZoneCountrywide:
		return ZoneCountrywide
	default:
		return ZoneLocal
	}
}

func (z DeliveryZone) String() string {
	return string(z)
}

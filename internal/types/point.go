// README: Geographic point shared by order locations and geocoding.
package types

import "fmt"

type Point struct {
	Lat float64
	Lng float64
}

// MapLink builds the Google Maps deep link sent to the owner and the
// rider alongside a delivery pin.
func (p Point) MapLink() string {
	return fmt.Sprintf("https://maps.google.com/?q=%f,%f", p.Lat, p.Lng)
}

package domain

// Coordinates is a WGS84 point. Longitude comes first, as in GeoJSON.
type Coordinates struct {
	Lon float64
	Lat float64
}

// LonLat returns the point in the [lon, lat] order routing APIs expect.
func (c Coordinates) LonLat() []float64 { return []float64{c.Lon, c.Lat} }

// Valid rejects out-of-range values and the null island a failed geocode
// sometimes reports.
func (c Coordinates) Valid() bool {
	if c.Lon == 0 && c.Lat == 0 {
		return false
	}
	return c.Lon >= -180 && c.Lon <= 180 && c.Lat >= -90 && c.Lat <= 90
}

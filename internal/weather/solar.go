package weather

import "math"

// NumSurfaces is the number of vertical surface orientations
const NumSurfaces = 8

// SurfaceAzimuths are the orientations in radians, in the order
// S, SE, E, NE, N, NW, W, SW.
var SurfaceAzimuths = [NumSurfaces]float64{
	0, -math.Pi / 4, -math.Pi / 2, -3 * math.Pi / 4, math.Pi, 3 * math.Pi / 4, math.Pi / 2, math.Pi / 4,
}

// SurfaceNames labels SurfaceAzimuths
var SurfaceNames = [NumSurfaces]string{"S", "SE", "E", "NE", "N", "NW", "W", "SW"}

const (
	groundReflectance = 0.14
	surfaceTilt       = math.Pi / 2
)

// SolarRadiation computes total irradiance on the vertical surfaces for every
// hour of the year. The result is indexed [hourOfYear][surface] in W/m².
func SolarRadiation(d *Data, tf *TimeFrame) [][NumSurfaces]float64 {
	lat := d.Latitude * math.Pi / 180
	lon := d.Longitude * math.Pi / 180
	meridian := float64(d.TimeZone) * 15 * math.Pi / 180
	sinTilt, cosTilt := math.Sin(surfaceTilt), math.Cos(surfaceTilt)

	out := make([][NumSurfaces]float64, HoursInYear)
	for i := 0; i < HoursInYear; i++ {
		eb, ed := d.DirectNormal[i], d.DiffuseHorizontal[i]

		rev := 2 * math.Pi * float64(tf.DayOfYear[i]) / DaysInYear
		eqTime := 2.2918 * (0.0075 + 0.1868*math.Cos(rev) - 3.2077*math.Sin(rev) -
			1.4615*math.Cos(2*rev) - 4.089*math.Sin(2*rev))
		// EPW hour labels run 1..24 and mark the end of the interval
		ast := float64(tf.Hour[i]+1) + eqTime/60 + (lon-meridian)/(math.Pi/12)
		dec := 0.006918 - 0.399912*math.Cos(rev) + 0.070257*math.Sin(rev) -
			0.006758*math.Cos(2*rev) + 0.000907*math.Sin(2*rev)
		sha := 15 * (ast - 12) * math.Pi / 180
		alt := math.Asin(math.Cos(lat)*math.Cos(dec)*math.Cos(sha) + math.Sin(lat)*math.Sin(dec))
		cosAlt := math.Cos(alt)
		sinAz := math.Sin(sha) * math.Cos(dec) / cosAlt
		cosAz := (math.Cos(sha)*math.Cos(dec)*math.Sin(lat) - math.Sin(dec)*math.Cos(lat)) / cosAlt
		sAz := math.Atan2(sinAz, cosAz)

		ground := (eb*math.Sin(alt) + ed) * groundReflectance * (1 - cosTilt) / 2

		for s := 0; s < NumSurfaces; s++ {
			ssa := math.Abs(sAz - SurfaceAzimuths[s])
			inc := math.Acos(cosAlt*math.Cos(ssa)*sinTilt + math.Sin(alt)*cosTilt)
			direct := eb * math.Max(math.Cos(inc), 0)

			f := math.Max(0.45, 0.55+0.437*math.Cos(inc)+0.313*math.Cos(inc)*math.Cos(inc))
			var diffuse float64
			if surfaceTilt > math.Pi/2 {
				diffuse = ed * f * sinTilt
			} else {
				diffuse = ed * (f*sinTilt + cosTilt)
			}
			out[i][s] = direct + diffuse + ground
		}
	}
	return out
}

// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sources

import (
	"math"
	"time"

	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
)

// j2000 is the Julian day of the J2000.0 epoch (2000-01-01 12:00 TT).
const j2000 = 2451545.0

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// JulianDay converts a civil UTC instant to a Julian day number,
// including the fractional day.
func JulianDay(t time.Time) float64 {
	t = t.UTC()
	year := t.Year()
	month := int(t.Month())
	day := t.Day()

	if month <= 2 {
		year--
		month += 12
	}

	a := year / 100
	b := 2 - a + a/4

	jd := math.Floor(365.25*float64(year+4716)) +
		math.Floor(30.6001*float64(month+1)) +
		float64(day) + float64(b) - 1524.5

	dayFrac := (float64(t.Hour()) +
		float64(t.Minute())/60.0 +
		(float64(t.Second())+float64(t.Nanosecond())/1e9)/3600.0) / 24.0

	return jd + dayFrac
}

// julianCenturies returns Julian centuries since J2000.0.
func julianCenturies(jd float64) float64 {
	return (jd - j2000) / 36525.0
}

// LocalSiderealTimeDeg computes the local apparent sidereal time in degrees
// for a Julian day and an observer longitude (east positive).
func LocalSiderealTimeDeg(jd, longitudeDeg float64) float64 {
	tc := julianCenturies(jd)
	gmst := 280.46061837 +
		360.98564736629*(jd-j2000) +
		0.000387933*tc*tc -
		tc*tc*tc/38710000.0
	return datatypes.NormalizeDegrees(gmst + longitudeDeg)
}

// ObliquityDeg computes the mean obliquity of the ecliptic in degrees.
func ObliquityDeg(jd float64) float64 {
	tc := julianCenturies(jd)
	return 23.4392911 - 0.0130042*tc - 0.00000016*tc*tc + 0.000000503*tc*tc*tc
}

// MidheavenDeg derives the ecliptic longitude of the midheaven from the
// local sidereal time and obliquity, both in degrees.
func MidheavenDeg(lstDeg, obliquityDeg float64) float64 {
	lst := lstDeg * degToRad
	eps := obliquityDeg * degToRad
	mc := math.Atan2(math.Sin(lst), math.Cos(lst)*math.Cos(eps))
	return datatypes.NormalizeDegrees(mc * radToDeg)
}

// AscendantDeg derives the ecliptic longitude of the ascendant for an
// observer at latitudeDeg. At the numerical poles the horizon and ecliptic
// geometry collapses; callers treat the result as best-effort there.
func AscendantDeg(lstDeg, latitudeDeg, obliquityDeg float64) float64 {
	lst := lstDeg * degToRad
	lat := latitudeDeg * degToRad
	eps := obliquityDeg * degToRad

	asc := math.Atan2(
		math.Cos(lst),
		-(math.Sin(lst)*math.Cos(eps) + math.Tan(lat)*math.Sin(eps)),
	)
	return datatypes.NormalizeDegrees(asc * radToDeg)
}

// chartAnglesFor computes both chart angles for a moment and place.
func chartAnglesFor(m datatypes.BirthMoment) datatypes.ChartAngles {
	jd := JulianDay(m.UTCDateTime)
	lst := LocalSiderealTimeDeg(jd, m.Longitude)
	eps := ObliquityDeg(jd)
	return datatypes.ChartAngles{
		AscendantDeg: AscendantDeg(lst, m.Latitude, eps),
		MidheavenDeg: MidheavenDeg(lst, eps),
	}
}

// README: Pure feature derivation from request time and weather.
package features

import "time"

// ClassifyTimeOfDay buckets an hour (0-23). Rules are evaluated in order.
func ClassifyTimeOfDay(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour <= 11:
		return Morning
	case hour >= 17 && hour <= 21:
		return Evening
	case hour >= 22 || hour <= 4:
		return Night
	default:
		return Afternoon
	}
}

// ClassifyTraffic assumes lighter traffic at weekends and rush hours on weekdays.
func ClassifyTraffic(hour int, weekend bool) Traffic {
	if weekend {
		if hour >= 12 && hour <= 18 {
			return TrafficMedium
		}
		return TrafficLow
	}
	switch {
	case (hour >= 7 && hour <= 9) || (hour >= 16 && hour <= 18):
		return TrafficHigh
	case hour >= 11 && hour <= 13:
		return TrafficMedium
	default:
		return TrafficLow
	}
}

// IsWeekend reports whether t falls on Saturday or Sunday in t's location.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DeriveTimeFeatures computes the time indicators using t's own location;
// callers convert t to the reference zone first.
func DeriveTimeFeatures(t time.Time) TimeFeatures {
	hour := t.Hour()
	weekend := IsWeekend(t)

	var tf TimeFeatures
	if weekend {
		tf.Weekend = 1
	}

	switch ClassifyTimeOfDay(hour) {
	case Morning:
		tf.Morning = 1
	case Evening:
		tf.Evening = 1
	case Night:
		tf.Night = 1
	}

	switch ClassifyTraffic(hour, weekend) {
	case TrafficLow:
		tf.TrafficLow = 1
	case TrafficMedium:
		tf.TrafficMedium = 1
	}
	return tf
}

// DeriveWeatherFeatures maps the weather selection to its indicators.
func DeriveWeatherFeatures(w Weather) WeatherFeatures {
	switch w {
	case WeatherRain:
		return WeatherFeatures{Rain: 1}
	case WeatherSnow:
		return WeatherFeatures{Snow: 1}
	default:
		return WeatherFeatures{}
	}
}

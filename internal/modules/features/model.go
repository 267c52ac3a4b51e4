// README: Categorical encodings and the fixed-order model input vector.
package features

import "fmt"

// Weather is the user-selected weather condition. Clear is the baseline.
type Weather string

const (
	WeatherClear Weather = "Clear"
	WeatherRain  Weather = "Rain"
	WeatherSnow  Weather = "Snow"
)

// ParseWeather accepts exactly "Clear", "Rain" or "Snow".
func ParseWeather(s string) (Weather, error) {
	switch w := Weather(s); w {
	case WeatherClear, WeatherRain, WeatherSnow:
		return w, nil
	default:
		return "", fmt.Errorf("unknown weather %q", s)
	}
}

// TimeOfDay buckets the local hour. Afternoon is the baseline and has no flag.
type TimeOfDay string

const (
	Morning   TimeOfDay = "Morning"
	Afternoon TimeOfDay = "Afternoon"
	Evening   TimeOfDay = "Evening"
	Night     TimeOfDay = "Night"
)

// Traffic is the assumed traffic tier. High is the baseline and has no flag.
type Traffic string

const (
	TrafficLow    Traffic = "Low"
	TrafficMedium Traffic = "Medium"
	TrafficHigh   Traffic = "High"
)

// TimeFeatures holds the 0/1 indicators derived from the request time.
type TimeFeatures struct {
	Morning       int
	Evening       int
	Night         int
	Weekend       int
	TrafficLow    int
	TrafficMedium int
}

// WeatherFeatures holds the 0/1 weather indicators.
type WeatherFeatures struct {
	Rain int
	Snow int
}

// Columns is the column order the model was trained against.
var Columns = [...]string{
	"Trip_Distance_km",
	"Passenger_Count",
	"Base_Fare",
	"Per_Km_Rate",
	"Per_Minute_Rate",
	"Trip_Duration_Minutes",
	"Time_of_Day_Evening",
	"Time_of_Day_Morning",
	"Time_of_Day_Night",
	"Day_of_Week_Weekend",
	"Traffic_Conditions_Low",
	"Traffic_Conditions_Medium",
	"Weather_Rain",
	"Weather_Snow",
}

// NumColumns is the width of every Vector.
const NumColumns = len(Columns)

// Vector is the model input. Every field not set explicitly stays 0.0.
type Vector struct {
	TripDistanceKm          float64
	PassengerCount          float64
	BaseFare                float64
	PerKmRate               float64
	PerMinuteRate           float64
	TripDurationMinutes     float64
	TimeOfDayEvening        float64
	TimeOfDayMorning        float64
	TimeOfDayNight          float64
	DayOfWeekWeekend        float64
	TrafficConditionsLow    float64
	TrafficConditionsMedium float64
	WeatherRain             float64
	WeatherSnow             float64
}

// Values returns the fields in Columns order.
func (v Vector) Values() []float64 {
	return []float64{
		v.TripDistanceKm,
		v.PassengerCount,
		v.BaseFare,
		v.PerKmRate,
		v.PerMinuteRate,
		v.TripDurationMinutes,
		v.TimeOfDayEvening,
		v.TimeOfDayMorning,
		v.TimeOfDayNight,
		v.DayOfWeekWeekend,
		v.TrafficConditionsLow,
		v.TrafficConditionsMedium,
		v.WeatherRain,
		v.WeatherSnow,
	}
}

// Named returns the vector keyed by column name, for logging.
func (v Vector) Named() map[string]float64 {
	vals := v.Values()
	out := make(map[string]float64, NumColumns)
	for i, name := range Columns {
		out[name] = vals[i]
	}
	return out
}

// ApplyTime copies the time indicators into the vector.
func (v *Vector) ApplyTime(tf TimeFeatures) {
	v.TimeOfDayMorning = float64(tf.Morning)
	v.TimeOfDayEvening = float64(tf.Evening)
	v.TimeOfDayNight = float64(tf.Night)
	v.DayOfWeekWeekend = float64(tf.Weekend)
	v.TrafficConditionsLow = float64(tf.TrafficLow)
	v.TrafficConditionsMedium = float64(tf.TrafficMedium)
}

// ApplyWeather copies the weather indicators into the vector.
func (v *Vector) ApplyWeather(wf WeatherFeatures) {
	v.WeatherRain = float64(wf.Rain)
	v.WeatherSnow = float64(wf.Snow)
}

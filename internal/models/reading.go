package models

import "time"

// Reading is the latest weather measurement stored for a city.
type Reading struct {
	CityID      int64     `json:"city_id"`
	City        string    `json:"city"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Pressure    float64   `json:"pressure"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// WeatherPayload is the public shape of a reading, used by the API and webhooks.
type WeatherPayload struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Pressure    float64 `json:"pressure"`
}

func (r Reading) Payload() WeatherPayload {
	return WeatherPayload{
		City:        r.City,
		Temperature: r.Temperature,
		FeelsLike:   r.FeelsLike,
		Humidity:    r.Humidity,
		WindSpeed:   r.WindSpeed,
		Pressure:    r.Pressure,
	}
}

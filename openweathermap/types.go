package openweathermap

const BASE_URL = "https://api.openweathermap.org/data/2.5"

type condition struct {
	Id          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	/**
	Icon code, day/night variants end with "d"/"n"
	01 - clear sky
	02 - few clouds
	03 - scattered clouds
	04 - broken clouds
	09 - shower rain
	10 - rain
	11 - thunderstorm
	13 - snow
	50 - mist
	*/
	Icon string `json:"icon"`
}

type measurements struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  float64 `json:"humidity"`
}

type wind struct {
	Speed float64 `json:"speed"` // m/s with units=metric
	Deg   int     `json:"deg"`
}

// Precipitation volume in mm, absent when nothing is expected.
type volume struct {
	OneHour   *float64 `json:"1h"`
	ThreeHour *float64 `json:"3h"`
}

type current struct {
	Name    string       `json:"name"`
	Dt      int64        `json:"dt"`
	Main    measurements `json:"main"`
	Wind    wind         `json:"wind"`
	Weather []condition  `json:"weather"`
	Rain    *volume      `json:"rain"`
	Snow    *volume      `json:"snow"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
}

type forecastEntry struct {
	Dt      int64        `json:"dt"`
	Main    measurements `json:"main"`
	Wind    wind         `json:"wind"`
	Weather []condition  `json:"weather"`
	Rain    *volume      `json:"rain"`
	Snow    *volume      `json:"snow"`
}

type forecast struct {
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone *int   `json:"timezone"` // Shift in seconds from UTC
	} `json:"city"`
	List []forecastEntry `json:"list"`
}

type errorBody struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}

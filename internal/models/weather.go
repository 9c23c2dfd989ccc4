package models

// WeatherSample is the derived hazard reading at a single point.
// Wind is in [0,100], Rain in [0,50], Visibility in [0,100] (100 =
// perfectly clear), Risk in [0,100].
type WeatherSample struct {
	Wind       float64 `json:"wind"`
	Rain       float64 `json:"rain"`
	Visibility float64 `json:"visibility"`
	Risk       float64 `json:"risk"`
}

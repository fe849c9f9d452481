package models

// TemperaturePair is one matched day°/night° token from forecast text.
type TemperaturePair struct {
	Day   int
	Night int
}

// ExtractionResult holds the averages over every matched pair.
// DayAverage and NightAverage are 0 when Count is 0 and are never rounded here.
type ExtractionResult struct {
	Count        int     `json:"count"`
	DayAverage   float64 `json:"dayAverage"`
	NightAverage float64 `json:"nightAverage"`
}

// AverageResponse is the JSON body returned for a POST. Count is nil when the
// active variant leaves it out.
type AverageResponse struct {
	DayAvg   float64 `json:"dayAvg"`
	NightAvg float64 `json:"nightAvg"`
	Count    *int    `json:"count,omitempty"`
}

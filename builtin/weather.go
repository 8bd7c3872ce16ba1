package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fwojciec/toolchat"
)

const defaultWeatherBaseURL = "https://api.weatherapi.com/v1"

// Weather returns the get_weather tool. Without an API key it answers with
// simulated conditions and says so in a note.
func Weather(d Deps) toolchat.Tool {
	d = d.withDefaults()
	return &tool{
		name:        "get_weather",
		description: "Gets the current weather for a city: temperature, conditions, humidity and wind. Use it when the user asks what the weather is like somewhere.",
		schema: toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"city": {Type: "string", Description: "City name, e.g. 'Rome', 'Milan', 'New York'"},
		}, "city"),
		run: func(ctx context.Context, args json.RawMessage) string {
			return runWeather(ctx, d, args)
		},
	}
}

type weatherResponse struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		TempC      float64 `json:"temp_c"`
		FeelsLikeC float64 `json:"feelslike_c"`
		Condition  struct {
			Text string `json:"text"`
		} `json:"condition"`
		Humidity    int     `json:"humidity"`
		WindKPH     float64 `json:"wind_kph"`
		LastUpdated string  `json:"last_updated"`
	} `json:"current"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func runWeather(ctx context.Context, d Deps, args json.RawMessage) string {
	var a struct {
		City string `json:"city"`
	}
	if err := decode(args, &a); err != nil {
		return fail(err.Error(), nil)
	}
	if a.City == "" {
		return fail("city is required", nil)
	}

	if d.WeatherAPIKey == "" {
		return ok(fields{
			"city":          a.City,
			"temperature_c": 18,
			"condition":     "Partly cloudy",
			"humidity":      65,
			"wind_kph":      12,
			"note":          "Simulated data. Set WEATHER_API_KEY for real conditions.",
		})
	}

	q := url.Values{"key": {d.WeatherAPIKey}, "q": {a.City}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.WeatherBaseURL+"/current.json?"+q.Encode(), nil)
	if err != nil {
		return fail(err.Error(), nil)
	}
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fail(fmt.Sprintf("weather request failed: %s", err), nil)
	}
	defer resp.Body.Close()

	var w weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return fail(fmt.Sprintf("weather response (HTTP %d): %s", resp.StatusCode, err), nil)
	}
	if w.Error != nil {
		return fail(w.Error.Message, nil)
	}
	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Sprintf("weather service returned HTTP %d", resp.StatusCode), nil)
	}
	return ok(fields{
		"city":          w.Location.Name,
		"country":       w.Location.Country,
		"temperature_c": w.Current.TempC,
		"feels_like_c":  w.Current.FeelsLikeC,
		"condition":     w.Current.Condition.Text,
		"humidity":      w.Current.Humidity,
		"wind_kph":      w.Current.WindKPH,
		"last_updated":  w.Current.LastUpdated,
	})
}

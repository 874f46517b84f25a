// Package geocode resolves addresses to coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/domain/entity"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Google implements application.Geocoder with the Google Geocoding API.
type Google struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewGoogle(apiKey string) *Google {
	return &Google{
		APIKey:  apiKey,
		BaseURL: googleGeocodeURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (g *Google) Geocode(ctx context.Context, address string) (entity.Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return entity.Coordinates{}, application.ErrAddressNotFound
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return entity.Coordinates{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return entity.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entity.Coordinates{}, fmt.Errorf("geocode: unexpected status %s", resp.Status)
	}

	var body struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		Results      []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return entity.Coordinates{}, err
	}

	switch body.Status {
	case "OK":
		if len(body.Results) == 0 {
			return entity.Coordinates{}, application.ErrAddressNotFound
		}
		loc := body.Results[0].Geometry.Location
		return entity.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
	case "ZERO_RESULTS":
		return entity.Coordinates{}, application.ErrAddressNotFound
	default:
		return entity.Coordinates{}, fmt.Errorf("geocode: %s %s", body.Status, body.ErrorMessage)
	}
}

package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Address is a reverse-geocoded location.
type Address struct {
	DisplayName string  `json:"display_name"`
	Road        string  `json:"road,omitempty"`
	HouseNumber string  `json:"house_number,omitempty"`
	Suburb      string  `json:"suburb,omitempty"`
	City        string  `json:"city"`
	State       string  `json:"state,omitempty"`
	PostalCode  string  `json:"postcode,omitempty"`
	Country     string  `json:"country"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lng"`
}

// geocodeKey rounds to five decimals (about a metre) so repeated fixes of a
// stationary user hit the cache.
func geocodeKey(lat, lon float64) string {
	return fmt.Sprintf("%.5f,%.5f", lat, lon)
}

// ReverseGeocode resolves coordinates to an address through Nominatim.
// Results are cached per rounded coordinate.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*Address, error) {
	key := geocodeKey(lat, lon)
	if addr, ok := c.geocodes.Get(key); ok {
		c.logger.Debug("reverse geocode cache hit", "key", key)
		cp := *addr
		return &cp, nil
	}

	reqURL, err := url.Parse(c.baseURLs[ServiceNominatim] + "/reverse")
	if err != nil {
		return nil, fmt.Errorf("parse nominatim url: %w", err)
	}
	q := reqURL.Query()
	q.Add("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Add("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Add("format", "json")
	q.Add("addressdetails", "1")
	reqURL.RawQuery = q.Encode()

	req, err := NewRequestWithUserAgent(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, ServiceNominatim, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		DisplayName string `json:"display_name"`
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		Error       string `json:"error"`
		Address     struct {
			Road        string `json:"road"`
			HouseNumber string `json:"house_number"`
			Suburb      string `json:"suburb"`
			City        string `json:"city"`
			Town        string `json:"town"`
			State       string `json:"state"`
			Country     string `json:"country"`
			PostCode    string `json:"postcode"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("nominatim: %s", result.Error)
	}

	// City could be in city or town field
	city := result.Address.City
	if city == "" {
		city = result.Address.Town
	}

	addr := &Address{
		DisplayName: result.DisplayName,
		Road:        result.Address.Road,
		HouseNumber: result.Address.HouseNumber,
		Suburb:      result.Address.Suburb,
		City:        city,
		State:       result.Address.State,
		PostalCode:  result.Address.PostCode,
		Country:     result.Address.Country,
		Latitude:    lat,
		Longitude:   lon,
	}
	if v, err := strconv.ParseFloat(result.Lat, 64); err == nil {
		addr.Latitude = v
	}
	if v, err := strconv.ParseFloat(result.Lon, 64); err == nil {
		addr.Longitude = v
	}

	c.geocodes.Set(key, addr)
	cp := *addr
	return &cp, nil
}

// Package client is the CLI's thin HTTP layer over the API. The session
// token travels the same way the browser sends it: an access_token cookie.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/inkwell/inkwell/cmd/cli/config"
)

// DoJSON sends a JSON request to the API and decodes the response into out
// (skipped when out is nil). The stored session token, if any, rides along
// as the access_token cookie.
func DoJSON(method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := config.LoadToken(); token != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (%d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("API returned %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Login posts credentials and returns the session token from the Set-Cookie
// header the API answers with.
func Login(username, password string) (string, error) {
	data, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}

	resp, err := http.Post(config.APIURL()+"/api/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("%s (%d)", apiErr.Error, resp.StatusCode)
		}
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	for _, c := range resp.Cookies() {
		if c.Name == "access_token" && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("login succeeded but no access_token cookie returned")
}

package lib

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

var controlHTTPClient = &http.Client{Timeout: 5 * time.Second}

func controlURL(addr, path string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimSuffix(addr, "/") + path
	}
	return "http://" + addr + path
}

// FeedURL is the websocket URL of the panel update feed.
func FeedURL(addr string) string {
	u := controlURL(addr, "/feed")
	return "ws" + strings.TrimPrefix(u, "http")
}

func decodeControl(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			return fmt.Errorf("%s", body.Error)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// Signal sends an activation signal (activate, toggle, picker, clear,
// deactivate) to the inspector listening on addr.
func Signal(addr, action string) error {
	resp, err := controlHTTPClient.Post(controlURL(addr, "/"+action), "application/json", nil)
	if err != nil {
		return fmt.Errorf("inspector not reachable on %s: %w", addr, err)
	}
	return decodeControl(resp, nil)
}

// ControlRequest sends method to path on the control API and decodes the
// JSON reply into v when v is not nil.
func ControlRequest(addr, method, path string, v any) error {
	req, err := http.NewRequest(method, controlURL(addr, path), nil)
	if err != nil {
		return err
	}
	resp, err := controlHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("inspector not reachable on %s: %w", addr, err)
	}
	return decodeControl(resp, v)
}

// PrintJSONLine writes v to stdout as one line of JSON.
func PrintJSONLine(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

const configFileName = ".regularity.json"

// ClientConfig is the on-disk client configuration. Client holds the
// owner id issued by the service.
type ClientConfig struct {
	Client string `json:"client"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

func loadClientConfig() (*ClientConfig, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file does not exist at %s", path)
	}
	var cfg ClientConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid JSON in config file at %s", path)
	}
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("config file at %s is missing host or port", path)
	}
	return &cfg, nil
}

func writeClientConfig(cfg *ClientConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func newClient() *resty.Client {
	return resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")
}

// doGet performs a GET and returns the raw response body, treating any
// non-2xx status as an error.
func doGet(url string) ([]byte, error) {
	resp, err := newClient().R().Get(url)
	if err != nil {
		return nil, err
	}
	return checkResponse(resp)
}

func doPostJSON(url string, payload interface{}) ([]byte, error) {
	resp, err := newClient().R().SetBody(payload).Post(url)
	if err != nil {
		return nil, err
	}
	return checkResponse(resp)
}

func doDelete(url string) ([]byte, error) {
	resp, err := newClient().R().Delete(url)
	if err != nil {
		return nil, err
	}
	return checkResponse(resp)
}

func checkResponse(resp *resty.Response) ([]byte, error) {
	if resp.IsError() {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

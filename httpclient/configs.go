package httpclient

import "time"

// Config controls the instrumented HTTP clients.
type Config struct {
	// Timeout bounds every request, retries included. 0 disables it.
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`

	// RetryMax is the number of retries of the resty and retryablehttp clients.
	RetryMax int `yaml:"retry_max" envconfig:"RETRY_MAX" default:"3"`

	// RetryWaitMin and RetryWaitMax bound the backoff between retries.
	RetryWaitMin time.Duration `yaml:"retry_wait_min" envconfig:"RETRY_WAIT_MIN" default:"100ms"`
	RetryWaitMax time.Duration `yaml:"retry_wait_max" envconfig:"RETRY_WAIT_MAX" default:"2s"`

	// UserAgent is sent by the resty client when set.
	UserAgent string `yaml:"user_agent" envconfig:"USER_AGENT"`

	// BaseURL is the resty client's base URL when set.
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL"`
}

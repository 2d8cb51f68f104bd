package config

import (
	"errors"
	"net"
	"regexp"
	"strconv"
	"time"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	Debug       bool
}

// Server collects the serve flag values into a Config.
func Server(host string, port uint, dbUrl, tokenSecret string, ttl uint, debug bool) (cfg Config, err error) {
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.DBUrl = dbUrl
	cfg.TokenSecret = tokenSecret
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.Debug = debug

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}
	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

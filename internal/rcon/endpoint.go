package rcon

import (
	"net"
	"net/url"
	"strconv"
)

// Endpoint locates a WebRcon listener.
type Endpoint struct {
	Host     string
	Port     int
	Password string
}

// URL returns ws://host:port/<password>; the password is path-escaped.
func (e Endpoint) URL() string {
	u := url.URL{
		Scheme:  "ws",
		Host:    e.hostPort(),
		Path:    "/" + e.Password,
		RawPath: "/" + url.PathEscape(e.Password),
	}
	return u.String()
}

// Redacted returns URL with the password masked, for logs.
func (e Endpoint) Redacted() string {
	return "ws://" + e.hostPort() + "/***"
}

func (e Endpoint) hostPort() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

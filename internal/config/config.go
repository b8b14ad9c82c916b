// Package config turns command-line arguments into validated settings for
// the server and client binaries.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/akamensky/argparse"
	"github.com/go-playground/validator"
	"github.com/pkg/errors"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 8888

	MinServerPort = 1025
	MaxServerPort = 49151

	defaultGraceSeconds = 3
	defaultDialSeconds  = 5
)

var (
	ErrInvalidPort = errors.New("invalid port number")
	ErrPortRange   = errors.Errorf("port must be between %d and %d", MinServerPort, MaxServerPort)
	ErrInvalidHost = errors.New("invalid host")
)

var validate = validator.New()

type ServerArgs struct {
	Host           string `validate:"required,hostname_rfc1123|ip"`
	Port           int    `validate:"min=1025,max=49151"`
	GracePeriod    time.Duration
	ReadTimeout    time.Duration
	MaxConnections int `validate:"min=0"`
	MetricsAddr    string
	Verbose        bool
}

func (a *ServerArgs) Address() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

type ClientArgs struct {
	Host        string `validate:"required,hostname_rfc1123|ip"`
	Port        int    `validate:"min=1,max=65535"`
	DialTimeout time.Duration
	Verbose     bool
}

func (a *ClientArgs) Address() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// ParseServerArgs parses `tcpserver [port] [flags]`. args includes the
// program name, as os.Args does.
func ParseServerArgs(args []string) (*ServerArgs, error) {
	parser := argparse.NewParser("tcpserver", "Line-oriented TCP command server")

	port := parser.StringPositional(&argparse.Options{
		Required: false,
		Help:     "Port to listen on (1025-49151), default 8888",
	})
	host := parser.String("H", "host", &argparse.Options{Default: DefaultHost, Help: "Interface to bind"})
	grace := parser.Int("g", "grace", &argparse.Options{Default: defaultGraceSeconds, Help: "Seconds to let connections drain on shutdown"})
	readTimeout := parser.Int("r", "read-timeout", &argparse.Options{Default: 0, Help: "Seconds to wait for a command before closing, 0 waits forever"})
	maxConns := parser.Int("c", "max-conns", &argparse.Options{Default: 0, Help: "Maximum concurrent connections, 0 is unlimited"})
	metricsAddr := parser.String("m", "metrics", &argparse.Options{Default: "", Help: "Address for the Prometheus exporter, disabled when empty"})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Default: false, Help: "Log debug messages"})

	if err := parser.Parse(args); err != nil {
		return nil, errors.Wrap(err, parser.Usage(err))
	}

	p, err := parsePort(*port, DefaultPort)
	if err != nil {
		return nil, err
	}

	parsed := &ServerArgs{
		Host:           *host,
		Port:           p,
		GracePeriod:    time.Duration(*grace) * time.Second,
		ReadTimeout:    time.Duration(*readTimeout) * time.Second,
		MaxConnections: *maxConns,
		MetricsAddr:    *metricsAddr,
		Verbose:        *verbose,
	}
	if err := check(parsed, ErrPortRange); err != nil {
		return nil, err
	}
	return parsed, nil
}

// ParseClientArgs parses `tcpclient [host] [port] [flags]` or
// `tcpclient [port] [flags]`.
func ParseClientArgs(args []string) (*ClientArgs, error) {
	parser := argparse.NewParser("tcpclient", "Client for the line-oriented TCP command server")

	first := parser.StringPositional(&argparse.Options{Required: false, Help: "Server host, or the port when given alone"})
	second := parser.StringPositional(&argparse.Options{Required: false, Help: "Server port, default 8888"})
	dial := parser.Int("t", "timeout", &argparse.Options{Default: defaultDialSeconds, Help: "Seconds to wait for the connection and each reply"})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Default: false, Help: "Log debug messages"})

	if err := parser.Parse(args); err != nil {
		return nil, errors.Wrap(err, parser.Usage(err))
	}

	host, portArg := DefaultHost, *second
	switch {
	case *first != "" && *second != "":
		host = *first
	case *first != "":
		portArg = *first
	}

	p, err := parsePort(portArg, DefaultPort)
	if err != nil {
		return nil, err
	}

	parsed := &ClientArgs{
		Host:        host,
		Port:        p,
		DialTimeout: time.Duration(*dial) * time.Second,
		Verbose:     *verbose,
	}
	if err := check(parsed, ErrInvalidPort); err != nil {
		return nil, err
	}
	return parsed, nil
}

func parsePort(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidPort, "%q", s)
	}
	return p, nil
}

// check runs the struct validation and maps field failures onto the
// package's sentinel errors.
func check(args interface{}, portErr error) error {
	err := validate.Struct(args)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate arguments")
	}
	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "Port":
			return errors.Wrapf(portErr, "%v", fe.Value())
		case "Host":
			return errors.Wrapf(ErrInvalidHost, "%q", fe.Value())
		}
	}
	return errors.Wrap(err, "validate arguments")
}

// Message renders an argument error the way the binaries report it.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrPortRange):
		return fmt.Sprintf("Port must be between %d and %d", MinServerPort, MaxServerPort)
	case errors.Is(err, ErrInvalidPort):
		return "Invalid port number"
	default:
		return err.Error()
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

const (
	AppName = "rootbar"

	DefaultConfigPath = "config.json"

	// milliseconds
	DefaultUpdateDelay        = 990
	DefaultThreadPollingDelay = 500

	DefaultDelimiter = " "
	DefaultShell     = "sh"

	PublisherTypeX11Str    = "x11"
	PublisherTypeStdoutStr = "stdout"

	DefaultRedisMirrorKey = "rootbar:status"
)

type PublisherType int

const (
	PublisherTypeUnknown PublisherType = 0
	PublisherTypeX11     PublisherType = 1
	PublisherTypeStdout  PublisherType = 2
)

var publisherTypeMap = map[string]PublisherType{
	PublisherTypeX11Str:    PublisherTypeX11,
	PublisherTypeStdoutStr: PublisherTypeStdout,
}

var publisherTypeMapT = map[PublisherType]string{
	PublisherTypeX11:    PublisherTypeX11Str,
	PublisherTypeStdout: PublisherTypeStdoutStr,
}

func (pt PublisherType) String() string {
	return publisherTypeMapT[pt]
}

func (pt *PublisherType) Set(val string) error {
	xx, ok := publisherTypeMap[strings.ToLower(strings.TrimSpace(val))]
	if !ok {
		return newConfigError("invalid publisher type : %s", val)
	}
	*pt = xx
	return nil
}

func (pt PublisherType) MarshalText() ([]byte, error) {
	return []byte(pt.String()), nil
}

func (pt *PublisherType) UnmarshalText(text []byte) error {
	return pt.Set(string(text))
}

func (pt *PublisherType) UnmarshalYAML(value *yaml.Node) error {
	var vv string
	if err := value.Decode(&vv); err != nil {
		return err
	}
	return pt.Set(vv)
}

func newConfigError(format string, args ...interface{}) error {
	return errors.Join(ErrInvalidConfig, fmt.Errorf(format, args...))
}

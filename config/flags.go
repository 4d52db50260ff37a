package config

import "flag"

var (
	flagVar *Flags
)

func init() {
	flagVar = &Flags{}
}

func GetFlag() *Flags {
	return flagVar
}

type Flags struct {
	ConfigPath  string
	ShowVersion bool
}

func LoadFlags() error {
	flag.StringVar(&flagVar.ConfigPath, "conf", DefaultConfigPath, "config file path (.json or .yaml), created with defaults when missing")
	flag.BoolVar(&flagVar.ShowVersion, "version", false, "print version and exit")

	flag.Parse()
	return nil
}

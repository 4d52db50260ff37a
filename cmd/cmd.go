package cmd

type Cmd interface {
	Name() string
	Run() error  // blocks until the bar stops
	Stop() error // asks Run to return
}

package core

import (
	"github.com/jessevdk/go-flags"
)

// CreateHelpErr makes a go-flags help error so command Execute methods
// can hand help handling back to the central parser error handler.
func CreateHelpErr() error {
	err := flags.Error{
		Type:    flags.ErrHelp,
		Message: "show help message",
	}
	return &err
}

package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/elimuhq/elimu/core/identity"
)

var errHelp = errors.New("help provided")

// readPasswordFunc reads a password from the terminal without echoing it.
// Swapped out in tests.
var readPasswordFunc = func() ([]byte, error) {
	return term.ReadPassword(int(syscall.Stdin))
}

type commandDeps struct {
	identitySvc *identity.Service
	adminRepo   identity.AdminRepository
	validate    *validator.Validate
}

func runCommand(args []string, deps commandDeps) error {
	if len(args) == 0 {
		printUsage()
		return errHelp
	}

	switch args[0] {
	case "addadmin":
		return addAdmin(args[1:], deps)
	case "resetpassword":
		return resetPassword(args[1:], deps)
	case "help", "-h", "--help":
		printUsage()
		return errHelp
	default:
		printUsage()
		return errors.Errorf("unknown command %q", args[0])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: admin <command> [flags]

Commands:
  addadmin       create an admin account
  resetpassword  reset an admin account's password`)
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pwd, err := readPasswordFunc()
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/dirsnap/internal/cli"
	"github.com/temirov/dirsnap/internal/types"
	"github.com/temirov/dirsnap/internal/utils"
)

const failureExitCode = 1

// main is the entry point for the dirsnap command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(false)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	applicationExecutionError := cli.Execute(loggerInstance)
	_ = loggerInstance.Sync()
	if applicationExecutionError == nil {
		return
	}
	if errors.Is(applicationExecutionError, types.ErrPathNotFound) {
		fmt.Fprintln(os.Stderr, applicationExecutionError.Error())
	} else {
		fmt.Fprintf(os.Stderr, utils.UnexpectedErrorMessageFormat+"\n", applicationExecutionError)
	}
	os.Exit(failureExitCode)
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/secomind/colint/internal/cli"
	"github.com/secomind/colint/internal/utils"
)

const (
	loggerInitializationFailedFormat  = "logger initialization failed: %w"
	applicationExecutionFailedMessage = "application execution failed"
	issuesFoundExitCode               = 1
	failureExitCode                   = 2
)

// main is the entry point for the colint command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(loggerInitializationFailedFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()

	if applicationExecutionError := cli.Execute(loggerInstance); applicationExecutionError != nil {
		if errors.Is(applicationExecutionError, cli.ErrIssuesFound) {
			os.Exit(issuesFoundExitCode)
		}
		loggerInstance.Error(applicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
		os.Exit(failureExitCode)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/vipnode/remoting/remoting"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func printInfo(w io.Writer, info remoting.ServiceInfo) {
	fmt.Fprintf(w, "%s %s\n", green("[service]"), bold(info.RemoteID))
	for _, m := range info.Methods {
		kind := cyan("[two-way]")
		if m.IsOneWay {
			kind = yellow("[one-way]")
		}
		fmt.Fprintf(w, "    %s %s\n", kind, remoting.ComposeMethod(info.RemoteID, m.Name))
	}
}

func printResult(w io.Writer, method remoting.ServiceMethod, result json.RawMessage) {
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	fmt.Fprintf(w, "%s %s\n", green(method.String()+":"), result)
}

func printSent(w io.Writer, method remoting.ServiceMethod) {
	fmt.Fprintf(w, "%s %s\n", yellow("[sent]"), method)
}

// parseParams turns command line args into positional params, each arg
// being a JSON value.
func parseParams(args []string) ([]interface{}, error) {
	params := make([]interface{}, 0, len(args))
	for i, arg := range args {
		if !json.Valid([]byte(arg)) {
			return nil, fmt.Errorf("param %d is not valid JSON: %s", i+1, arg)
		}
		params = append(params, json.RawMessage(arg))
	}
	return params, nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
	flags "github.com/jessevdk/go-flags"
	"github.com/vipnode/remoting/jsonrpc2"
	"github.com/vipnode/remoting/remoting"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Options contains the flag options
type Options struct {
	Verbose  []bool        `short:"v" long:"verbose" description:"Show verbose logging." no-ini:"true"`
	Version  bool          `long:"version" description:"Print version and exit." no-ini:"true"`
	Config   string        `long:"config" description:"Path to an ini config file. (default: $XDG_CONFIG_HOME/vipnode/remoting/remoting.ini)" no-ini:"true"`
	WS       string        `long:"ws" description:"Websocket implementation." choice:"gorilla" choice:"gobwas" default:"gorilla"`
	Compress bool          `long:"compress" description:"Use snappy compression on raw tcp:// streams."`
	Debug    bool          `long:"debug" description:"Log every message sent and received."`
	Timeout  time.Duration `long:"timeout" description:"Timeout for dialing and describing remotes." default:"5s"`

	Serve struct {
		Bind        string `long:"bind" description:"Address and port to serve websocket and HTTP on." default:"127.0.0.1:8080"`
		TCP         string `long:"tcp" description:"Address and port to also serve raw TCP streams on."`
		AllowOrigin string `long:"allow-origin" description:"Access-Control-Allow-Origin header value for HTTP requests."`
	} `command:"serve" description:"Serve the Calc and Logger demo services."`

	Describe struct {
		Args struct {
			URL      string `positional-arg-name:"url" description:"Remote endpoint, ws:// wss:// http:// https:// or tcp://" required:"yes"`
			RemoteID string `positional-arg-name:"remoteid" description:"ID of the remote service" required:"yes"`
		} `positional-args:"yes"`
	} `command:"describe" description:"List the methods of a remote service."`

	Call struct {
		Args struct {
			URL    string   `positional-arg-name:"url" description:"Remote endpoint, ws:// wss:// http:// https:// or tcp://" required:"yes"`
			Method string   `positional-arg-name:"remoteid/method" description:"Compound method name" required:"yes"`
			Params []string `positional-arg-name:"param" description:"JSON encoded positional params"`
		} `positional-args:"yes"`
	} `command:"call" description:"Call a method of a remote service."`
}

const callUsage = `Examples:
* Add two numbers:
  $ remoting call ws://127.0.0.1:8080/ Calc/add 2 3

* Log a line on the server, strings are JSON encoded:
  $ remoting call http://127.0.0.1:8080/ Logger/log '"hello"'
`

var logLevels = []log.Level{
	log.Warning,
	log.Info,
	log.Debug,
}

func subcommand(cmd string, options Options) error {
	switch cmd {
	case "serve":
		return runServe(options)

	case "describe":
		ctx, cancel := context.WithTimeout(context.Background(), options.Timeout)
		defer cancel()
		r, err := dial(ctx, options.Describe.Args.URL, options)
		if err != nil {
			return err
		}
		defer r.Close()
		info, err := remoting.DescribeRemote(ctx, r, options.Describe.Args.RemoteID)
		if err != nil {
			return err
		}
		printInfo(os.Stdout, info)
		return nil

	case "call":
		return runCall(options)
	}

	return fmt.Errorf("unknown command: %s", cmd)
}

func runCall(options Options) error {
	method, err := remoting.ParseMethod(options.Call.Args.Method)
	if err != nil {
		return ErrExplain{err, `Methods are named "<remoteid>/<method>", such as "Calc/add".`}
	}
	params, err := parseParams(options.Call.Args.Params)
	if err != nil {
		return ErrExplain{err, `Params must be JSON values, strings need quotes: '"hello"'`}
	}

	ctx, cancel := context.WithTimeout(context.Background(), options.Timeout)
	r, err := dial(ctx, options.Call.Args.URL, options)
	if err != nil {
		cancel()
		return err
	}
	defer r.Close()
	proxy, err := remoting.Discover(ctx, r, method.ServiceID)
	cancel()
	if err != nil {
		return err
	}

	// No timeout for the call itself, interrupt cancels it.
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Interrupted, cancelling call...")
			cancel()
		case <-ctx.Done():
		}
	}()

	var result json.RawMessage
	if err := proxy.Call(ctx, &result, method.Method, params...); err != nil {
		return err
	}
	if m, _ := proxy.Info().Method(method.Method); m.IsOneWay {
		printSent(os.Stdout, method)
		return nil
	}
	printResult(os.Stdout, method, result)
	return nil
}

func main() {
	options := Options{}
	parser := flags.NewParser(&options, flags.Default)
	parser.SubcommandsOptional = true
	if err := loadConfig(parser); err != nil {
		exit(1, "failed to load config: %s\n", err)
	}
	p, err := parser.Parse()
	if err != nil {
		if p == nil {
			fmt.Println(err)
		}
		if flagErr, ok := err.(*flags.Error); ok && flagErr.Type == flags.ErrHelp && parser.Active != nil {
			// Print additional usage help when run with --help
			switch parser.Active.Name {
			case "call":
				exit(0, callUsage)
			}
		}
		return
	}

	if options.Version {
		fmt.Println(Version)
		os.Exit(0)
	}

	// Figure out the log level
	numVerbose := len(options.Verbose)
	if numVerbose >= len(logLevels) {
		numVerbose = len(logLevels) - 1
	}

	logLevel := logLevels[numVerbose]
	logWriter := os.Stderr

	SetLogger(golog.New(logWriter, logLevel))
	if logLevel == log.Debug {
		// Enable logging from subpackages
		remoting.SetLogger(logWriter)
		jsonrpc2.SetLogger(logWriter)
	}

	if parser.Active == nil {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	cmd := parser.Active.Name
	err = subcommand(cmd, options)
	if err == nil {
		return
	}

	if err == io.EOF || errors.Is(err, jsonrpc2.ErrStreamClosed) {
		exit(3, "Connection closed.\n")
	}

	err = explain(err)
	exit(2, "%s failed: %s\n", cmd, err)
}

// explain annotates common failures with what to do about them.
func explain(err error) error {
	var explained ErrExplain
	if errors.As(err, &explained) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrExplain{err, `Timed out waiting for the remote. Use --timeout to wait longer.`}
	}
	var unknownMethod remoting.ErrUnknownMethod
	if errors.As(err, &unknownMethod) {
		return ErrExplain{err, fmt.Sprintf(`Use "remoting describe URL %s" to list its methods.`, unknownMethod.RemoteID)}
	}

	var netErr net.Error
	var codeErr interface{ ErrorCode() int }
	switch {
	case errors.As(err, &netErr):
		return ErrExplain{err, `Disconnected from server unexpectedly. Could be a connectivity issue or the server is down. Try again?`}
	case errors.As(err, &codeErr):
		switch codeErr.ErrorCode() {
		case jsonrpc2.ErrCodeMethodNotFound:
			return ErrExplain{err, `The remote does not serve this service or method. Check the remote id and method name, they are case sensitive.`}
		case jsonrpc2.ErrCodeInvalidParams:
			return ErrExplain{err, `Wrong number or type of params for this method.`}
		case jsonrpc2.ErrCodeInvalidRequest:
			return ErrExplain{err, `The method was called the wrong way. One-way methods can only be notified, two-way methods only requested.`}
		case jsonrpc2.ErrCodeInternal:
			return ErrExplain{err, `The remote service failed unexpectedly. Details are only in the server's logs.`}
		default:
			return ErrExplain{err, fmt.Sprintf(`The remote service returned an error (code %d).`, codeErr.ErrorCode())}
		}
	}
	return ErrExplain{err, fmt.Sprintf(`Error type %T is missing an explanation. Please open an issue at https://github.com/vipnode/remoting`, err)}
}

func exit(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

// ErrExplain annotates an error with an explanation.
type ErrExplain struct {
	Cause       error
	Explanation string
}

func (err ErrExplain) Error() string {
	return fmt.Sprintf("%s\n -> %s", err.Cause, err.Explanation)
}

func (err ErrExplain) Unwrap() error {
	return err.Cause
}

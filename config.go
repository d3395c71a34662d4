package main

import (
	"os"
	"path/filepath"

	"github.com/OpenPeeDeeP/xdg"
	flags "github.com/jessevdk/go-flags"
)

const configName = "remoting.ini"

// configPath returns the config file named by --config in args, or the
// default one if it exists.
func configPath(args []string) (string, error) {
	var pre struct {
		Config string `long:"config"`
	}
	if _, err := flags.NewParser(&pre, flags.IgnoreUnknown).ParseArgs(args); err != nil {
		return "", err
	}
	if pre.Config != "" {
		return pre.Config, nil
	}
	path := filepath.Join(xdg.New("vipnode", "remoting").ConfigHome(), configName)
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

// loadConfig fills parser's options from the ini config, if any. Flags
// parsed afterwards take precedence.
func loadConfig(parser *flags.Parser) error {
	return loadConfigArgs(parser, os.Args[1:])
}

func loadConfigArgs(parser *flags.Parser, args []string) error {
	path, err := configPath(args)
	if err != nil || path == "" {
		return err
	}
	logger.Debugf("Loading config: %s", path)
	return flags.NewIniParser(parser).ParseFile(path)
}
